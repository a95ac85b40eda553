package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formly/pkg/model"
	"github.com/goliatone/go-formly/pkg/translate"
)

// EnvPrefix prefixes environment variables read into the configuration, for
// example FORMLY_TRANSLATE_NUMERIC=truncate.
const EnvPrefix = "FORMLY_"

// Config is the resolved CLI configuration.
type Config struct {
	Source    string          `koanf:"source"`
	Reference string          `koanf:"reference"`
	Input     string          `koanf:"input"`
	Name      string          `koanf:"name"`
	Preset    string          `koanf:"preset"`
	Output    string          `koanf:"output"`
	Format    string          `koanf:"format"`
	Encode    EncodeConfig    `koanf:"encode"`
	Translate TranslateConfig `koanf:"translate"`
	Log       LogConfig       `koanf:"log"`
	HTTP      HTTPConfig      `koanf:"http"`
}

type EncodeConfig struct {
	Casing    string `koanf:"casing"`
	OmitEmpty bool   `koanf:"omitEmpty"`
	Indent    string `koanf:"indent"`
}

type TranslateConfig struct {
	Labels   string `koanf:"labels"`
	Sanitize bool   `koanf:"sanitize"`
	Numeric  string `koanf:"numeric"`
}

type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

type HTTPConfig struct {
	Enabled bool          `koanf:"enabled"`
	Timeout time.Duration `koanf:"timeout"`
}

func defaults() map[string]any {
	return map[string]any{
		"format":             "json",
		"encode.casing":      model.CasingCamel.String(),
		"encode.omitEmpty":   true,
		"encode.indent":      "  ",
		"translate.labels":   "raw",
		"translate.sanitize": false,
		"translate.numeric":  translate.NumericPreserve.String(),
		"log.level":          "warn",
		"log.development":    false,
		"http.enabled":       false,
		"http.timeout":       "30s",
	}
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"source":       "source",
	"ref":          "reference",
	"input":        "input",
	"name":         "name",
	"preset":       "preset",
	"output":       "output",
	"format":       "format",
	"casing":       "encode.casing",
	"omit-empty":   "encode.omitEmpty",
	"indent":       "encode.indent",
	"labels":       "translate.labels",
	"sanitize":     "translate.sanitize",
	"numeric":      "translate.numeric",
	"log-level":    "log.level",
	"dev":          "log.development",
	"http":         "http.enabled",
	"http-timeout": "http.timeout",
}

// envKeys maps lower-cased, dot separated variable names onto keys, so
// FORMLY_ENCODE_OMITEMPTY reaches encode.omitEmpty.
var envKeys = func() map[string]string {
	out := make(map[string]string, len(flagKeys))
	for _, key := range flagKeys {
		out[strings.ToLower(key)] = key
	}
	return out
}()

// LoadConfig layers defaults, the optional YAML file at path, FORMLY_
// environment variables and flags, in that order.
func LoadConfig(flags *pflag.FlagSet, path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("cli: load defaults: %w", err)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("cli: configuration file: %w", err)
		}
		if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("cli: load configuration file: %w", err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("cli: load environment variables: %w", err)
	}
	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("cli: load command line arguments: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("cli: unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("cli: invalid configuration: %w", err)
	}
	return cfg, nil
}

func envKey(name string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return envKeys[strings.ReplaceAll(trimmed, "_", ".")]
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var err error
	switch c.Format {
	case "json", "yaml":
	default:
		err = multierr.Append(err, fmt.Errorf("format %q: want json or yaml", c.Format))
	}
	if _, perr := model.ParseCasing(c.Encode.Casing); perr != nil {
		err = multierr.Append(err, perr)
	}
	if _, perr := translate.ParseNumericPolicy(c.Translate.Numeric); perr != nil {
		err = multierr.Append(err, perr)
	}
	switch c.Translate.Labels {
	case "raw", "humanize":
	default:
		err = multierr.Append(err, fmt.Errorf("translate.labels %q: want raw or humanize", c.Translate.Labels))
	}
	if _, perr := zapcore.ParseLevel(c.Log.Level); perr != nil {
		err = multierr.Append(err, perr)
	}
	if c.HTTP.Timeout < 0 {
		err = multierr.Append(err, errors.New("http.timeout must not be negative"))
	}
	return err
}

// EncodeOptions converts the encode section into codec options.
func (c Config) EncodeOptions() []model.EncodeOption {
	casing, _ := model.ParseCasing(c.Encode.Casing)
	return []model.EncodeOption{
		model.WithCasing(casing),
		model.WithOmitEmpty(c.Encode.OmitEmpty),
		model.WithIndent(c.Encode.Indent),
	}
}

// Translator builds the translator described by the translate section.
func (c Config) Translator() *translate.Translator {
	numeric, _ := translate.ParseNumericPolicy(c.Translate.Numeric)
	labeler := translate.RawLabeler
	if c.Translate.Labels == "humanize" {
		labeler = translate.HumanizeLabeler
	}
	return translate.New(
		translate.WithLabeler(labeler),
		translate.WithNumericPolicy(numeric),
		translate.WithSanitize(c.Translate.Sanitize),
	)
}
