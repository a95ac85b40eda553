// Package cli implements the formly-cli command tree.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formly"
	"github.com/goliatone/go-formly/pkg/model"
	pkgopenapi "github.com/goliatone/go-formly/pkg/openapi"
	"github.com/goliatone/go-formly/pkg/orchestrator"
	"github.com/goliatone/go-formly/pkg/schema"
)

// Option configures the command tree.
type Option func(*app)

// WithIO replaces the standard streams.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *app) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

// WithPrompter replaces the terminal prompter.
func WithPrompter(p Prompter) Option {
	return func(a *app) {
		a.prompter = p
	}
}

// WithInteractive forces prompting on or off.
func WithInteractive(interactive bool) Option {
	return func(a *app) {
		a.interactive = func() bool { return interactive }
	}
}

type app struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	prompter    Prompter
	interactive func() bool
	configPath  string
}

// Command returns the root formly-cli command.
func Command(options ...Option) *cobra.Command {
	a := &app{
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		prompter:    NewSurveyPrompter(),
		interactive: stdinIsTerminal,
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}

	root := &cobra.Command{
		Use:           "formly-cli",
		Short:         "Convert between OpenAPI component schemas and Formly field configurations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringP("output", "o", "", "write the result to a file instead of stdout")
	flags.StringP("format", "f", "json", "output format: json or yaml")
	flags.String("casing", "camel", "field name casing: camel, snake or pascal")
	flags.Bool("omit-empty", true, "omit empty attributes from field configurations")
	flags.String("indent", "  ", "JSON indentation")
	flags.String("log-level", "warn", "log level")
	flags.Bool("dev", false, "human readable development logging")

	root.AddCommand(a.fieldsCommand(), a.schemaCommand(), a.listCommand())
	return root
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", "", "OpenAPI document path or http(s) URL")
	cmd.Flags().Bool("http", false, "allow loading documents over http(s)")
	cmd.Flags().Duration("http-timeout", 0, "timeout for http(s) requests")
}

func (a *app) fieldsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Translate a component schema into field configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withConfig(cmd, a.runFields)
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().StringP("ref", "r", "", "schema reference or component name")
	cmd.Flags().String("preset", "", "JSON preset applied to the translated fields")
	cmd.Flags().String("labels", "raw", "label strategy: raw or humanize")
	cmd.Flags().Bool("sanitize", false, "strip markup from titles and descriptions")
	cmd.Flags().String("numeric", "preserve", "integer bound policy: preserve, truncate or reject")
	return cmd
}

func (a *app) schemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Translate field configurations back into a component schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withConfig(cmd, a.runSchema)
		},
	}
	cmd.Flags().StringP("input", "i", "-", "field configuration JSON file")
	cmd.Flags().StringP("name", "n", "Form", "component name of the produced schema")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the component schemas of a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withConfig(cmd, a.runList)
		},
	}
	addSourceFlags(cmd)
	return cmd
}

type runFunc func(ctx context.Context, cfg Config, logger *zap.Logger) error

func (a *app) withConfig(cmd *cobra.Command, run runFunc) error {
	cfg, err := LoadConfig(cmd.Flags(), a.configPath)
	if err != nil {
		return err
	}
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return run(ctx, cfg, logger.Named("formly-cli"))
}

func (a *app) loadComponents(ctx context.Context, cfg Config) (*schema.Components, error) {
	if cfg.Source == "" {
		return nil, errors.New("cli: --source is required")
	}
	src, err := pkgopenapi.ParseSource(cfg.Source)
	if err != nil {
		return nil, err
	}
	var options []pkgopenapi.LoaderOption
	if cfg.HTTP.Enabled {
		options = append(options, pkgopenapi.WithHTTPFallback(cfg.HTTP.Timeout))
	}
	return formly.LoadComponents(ctx, src, formly.NewLoader(options...), formly.NewParser())
}

func (a *app) runFields(ctx context.Context, cfg Config, logger *zap.Logger) error {
	components, err := a.loadComponents(ctx, cfg)
	if err != nil {
		return err
	}
	ref, err := a.reference(ctx, cfg, components)
	if err != nil {
		return err
	}

	options := []orchestrator.Option{
		orchestrator.WithDocument(components),
		orchestrator.WithTranslator(cfg.Translator()),
		orchestrator.WithLogger(logger),
	}
	if cfg.Preset != "" {
		preset, err := orchestrator.NewJSONPresetTransformerFromFS(os.DirFS(filepath.Dir(cfg.Preset)), filepath.Base(cfg.Preset))
		if err != nil {
			return err
		}
		options = append(options, orchestrator.WithTransformers(preset))
	}

	orch := formly.NewOrchestrator(options...)
	if err := orch.AddSchema(ctx, ref); err != nil {
		return err
	}
	data, err := orch.EncodeJSON(ref, cfg.EncodeOptions()...)
	if err != nil {
		return err
	}
	out, err := render(data, cfg.Format, cfg.Encode.Indent)
	if err != nil {
		return err
	}
	logger.Debug("field configurations written", zap.String("reference", ref), zap.String("format", cfg.Format))
	return writeOutput(a.out, cfg.Output, out)
}

// reference resolves --ref, accepting bare component names, and falls back to
// a prompt on interactive terminals.
func (a *app) reference(ctx context.Context, cfg Config, components *schema.Components) (string, error) {
	ref := strings.TrimSpace(cfg.Reference)
	if ref == "" {
		if a.interactive == nil || !a.interactive() {
			return "", errors.New("cli: --ref is required when not running interactively")
		}
		name, err := a.prompter.Select(ctx, "Component schema", components.Names())
		if err != nil {
			return "", err
		}
		ref = name
	}
	if !strings.HasPrefix(ref, "#/") {
		ref = schema.Reference(ref)
	}
	return ref, nil
}

func (a *app) runSchema(ctx context.Context, cfg Config, logger *zap.Logger) error {
	data, err := readInput(a.in, cfg.Input)
	if err != nil {
		return err
	}
	fields, err := model.Decode(data)
	if err != nil {
		return err
	}
	if err := model.Validate(fields); err != nil {
		return fmt.Errorf("cli: invalid field configurations: %w", err)
	}
	node := cfg.Translator().AttachToParent(nil, fields)
	if err := formly.ValidateSchema(ctx, node); err != nil {
		return fmt.Errorf("cli: produced schema is invalid: %w", err)
	}

	body, err := node.MarshalJSON()
	if err != nil {
		return err
	}
	name, err := json.Marshal(cfg.Name)
	if err != nil {
		return err
	}
	var doc bytes.Buffer
	doc.WriteString(`{"components":{"schemas":{`)
	doc.Write(name)
	doc.WriteByte(':')
	doc.Write(body)
	doc.WriteString(`}}}`)

	out, err := render(doc.Bytes(), cfg.Format, cfg.Encode.Indent)
	if err != nil {
		return err
	}
	logger.Debug("schema written", zap.String("name", cfg.Name), zap.Int("fields", len(fields)))
	return writeOutput(a.out, cfg.Output, out)
}

func (a *app) runList(ctx context.Context, cfg Config, logger *zap.Logger) error {
	components, err := a.loadComponents(ctx, cfg)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, ref := range components.References() {
		buf.WriteString(ref)
		buf.WriteByte('\n')
	}
	logger.Debug("schemas listed", zap.Int("count", components.Len()))
	return writeOutput(a.out, cfg.Output, buf.Bytes())
}
