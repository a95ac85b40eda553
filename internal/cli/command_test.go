package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formly/pkg/model"
)

var petstore = filepath.Join("..", "..", "testdata", "petstore.yaml")

func run(t *testing.T, stdin string, args []string, options ...Option) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	options = append([]Option{WithIO(strings.NewReader(stdin), &out, &errOut), WithInteractive(false)}, options...)
	cmd := Command(options...)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func fieldKeys(fields []model.FieldConfig) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

func TestFieldsCommand(t *testing.T) {
	out, err := run(t, "", []string{"fields", "--source", petstore, "--ref", "Pet"})
	require.NoError(t, err)

	fields, err := model.Decode([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "status", "tags"}, fieldKeys(fields))
	assert.True(t, fields[0].IsRequired())
	assert.Equal(t, "Name", fields[0].Props.Label)
}

func TestFieldsCommandAppliesTranslateFlags(t *testing.T) {
	out, err := run(t, "", []string{"fields", "-s", petstore, "-r", "#/components/schemas/Pet", "--labels", "humanize", "--casing", "snake"})
	require.NoError(t, err)
	assert.Contains(t, out, `"default_value": "available"`)
	assert.Contains(t, out, `"label": "Age"`)
}

func TestFieldsCommandPreset(t *testing.T) {
	preset := filepath.Join(t.TempDir(), "preset.json")
	require.NoError(t, writeOutput(nil, preset, []byte(`{"fields":{"name":{"label":"Pet name","placeholder":"Rex"}}}`)))

	out, err := run(t, "", []string{"fields", "-s", petstore, "-r", "Pet", "--preset", preset})
	require.NoError(t, err)

	fields, err := model.Decode([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "Pet name", fields[0].Props.Label)
	assert.Equal(t, "Rex", fields[0].Props.Placeholder)
}

func TestFieldsCommandYAMLOutput(t *testing.T) {
	out, err := run(t, "", []string{"fields", "-s", petstore, "-r", "Owner", "--format", "yaml"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "- key: email\n"), out)
	assert.Contains(t, out, "label: E-mail")
}

func TestFieldsCommandPromptsForReference(t *testing.T) {
	var offered []string
	prompter := PromptFunc(func(_ context.Context, _ string, options []string) (string, error) {
		offered = options
		return "Owner", nil
	})

	out, err := run(t, "", []string{"fields", "-s", petstore}, WithInteractive(true), WithPrompter(prompter))
	require.NoError(t, err)
	assert.Equal(t, []string{"Pet", "Owner"}, offered, "document order")

	fields, err := model.Decode([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "pets"}, fieldKeys(fields))
}

func TestFieldsCommandPromptAborted(t *testing.T) {
	prompter := PromptFunc(func(context.Context, string, []string) (string, error) {
		return "", translateSurveyErr(terminal.InterruptErr)
	})
	_, err := run(t, "", []string{"fields", "-s", petstore}, WithInteractive(true), WithPrompter(prompter))
	assert.ErrorIs(t, err, ErrAborted)
}

func TestFieldsCommandRequiresReferenceWhenNotInteractive(t *testing.T) {
	_, err := run(t, "", []string{"fields", "-s", petstore})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--ref is required")
}

func TestFieldsCommandUnknownReference(t *testing.T) {
	_, err := run(t, "", []string{"fields", "-s", petstore, "-r", "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}

func TestFieldsCommandRequiresSource(t *testing.T) {
	_, err := run(t, "", []string{"fields", "-r", "Pet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--source is required")
}

func TestListCommand(t *testing.T) {
	out, err := run(t, "", []string{"list", "--source", petstore})
	require.NoError(t, err)
	assert.Equal(t, "#/components/schemas/Pet\n#/components/schemas/Owner\n", out, "document order")
}

func TestSchemaCommand(t *testing.T) {
	input := `[
		{"key":"name","type":"input","props":{"label":"Name","required":true,"maxLength":40}},
		{"key":"age","type":"number","props":{"min":0,"step":1}},
		{"template":"<hr>"}
	]`
	out, err := run(t, input, []string{"schema", "--name", "Contact", "--format", "yaml"})
	require.NoError(t, err)

	var doc struct {
		Components struct {
			Schemas map[string]struct {
				Type       string   `yaml:"type"`
				Required   []string `yaml:"required"`
				Properties map[string]struct {
					Type      string `yaml:"type"`
					Title     string `yaml:"title"`
					MaxLength int    `yaml:"maxLength"`
				} `yaml:"properties"`
				Extension map[string]any `yaml:"x-formly"`
			} `yaml:"schemas"`
		} `yaml:"components"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	contact, ok := doc.Components.Schemas["Contact"]
	require.True(t, ok, out)
	assert.Equal(t, "object", contact.Type)
	assert.Equal(t, []string{"name"}, contact.Required)
	assert.Equal(t, "Name", contact.Properties["name"].Title)
	assert.Equal(t, 40, contact.Properties["name"].MaxLength)
	assert.Equal(t, "integer", contact.Properties["age"].Type)
	assert.Contains(t, contact.Extension, "additionalFields")
}

func TestSchemaCommandRejectsInvalidInput(t *testing.T) {
	_, err := run(t, `{"0":{"key":"a"}}`, []string{"schema"})
	assert.ErrorIs(t, err, model.ErrInvalidPayload)
}

func TestSchemaCommandRejectsDuplicateKeys(t *testing.T) {
	input := `[
		{"key":"a","type":"input","props":{"required":true}},
		{"key":"a","type":"number"}
	]`
	out, err := run(t, input, []string{"schema"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate key "a"`)
	assert.Empty(t, out)
}

func TestJSONToYAMLKeepsOrderAndQuoting(t *testing.T) {
	out, err := jsonToYAML([]byte(`{"b":"true","a":1,"c":"plain","d":["x: y"]}`))
	require.NoError(t, err)
	assert.Equal(t, "b: \"true\"\na: 1\nc: plain\nd:\n  - \"x: y\"\n", string(out))
}
