package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// render formats a JSON payload as json or yaml.
func render(data []byte, format, indent string) ([]byte, error) {
	switch format {
	case "yaml":
		return jsonToYAML(data)
	default:
		if indent == "" {
			return append(bytes.TrimSpace(data), '\n'), nil
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", indent); err != nil {
			return nil, fmt.Errorf("cli: indent json: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}
}

// jsonToYAML re-emits a JSON document as block YAML. Going through a node
// tree keeps object key order.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("cli: convert to yaml: %w", err)
	}
	unstyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("cli: convert to yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("cli: convert to yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// unstyle drops JSON flow and quote styles. Strings whose plain form would
// read back differently stay quoted.
func unstyle(node *yaml.Node) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!str" && !plainSafe(node.Value) {
			return
		}
		node.Style = 0
	default:
		node.Style = 0
	}
	for _, child := range node.Content {
		unstyle(child)
	}
}

func plainSafe(value string) bool {
	if value == "" {
		return false
	}
	var decoded any
	if err := yaml.Unmarshal([]byte(value), &decoded); err != nil {
		return false
	}
	text, ok := decoded.(string)
	return ok && text == value
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cli: write %s: %w", path, err)
	}
	return nil
}

// readInput reads path, or r when path is empty or "-".
func readInput(r io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(r)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cli: read %s: %w", path, err)
	}
	return data, nil
}
