package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// componentShapes parses raw (JSON is valid YAML) into a node tree and
// returns the components.schemas mapping, or nil when the document has none.
func componentShapes(raw []byte) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("openapi parser: read key order: %w", err)
	}
	return mappingValue(mappingValue(&root, "components"), "schemas"), nil
}

func resolveNode(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case yaml.AliasNode:
			node = node.Alias
		default:
			return node
		}
	}
	return nil
}

// mappingValue returns the value stored under key, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	node = resolveNode(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return resolveNode(node.Content[i+1])
		}
	}
	return nil
}

// mappingKeys lists the keys of a mapping node in document order.
func mappingKeys(node *yaml.Node) []string {
	node = resolveNode(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

func sequenceItem(node *yaml.Node, index int) *yaml.Node {
	node = resolveNode(node)
	if node == nil || node.Kind != yaml.SequenceNode || index >= len(node.Content) {
		return nil
	}
	return resolveNode(node.Content[index])
}
