package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"spritedeck/internal/document"
	"spritedeck/internal/faults"
	"spritedeck/internal/sprite"
)

// stringKeys always take string values in set, even when the text parses as JSON.
var stringKeys = map[string]bool{
	sprite.KeyCategory:      true,
	sprite.KeySourceID:      true,
	sprite.KeyDisplayText:   true,
	sprite.KeyBackgroundRef: true,
}

func parseIndex(arg string, length int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, faults.Wrap(faults.ErrStructural, "cli", "index", fmt.Sprintf("%q is not a record index", arg), nil)
	}
	if i < 0 || i >= length {
		return 0, rejectedIndex(i, length)
	}
	return i, nil
}

// recordArg resolves a record given as a position or, when arg is not a
// number, as a source ID.
func recordArg(doc *document.Document, arg string) (int, error) {
	if _, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil {
		return parseIndex(arg, doc.Len())
	}
	if i, ok := doc.FindSourceID(arg); ok {
		return i, nil
	}
	return 0, faults.Wrap(faults.ErrNotFound, "cli", "index", fmt.Sprintf("no record with src %q", arg), nil)
}

func rejectedIndex(i, length int) error {
	return faults.Wrap(faults.ErrStructural, "cli", "index",
		fmt.Sprintf("index %d out of range [0,%d)", i, length), nil)
}

// parseAssignment splits key=value. Values of well-known text fields are
// stored as strings; other values are stored as JSON when they parse as JSON
// and as strings otherwise.
func parseAssignment(arg string) (string, json.RawMessage, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("expected key=value, got %q", arg)
	}
	if !stringKeys[key] && json.Valid([]byte(value)) {
		return key, json.RawMessage(value), nil
	}
	raw, err := sprite.MarshalValue(value)
	if err != nil {
		return "", nil, err
	}
	return key, raw, nil
}

// recordYAML converts a record to a YAML node keeping field order.
func recordYAML(r sprite.Record) (*yaml.Node, error) {
	raw, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return jsonYAML(raw)
}

// jsonYAML converts a JSON value to a block-style YAML node.
func jsonYAML(raw []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	node := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		node = doc.Content[0]
	}
	blockStyle(node)
	return node, nil
}

func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode ||
		(n.Kind == yaml.ScalarNode && n.Style == yaml.DoubleQuotedStyle) {
		n.Style = 0
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func formatSize(r sprite.Record) string {
	if w, h, ok := r.Dimensions(); ok {
		return fmt.Sprintf("%dx%d", w, h)
	}
	return "-"
}

func recordFlags(r sprite.Record, unsaved bool) string {
	var flags []string
	if r.Hidden() {
		flags = append(flags, "hidden")
	}
	if ref, ok := r.BackgroundRef(); ok {
		flags = append(flags, "bg:"+ref)
	}
	if unsaved {
		flags = append(flags, "new")
	}
	return strings.Join(flags, " ")
}

func intsString(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
