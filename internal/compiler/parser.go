package compiler

import (
	"fmt"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parser converts raw bytes into a FlowDocument.
// YAML is accepted, and JSON too since it is a subset of YAML.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes raw content into a FlowDocument.
func (p *Parser) Parse(data []byte) (*FlowDocument, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse flow: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse flow: empty document")
	}
	return Decode(raw)
}

// Decode maps a generic document (frontmatter, YAML, decoded JSON) onto a FlowDocument.
// Scalars are weakly typed so `value: 42` binds the string "42".
func Decode(raw map[string]any) (*FlowDocument, error) {
	var doc FlowDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode flow: %w", err)
	}
	return &doc, nil
}

// CompileBytes parses raw content and compiles it into a FlowGraph.
// fallbackID names the flow when the document does not.
func CompileBytes(data []byte, fallbackID string) (*domain.FlowGraph, error) {
	doc, err := NewParser().Parse(data)
	if err != nil {
		return nil, err
	}
	return Compile(doc, fallbackID)
}
