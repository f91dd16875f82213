package dashboard

import (
	"bytes"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	schemaStylePatch = "style_patch"
	schemaEmbed      = "embed_payload"
)

// PayloadValidator validates user-authored documents before they reach the
// registry.
type PayloadValidator interface {
	ValidateStylePatch(patch StylePatch) error
	ValidateEmbed(payload EmbedPayload) error
}

var nullableNumber = map[string]any{"type": []any{"number", "null"}}
var nullableString = map[string]any{"type": []any{"string", "null"}}
var nullableBool = map[string]any{"type": []any{"boolean", "null"}}

var builtinSchemas = map[string]map[string]any{
	schemaStylePatch: {
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"gridLineStyle":  map[string]any{"enum": []any{"both", "y-only", "x-only", "dots", "none", nil}},
			"legendPosition": map[string]any{"enum": []any{"hidden", "left", "right", "top", "bottom", "", nil}},
			"borderRadius":   nullableNumber,
			"barWidth":       nullableNumber,
			"barOpacity":     map[string]any{"type": []any{"number", "null"}, "minimum": 0, "maximum": 1},
			"pieOpacity":     map[string]any{"type": []any{"number", "null"}, "minimum": 0, "maximum": 1},
			"donutWidth":     map[string]any{"type": []any{"number", "null"}, "minimum": 0, "maximum": 100},
			"lineWidth":      nullableNumber,
			"markerRadius":   nullableNumber,
			"borderColor":    nullableString,
			"axisColor":      nullableString,
			"isDonut":        nullableBool,
			"applyGradient":  nullableBool,
			"seriesColors": map[string]any{
				"type":                 []any{"object", "null"},
				"additionalProperties": map[string]any{"type": "string"},
			},
			"backgroundColor":        nullableString,
			"border":                 nullableBool,
			"cornerRadius":           nullableString,
			"shadow":                 nullableString,
			"spaceAround":            nullableString,
			"headerBackgroundColor":  nullableString,
			"headerDividerLine":      nullableBool,
			"headerDividerLineColor": nullableString,
			"headerHidden":           nullableBool,
			"headerTitleAlignment":   nullableString,
			"headerTitleTextColor":   nullableString,
		},
	},
	schemaEmbed: {
		"type":     "object",
		"required": []any{"type"},
		"properties": map[string]any{
			"type":         map[string]any{"enum": []any{"styled", "sdk", "html"}},
			"embedCode":    map[string]any{"type": "string"},
			"widgetOid":    map[string]any{"type": "string"},
			"dashboardOid": map[string]any{"type": "string"},
			"styleConfig":  map[string]any{"type": []any{"object", "null"}},
		},
		"allOf": []any{
			map[string]any{
				"if":   map[string]any{"properties": map[string]any{"type": map[string]any{"const": "styled"}}},
				"then": map[string]any{"required": []any{"widgetOid", "dashboardOid"}, "properties": map[string]any{"widgetOid": map[string]any{"minLength": 1}, "dashboardOid": map[string]any{"minLength": 1}}},
			},
		},
	},
}

// JSONSchemaValidator compiles the built-in schemas once and validates
// payloads against them.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// ValidateStylePatch checks the keys and value types of a style patch.
func (v *JSONSchemaValidator) ValidateStylePatch(patch StylePatch) error {
	return v.validate(schemaStylePatch, map[string]any(patch))
}

// ValidateEmbed checks an embed-save payload.
func (v *JSONSchemaValidator) ValidateEmbed(payload EmbedPayload) error {
	return v.validate(schemaEmbed, payload)
}

func (v *JSONSchemaValidator) validate(name string, value any) error {
	schema, err := v.schemaFor(name)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("dashboard: marshal %s payload: %w", name, err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("dashboard: normalize %s payload: %w", name, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: %s failed validation: %w", name, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	def, ok := builtinSchemas[name]
	if !ok {
		return nil, fmt.Errorf("dashboard: unknown schema %s", name)
	}
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopPayloadValidator struct{}

func (noopPayloadValidator) ValidateStylePatch(StylePatch) error { return nil }
func (noopPayloadValidator) ValidateEmbed(EmbedPayload) error    { return nil }
