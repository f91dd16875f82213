package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaValidatorStylePatch(t *testing.T) {
	validator := NewJSONSchemaValidator()

	if err := validator.ValidateStylePatch(StylePatch{"gridLineStyle": "dots", "barWidth": 12.0}); err != nil {
		t.Fatalf("expected valid patch, got %v", err)
	}
	if err := validator.ValidateStylePatch(StylePatch{"borderRadius": nil}); err != nil {
		t.Fatalf("expected null to clear a field, got %v", err)
	}
	if err := validator.ValidateStylePatch(StylePatch{"gridLineStyle": "zigzag"}); err == nil {
		t.Fatalf("expected unknown gridline style to fail")
	}
	if err := validator.ValidateStylePatch(StylePatch{"barOpacity": 4}); err == nil {
		t.Fatalf("expected opacity above 1 to fail")
	}
	if err := validator.ValidateStylePatch(StylePatch{"fontSize": 12}); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestJSONSchemaValidatorEmbedPayload(t *testing.T) {
	validator := NewJSONSchemaValidator()

	require.NoError(t, validator.ValidateEmbed(EmbedPayload{Type: EmbedSDK, EmbedCode: "<script></script>"}))
	require.NoError(t, validator.ValidateEmbed(EmbedPayload{Type: EmbedStyled, WidgetOID: "w1", DashboardOID: "d1"}))

	assert.Error(t, validator.ValidateEmbed(EmbedPayload{Type: "iframe", EmbedCode: "x"}))
	assert.Error(t, validator.ValidateEmbed(EmbedPayload{Type: EmbedStyled, WidgetOID: "w1"}))
}

func TestJSONSchemaValidatorCachesCompiledSchemas(t *testing.T) {
	validator := NewJSONSchemaValidator()
	if err := validator.ValidateStylePatch(nil); err != nil {
		t.Fatalf("unexpected error validating empty patch: %v", err)
	}
	if len(validator.compiled) != 1 {
		t.Fatalf("expected schema cache to contain 1 entry, got %d", len(validator.compiled))
	}
	if err := validator.ValidateStylePatch(StylePatch{}); err != nil {
		t.Fatalf("unexpected error on cached validation: %v", err)
	}
	if len(validator.compiled) != 1 {
		t.Fatalf("expected schema cache to remain 1 entry, got %d", len(validator.compiled))
	}
}
