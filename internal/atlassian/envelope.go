package atlassian

import (
	"bytes"
	"encoding/json"
)

// Result is the flat mapping every adapter returns on success. Values are
// scalars, slices, or simple nested mappings; relationships between
// entities are expressed as string identifiers, never embedded graphs.
type Result map[string]any

// ErrorEnvelope converts an error into the three-key error result shape.
// The envelope always has success=false, error, and error_type; a details
// key is added when the backend supplied extra text.
func ErrorEnvelope(err error) Result {
	e := AsError(err)
	env := Result{
		"success":    false,
		"error":      e.Message,
		"error_type": string(e.Kind),
	}
	if e.Details != "" {
		env["details"] = e.Details
	}
	return env
}

// MarshalResponse renders a result as indented JSON without HTML escaping,
// matching the wire shape documented for the tool layer. Marshal failures
// are themselves folded into an error envelope so callers always receive
// well-formed JSON.
func MarshalResponse(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return MarshalResponse(ErrorEnvelope(APIf("Failed to encode response: %v", err)))
	}
	return buf.String()
}
