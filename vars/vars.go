// Package vars decodes the JSON variable set handed to template engines.
package vars

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotObject is returned for documents whose top level is not an object.
var ErrNotObject = errors.New("variables must be a JSON object")

var errEmpty = errors.New("unexpected end of JSON input")

// Decode parses data as a single JSON object. Scalars, arrays and null are
// rejected since engines bind variables by name.
func Decode(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmpty
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	set, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w, got %s", ErrNotObject, describe(raw))
	}
	return set, nil
}

// Empty is the variable set used when no variables file is given.
func Empty() map[string]any {
	return map[string]any{}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
