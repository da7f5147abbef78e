package iics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// validatable is implemented by entity types that carry required-field rules.
type validatable interface {
	Validate() error
}

// ParseEntity decodes raw JSON into a single entity of type T. Any decode or
// required-field failure surfaces as a validation Error carrying the shape
// name and the raw payload. shape is the human-readable name of T used in
// error messages.
func ParseEntity[T any](shape string, data []byte) (*T, error) {
	var out T

	err := json.Unmarshal(data, &out)
	if err != nil {
		return nil, NewValidationError(shape, data, err)
	}

	if v, ok := any(&out).(validatable); ok {
		err = v.Validate()
		if err != nil {
			return nil, NewValidationError(shape, data, err)
		}
	}

	return &out, nil
}

// ParseList decodes raw JSON into a slice of T. The payload must be a JSON
// array; anything else fails validation with the actual JSON type in the
// message, before any per-element parsing. Elements are validated
// independently and the first invalid one wins.
func ParseList[T any](shape string, data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, NewValidationError(shape, data,
			fmt.Errorf("%w of %s, got %s", ErrExpectedArray, shape, jsonTypeName(trimmed)))
	}

	var elements []json.RawMessage

	err := json.Unmarshal(trimmed, &elements)
	if err != nil {
		return nil, NewValidationError(shape, data, err)
	}

	out := make([]T, 0, len(elements))

	for _, element := range elements {
		item, err := ParseEntity[T](shape, element)
		if err != nil {
			return nil, err
		}

		out = append(out, *item)
	}

	return out, nil
}

// jsonTypeName names the JSON type of a raw value for validation messages.
func jsonTypeName(data []byte) string {
	if len(data) == 0 {
		return "empty input"
	}

	switch data[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
