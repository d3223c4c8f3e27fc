package services

import (
	"encoding/json"
	"fmt"
	"time"
)

// FieldType enumerates the value types allowed for caller-extensible invite
// fields.
type FieldType string

const (
	FieldString      FieldType = "string"
	FieldNumber      FieldType = "number"
	FieldBoolean     FieldType = "boolean"
	FieldDate        FieldType = "date"
	FieldStringArray FieldType = "string[]"
	FieldNumberArray FieldType = "number[]"
)

// FieldSpec describes one extension field.
type FieldSpec struct {
	Type     FieldType `mapstructure:"type"`
	Required bool      `mapstructure:"required"`
}

// FieldSchema maps extension field names to their specs. A nil schema rejects
// every extension field.
type FieldSchema map[string]FieldSpec

// Validate checks extra payload fields against the schema: unknown fields,
// missing required fields and type mismatches are all errors.
func (s FieldSchema) Validate(extra map[string]any) error {
	for name, spec := range s {
		if _, ok := extra[name]; !ok && spec.Required {
			return fmt.Errorf("field %q is required", name)
		}
	}

	for name, value := range extra {
		spec, ok := s[name]
		if !ok {
			return fmt.Errorf("field %q is not part of the beta schema", name)
		}
		if value == nil {
			if spec.Required {
				return fmt.Errorf("field %q is required", name)
			}
			continue
		}
		if err := checkFieldType(name, spec.Type, value); err != nil {
			return err
		}
	}

	return nil
}

func checkFieldType(name string, ft FieldType, value any) error {
	switch ft {
	case FieldString:
		if _, ok := value.(string); !ok {
			return typeMismatch(name, ft, value)
		}
	case FieldNumber:
		if !isNumber(value) {
			return typeMismatch(name, ft, value)
		}
	case FieldBoolean:
		if _, ok := value.(bool); !ok {
			return typeMismatch(name, ft, value)
		}
	case FieldDate:
		switch v := value.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse(time.RFC3339, v); err != nil {
				return fmt.Errorf("field %q must be an RFC 3339 date", name)
			}
		default:
			return typeMismatch(name, ft, value)
		}
	case FieldStringArray:
		return checkArray(name, ft, value, func(e any) bool {
			_, ok := e.(string)
			return ok
		})
	case FieldNumberArray:
		return checkArray(name, ft, value, isNumber)
	default:
		return fmt.Errorf("field %q has unknown type %q", name, ft)
	}
	return nil
}

func checkArray(name string, ft FieldType, value any, elem func(any) bool) error {
	items, ok := value.([]any)
	if !ok {
		return typeMismatch(name, ft, value)
	}
	for _, item := range items {
		if !elem(item) {
			return typeMismatch(name, ft, value)
		}
	}
	return nil
}

// isNumber accepts the numeric shapes JSON decoding produces.
func isNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}

func typeMismatch(name string, ft FieldType, value any) error {
	return fmt.Errorf("field %q must be of type %s, got %T", name, ft, value)
}
