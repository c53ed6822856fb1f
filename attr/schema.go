package attr

import (
	"fmt"
)

// FieldType defines the data type of an attribute.
type FieldType uint8

const (
	FieldTypeAny FieldType = iota
	FieldTypeInt
	FieldTypeFloat
	FieldTypeString
	FieldTypeBool
	FieldTypeArray
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldTypeAny:
		return "Any"
	case FieldTypeInt:
		return "Int"
	case FieldTypeFloat:
		return "Float"
	case FieldTypeString:
		return "String"
	case FieldTypeBool:
		return "Bool"
	case FieldTypeArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Schema defines the expected kinds of named attributes.
type Schema map[string]FieldType

// Validate checks if the given attribute map conforms to the schema.
// Attributes not named by the schema are accepted.
func (s Schema) Validate(m Map) error {
	if s == nil {
		return nil
	}
	for _, k := range m.Keys() {
		expectedType, ok := s[k]
		if !ok {
			continue
		}
		v := m[k]
		if !checkKind(v, expectedType) {
			return fmt.Errorf("attribute %q has invalid type %s, expected %s", k, v.Kind, expectedType)
		}
	}
	return nil
}

func checkKind(v Value, expected FieldType) bool {
	if v.Kind == KindNull {
		return true
	}
	switch expected {
	case FieldTypeAny:
		return true
	case FieldTypeInt:
		return v.Kind == KindInt
	case FieldTypeFloat:
		return v.IsNumber() // Allow upgrading Int to Float
	case FieldTypeString:
		return v.Kind == KindString
	case FieldTypeBool:
		return v.Kind == KindBool
	case FieldTypeArray:
		if v.Kind != KindArray {
			return false
		}
		for _, e := range v.A {
			if !e.IsNumber() {
				return false
			}
		}
		return true
	}
	return false
}
