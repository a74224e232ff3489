package parse

import (
	"encoding/json"

	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/validation"
)

func decodeValue(raw json.RawMessage, valueType ids.ValueType, fields []ids.FieldSpec, feature string) (ids.Value, *Error) {
	switch valueType {
	case ids.TypeBoolean:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return ids.Value{}, typeMismatch(feature, valueType, "non-boolean")
		}
		return ids.NewBool(v), nil

	case ids.TypeString:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return ids.Value{}, typeMismatch(feature, valueType, "non-string")
		}
		return ids.NewString(v), nil

	case ids.TypeEnum:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return ids.Value{}, typeMismatch(feature, valueType, "non-string")
		}
		return ids.NewEnum(v), nil

	case ids.TypeInt:
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return ids.Value{}, typeMismatch(feature, valueType, "non-integer")
		}
		return ids.NewInt(v), nil

	case ids.TypeDouble:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return ids.Value{}, typeMismatch(feature, valueType, "non-numeric")
		}
		return ids.NewDouble(v), nil

	case ids.TypeObject:
		if sizeCheck := validation.ValidateValueSize(raw); !sizeCheck.Valid() {
			return ids.Value{}, &Error{Kind: KindValidation, Message: sizeCheck.Errors["value"], Feature: feature}
		}
		var v map[string]any
		if err := json.Unmarshal(raw, &v); err != nil {
			return ids.Value{}, typeMismatch(feature, valueType, "non-object")
		}
		if err := applyFieldSchema(v, fields, feature); err != nil {
			return ids.Value{}, err
		}
		return ids.NewObject(v), nil

	default:
		return ids.Value{}, &Error{Kind: KindInvalidSnapshot, Message: "unknown value type", Feature: feature, Got: string(valueType)}
	}
}

// applyFieldSchema validates v against fields in place: required fields
// must be present, and missing optional fields are filled with their
// declared default.
func applyFieldSchema(v map[string]any, fields []ids.FieldSpec, feature string) *Error {
	for _, f := range fields {
		val, present := v[f.Name]
		if !present {
			if f.Required {
				return &Error{
					Kind:    KindInvalidSnapshot,
					Message: "missing required field " + f.Name,
					Feature: feature,
				}
			}
			v[f.Name] = f.Default
			continue
		}
		if !fieldTypeMatches(val, f.Type) {
			return &Error{
				Kind:     KindTypeMismatch,
				Message:  "field " + f.Name + " has wrong type",
				Feature:  feature,
				Expected: string(f.Type),
			}
		}
	}
	return nil
}

func fieldTypeMatches(v any, t ids.ValueType) bool {
	switch t {
	case ids.TypeBoolean:
		_, ok := v.(bool)
		return ok
	case ids.TypeString, ids.TypeEnum:
		_, ok := v.(string)
		return ok
	case ids.TypeInt, ids.TypeDouble:
		_, ok := v.(float64) // json decodes all object-field numbers as float64
		return ok
	case ids.TypeObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return false
	}
}

func typeMismatch(feature string, expected ids.ValueType, got string) *Error {
	return &Error{Kind: KindTypeMismatch, Message: "value does not decode as " + string(expected), Feature: feature, Expected: string(expected), Got: got}
}

// encodeValue renders v back to its wire JSON form.
func encodeValue(v ids.Value) (json.RawMessage, error) {
	switch v.Type() {
	case ids.TypeBoolean:
		b, _ := v.Bool()
		return json.Marshal(b)
	case ids.TypeString, ids.TypeEnum:
		s, _ := v.String()
		return json.Marshal(s)
	case ids.TypeInt:
		n, _ := v.Int()
		return json.Marshal(n)
	case ids.TypeDouble:
		f, _ := v.Float()
		return json.Marshal(f)
	case ids.TypeObject:
		o, _ := v.Object()
		return json.Marshal(o)
	default:
		return json.Marshal(nil)
	}
}
