package simplecms

import (
	"bytes"
	"encoding/json"
)

// ValueKind is the shape of a stored property value.
type ValueKind int

const (
	// ValueAbsent means no value is stored.
	ValueAbsent ValueKind = iota
	// ValueScalar is a bare JSON scalar (string, number, bool).
	ValueScalar
	// ValueStructured is a JSON object payload.
	ValueStructured
)

func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueStructured:
		return "structured"
	default:
		return "absent"
	}
}

// Value is a property value whose shape is decided once, when it is read.
// The zero Value is absent.
type Value struct {
	kind   ValueKind
	scalar interface{}
	fields map[string]interface{}
}

// AbsentValue returns an empty value.
func AbsentValue() Value {
	return Value{}
}

// ScalarValue wraps a bare scalar. A nil scalar is absent.
func ScalarValue(v interface{}) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: ValueScalar, scalar: v}
}

// StructuredValue wraps an object payload. A nil map is absent.
func StructuredValue(fields map[string]interface{}) Value {
	if fields == nil {
		return Value{}
	}
	return Value{kind: ValueStructured, fields: fields}
}

// ValueOf classifies an arbitrary decoded JSON value.
func ValueOf(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case map[string]interface{}:
		return StructuredValue(t)
	default:
		return ScalarValue(t)
	}
}

// Kind returns the value's shape.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether no value is stored.
func (v Value) IsAbsent() bool { return v.kind == ValueAbsent }

// Scalar returns the scalar payload, or nil.
func (v Value) Scalar() interface{} { return v.scalar }

// Fields returns the structured payload, or nil.
func (v Value) Fields() map[string]interface{} { return v.fields }

// String returns the scalar as a string when it is one.
func (v Value) String() (string, bool) {
	if v.kind != ValueScalar {
		return "", false
	}
	s, ok := v.scalar.(string)
	return s, ok
}

// Field returns a field of a structured payload.
func (v Value) Field(name string) (interface{}, bool) {
	if v.kind != ValueStructured {
		return nil, false
	}
	f, ok := v.fields[name]
	if !ok || f == nil {
		return nil, false
	}
	return f, true
}

// Interface returns the raw payload: nil, the scalar, or the field map.
func (v Value) Interface() interface{} {
	switch v.kind {
	case ValueScalar:
		return v.scalar
	case ValueStructured:
		return v.fields
	default:
		return nil
	}
}

// Equal compares two values by their JSON encoding.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	a, errA := json.Marshal(v)
	b, errB := json.Marshal(o)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	if v.kind != ValueStructured {
		return v
	}
	return Value{kind: ValueStructured, fields: cloneMap(v.fields)}
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	c := make(map[string]interface{}, len(m))
	for k, v := range m {
		c[k] = cloneAny(v)
	}
	return c
}

func cloneAny(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = cloneAny(e)
		}
		return s
	default:
		return v
	}
}

// MarshalJSON encodes the raw payload.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON classifies the decoded payload.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// UnmarshalYAML lets settings files carry property values.
func (v *Value) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*v = ValueOf(normalizeYAML(raw))
	return nil
}

// yaml decoders may produce map[interface{}]interface{} for nested maps.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			if ks, ok := k.(string); ok {
				m[ks] = normalizeYAML(e)
			}
		}
		return m
	case map[string]interface{}:
		for k, e := range t {
			t[k] = normalizeYAML(e)
		}
		return t
	case []interface{}:
		for i, e := range t {
			t[i] = normalizeYAML(e)
		}
		return t
	default:
		return v
	}
}
