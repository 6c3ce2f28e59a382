package sprite

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Field is a single key/value pair of an ordered JSON object.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Object is a JSON object that remembers key order and keeps values as raw JSON.
// The zero value is an empty object. Writes never touch storage shared with
// earlier copies, so an Object behaves as a value.
type Object struct {
	fields []Field
}

// Len returns the number of fields.
func (o Object) Len() int { return len(o.fields) }

// Keys returns the field names in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the ordered fields.
func (o Object) Fields() []Field {
	out := make([]Field, len(o.fields))
	for i, f := range o.fields {
		out[i] = Field{Key: f.Key, Value: cloneRaw(f.Value)}
	}
	return out
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	return o.index(key) >= 0
}

// Raw returns the raw JSON value stored under key.
func (o Object) Raw(key string) (json.RawMessage, bool) {
	i := o.index(key)
	if i < 0 {
		return nil, false
	}
	return o.fields[i].Value, true
}

// String returns the value under key when it is a JSON string.
func (o Object) String(key string) (string, bool) {
	raw, ok := o.Raw(key)
	if !ok || !isKind(raw, '"') {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Int returns the value under key when it is an integral JSON number.
func (o Object) Int(key string) (int, bool) {
	raw, ok := o.Raw(key)
	if !ok {
		return 0, false
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != float64(int64(f)) {
			return 0, false
		}
		v = int64(f)
	}
	return int(v), true
}

// Bool returns the value under key when it is a JSON boolean. The second
// result is false for absent keys and for non-boolean values.
func (o Object) Bool(key string) (bool, bool) {
	raw, ok := o.Raw(key)
	if !ok {
		return false, false
	}
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// IsBool reports whether key holds a JSON boolean.
func (o Object) IsBool(key string) bool {
	_, ok := o.Bool(key)
	return ok
}

// Set stores value under key, keeping the position of an existing key and
// appending new keys at the end.
func (o *Object) Set(key string, value any) error {
	raw, err := MarshalValue(value)
	if err != nil {
		return fmt.Errorf("encode field %q: %w", key, err)
	}
	o.setRaw(key, raw)
	return nil
}

// SetRaw stores an already-encoded JSON value under key.
func (o *Object) SetRaw(key string, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("field %q: invalid JSON value", key)
	}
	o.setRaw(key, cloneRaw(raw))
	return nil
}

// SetString stores a string value under key.
func (o *Object) SetString(key, value string) {
	raw, _ := MarshalValue(value)
	o.setRaw(key, raw)
}

// SetInt stores an integer value under key.
func (o *Object) SetInt(key string, value int) {
	o.setRaw(key, json.RawMessage(fmt.Sprintf("%d", value)))
}

// SetBool stores a boolean value under key.
func (o *Object) SetBool(key string, value bool) {
	if value {
		o.setRaw(key, json.RawMessage("true"))
		return
	}
	o.setRaw(key, json.RawMessage("false"))
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	i := o.index(key)
	if i < 0 {
		return false
	}
	o.fields = append(o.fields[:i:i], o.fields[i+1:]...)
	return true
}

// Clone returns an independent copy.
func (o Object) Clone() Object {
	return Object{fields: o.Fields()}
}

// Equal compares key order and compacted values.
func (o Object) Equal(other Object) bool {
	if len(o.fields) != len(other.fields) {
		return false
	}
	for i := range o.fields {
		if o.fields[i].Key != other.fields[i].Key {
			return false
		}
		if !rawEqual(o.fields[i].Value, other.fields[i].Value) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the fields in order without HTML escaping.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := MarshalValue(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(f.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. A repeated key keeps
// its first position and its last value.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("expected JSON object")
	}
	fields := make([]Field, 0, 8)
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		if idx, dup := seen[key]; dup {
			fields[idx].Value = raw
			continue
		}
		seen[key] = len(fields)
		fields = append(fields, Field{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON object")
	}
	o.fields = fields
	return nil
}

// setRaw writes into a fresh slice so value copies of o never observe the change.
func (o *Object) setRaw(key string, raw json.RawMessage) {
	fields := make([]Field, len(o.fields), len(o.fields)+1)
	copy(fields, o.fields)
	if i := o.index(key); i >= 0 {
		fields[i].Value = raw
	} else {
		fields = append(fields, Field{Key: key, Value: raw})
	}
	o.fields = fields
}

func (o Object) index(key string) int {
	for i, f := range o.fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// MarshalValue encodes v as compact JSON without escaping <, > and &.
func MarshalValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func isKind(raw json.RawMessage, first byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == first
}

func rawEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if err := json.Compact(&ca, a); err != nil {
		return bytes.Equal(a, b)
	}
	if err := json.Compact(&cb, b); err != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
