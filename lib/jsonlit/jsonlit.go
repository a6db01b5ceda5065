// Package jsonlit builds JSON object literals meant to be embedded in inline
// scripts.
//
// Values are either pre-serialized JSON (embedded as-is once validated) or
// plain text (embedded as a JSON string). The output never contains a raw
// '<', '>', '&', U+2028 or U+2029, so it is safe inside a <script> element.
package jsonlit

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Value is a single entry of an Object.
type Value struct {
	raw json.RawMessage
}

// Raw wraps text that is expected to be a JSON value. Valid JSON is kept
// verbatim (compacted); anything else is quoted as a string so it can never
// break the surrounding literal.
func Raw(text string) Value {
	data := []byte(strings.TrimSpace(text))
	if len(data) > 0 && json.Valid(data) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err == nil {
			return Value{raw: escapeHTML(buf.Bytes())}
		}
	}
	return String(text)
}

// String wraps text as a JSON string.
func String(text string) Value {
	data, _ := json.Marshal(text) // strings always marshal
	return Value{raw: data}
}

// IsRaw reports whether text would be embedded verbatim by Raw.
func IsRaw(text string) bool {
	data := []byte(strings.TrimSpace(text))
	return len(data) > 0 && json.Valid(data)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.raw == nil {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// String returns the serialized form of the value.
func (v Value) String() string {
	b, _ := v.MarshalJSON()
	return string(b)
}

// Object is a string keyed map rendered with sorted keys.
type Object map[string]Value

// String renders the object literal. A nil or empty object renders as "{}".
func (o Object) String() string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		key, _ := json.Marshal(k)
		sb.Write(key)
		sb.WriteByte(':')
		sb.WriteString(o[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// escapeHTML rewrites <, >, & and the U+2028/U+2029 line separators inside
// already valid JSON. json.Compact keeps string contents untouched, so
// verbatim payloads need this pass.
func escapeHTML(data []byte) []byte {
	var buf bytes.Buffer
	json.HTMLEscape(&buf, data)
	return buf.Bytes()
}
