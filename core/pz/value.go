package pz

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds.
const (
	KindString Kind = iota
	KindNumber
	KindTime
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

// Value is a header field value: a raw string, a number or a timestamp.
// The raw text from the file is always retained.
type Value struct {
	kind Kind
	raw  string
	num  float64
	at   time.Time
}

// StringValue returns a Value holding s uncoerced.
func StringValue(s string) Value {
	return Value{kind: KindString, raw: s}
}

// NumberValue returns a Value holding f, remembering raw as its source text.
func NumberValue(raw string, f float64) Value {
	return Value{kind: KindNumber, raw: raw, num: f}
}

// TimeValue returns a Value holding t in UTC, remembering raw as its source text.
func TimeValue(raw string, t time.Time) Value {
	return Value{kind: KindTime, raw: raw, at: t.UTC()}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Raw returns the trimmed text the value was read from.
func (v Value) Raw() string { return v.raw }

// Number returns the numeric value and true when v is a number.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Time returns the timestamp and true when v is a timestamp.
func (v Value) Time() (time.Time, bool) {
	return v.at, v.kind == KindTime
}

// String returns the raw text for strings and numbers and RFC 3339 for timestamps.
func (v Value) String() string {
	if v.kind == KindTime {
		return v.at.Format(time.RFC3339Nano)
	}
	return v.raw
}

// Equal reports whether v and o hold the same variant and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindTime:
		return v.at.Equal(o.at)
	default:
		return v.raw == o.raw
	}
}

// MarshalJSON encodes strings as JSON strings, numbers as JSON numbers and
// timestamps as RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return json.Marshal(v.raw)
		}
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindTime:
		return json.Marshal(v.at.Format(time.RFC3339Nano))
	default:
		return json.Marshal(v.raw)
	}
}

// Header maps header field names to their coerced values.
type Header map[string]Value

// Get returns the value stored under key.
func (h Header) Get(key string) (Value, bool) {
	v, ok := h[key]
	return v, ok
}

// String returns the text form of the value stored under key, or "".
func (h Header) String(key string) string {
	if v, ok := h[key]; ok {
		return v.String()
	}
	return ""
}
