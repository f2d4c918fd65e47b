package politician

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Kind is the storage type of an identity attribute.
type Kind int

// Attribute kinds.
const (
	KindString Kind = iota
	KindBool
	KindInt
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value holds one attribute value. Exactly one payload is meaningful,
// selected by Kind.
type Value struct {
	kind Kind
	str  string
	b    bool
	n    int64
	t    time.Time
}

// StringValue wraps a string attribute value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue wraps a boolean attribute value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue wraps an integer attribute value.
func IntValue(n int64) Value { return Value{kind: KindInt, n: n} }

// DateValue wraps a date attribute value. A nil date is empty.
func DateValue(t *time.Time) Value {
	v := Value{kind: KindDate}
	if t != nil {
		v.t = *t
	}
	return v
}

// Kind reports the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload.
func (v Value) Int() int64 { return v.n }

// Date returns the date payload, or nil when unset.
func (v Value) Date() *time.Time {
	if v.t.IsZero() {
		return nil
	}
	t := v.t
	return &t
}

// IsEmpty reports whether the value counts as absent. False booleans and
// zero integers are empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindBool:
		return !v.b
	case KindInt:
		return v.n == 0
	case KindDate:
		return v.t.IsZero()
	default:
		return true
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.n == o.n
	case KindDate:
		return v.t.Equal(o.t)
	default:
		return false
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.n, 10)
	case KindDate:
		if v.t.IsZero() {
			return ""
		}
		return v.t.Format(time.DateOnly)
	default:
		return ""
	}
}

// ParseValue reads the textual form of a value of kind k. Blank text is
// the empty value.
func ParseValue(k Kind, s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch k {
	case KindString:
		return StringValue(s), nil
	case KindBool:
		if s == "" {
			return BoolValue(false), nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, eris.Wrapf(err, "politician: parse bool %q", s)
		}
		return BoolValue(b), nil
	case KindInt:
		if s == "" {
			return IntValue(0), nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, eris.Wrapf(err, "politician: parse int %q", s)
		}
		return IntValue(n), nil
	case KindDate:
		if s == "" {
			return DateValue(nil), nil
		}
		if len(s) > len(time.DateOnly) {
			s = s[:len(time.DateOnly)]
		}
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return Value{}, eris.Wrapf(err, "politician: parse date %q", s)
		}
		return DateValue(&t), nil
	default:
		return Value{}, eris.Errorf("politician: parse value of %s", k)
	}
}
