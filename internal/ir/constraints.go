package ir

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Constraints is the declarative equivalent of a CHECK expression.
//
// Every field is optional. A nil field means "no constraint of that kind";
// absence is never encoded as zero. OneOf is set whenever it is non-nil,
// even when empty. JSON names match the host validation
// surface (camelCase), unlike the rest of the IR; YAML scenarios use the
// same names.
type Constraints struct {
	MinLength    *int64   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength    *int64   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min          *int64   `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *int64   `json:"max,omitempty" yaml:"max,omitempty"`
	ExclusiveMin *int64   `json:"exclusiveMin,omitempty" yaml:"exclusiveMin,omitempty"`
	ExclusiveMax *int64   `json:"exclusiveMax,omitempty" yaml:"exclusiveMax,omitempty"`
	Equals       *int64   `json:"equals,omitempty" yaml:"equals,omitempty"`
	Pattern      *string  `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	StartsWith   *string  `json:"startsWith,omitempty" yaml:"startsWith,omitempty"`
	EndsWith     *string  `json:"endsWith,omitempty" yaml:"endsWith,omitempty"`
	OneOf        []string `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
}

// MarshalJSON emits exactly the set fields. A non-nil empty OneOf is
// written as "oneOf": [], which rejects every value; the omitempty tags
// alone would drop it and publish an unconstrained record.
func (c Constraints) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Fields())
}

// MarshalYAML mirrors MarshalJSON for scenario files.
func (c Constraints) MarshalYAML() (any, error) {
	return c.Fields(), nil
}

// Int returns a pointer to n, for building Constraints literals.
func Int(n int64) *int64 { return &n }

// Str returns a pointer to s, for building Constraints literals.
func Str(s string) *string { return &s }

// IsEmpty reports whether no field is set.
func (c Constraints) IsEmpty() bool {
	return len(c.Fields()) == 0
}

// Equal reports whether both records set the same fields to the same values.
func (c Constraints) Equal(o Constraints) bool {
	return intPtrEqual(c.MinLength, o.MinLength) &&
		intPtrEqual(c.MaxLength, o.MaxLength) &&
		intPtrEqual(c.Min, o.Min) &&
		intPtrEqual(c.Max, o.Max) &&
		intPtrEqual(c.ExclusiveMin, o.ExclusiveMin) &&
		intPtrEqual(c.ExclusiveMax, o.ExclusiveMax) &&
		intPtrEqual(c.Equals, o.Equals) &&
		strPtrEqual(c.Pattern, o.Pattern) &&
		strPtrEqual(c.StartsWith, o.StartsWith) &&
		strPtrEqual(c.EndsWith, o.EndsWith) &&
		(c.OneOf == nil) == (o.OneOf == nil) && slices.Equal(c.OneOf, o.OneOf)
}

// Fields returns the set fields as a map keyed by their JSON names.
// Values are int64, string or []any of string, ready for MarshalCanonical.
func (c Constraints) Fields() map[string]any {
	m := make(map[string]any)
	putInt := func(k string, v *int64) {
		if v != nil {
			m[k] = *v
		}
	}
	putStr := func(k string, v *string) {
		if v != nil {
			m[k] = *v
		}
	}
	putInt("minLength", c.MinLength)
	putInt("maxLength", c.MaxLength)
	putInt("min", c.Min)
	putInt("max", c.Max)
	putInt("exclusiveMin", c.ExclusiveMin)
	putInt("exclusiveMax", c.ExclusiveMax)
	putInt("equals", c.Equals)
	putStr("pattern", c.Pattern)
	putStr("startsWith", c.StartsWith)
	putStr("endsWith", c.EndsWith)
	if c.OneOf != nil {
		vals := make([]any, len(c.OneOf))
		for i, s := range c.OneOf {
			vals[i] = s
		}
		m["oneOf"] = vals
	}
	return m
}

// String renders the record as {key: value, ...} in a fixed field order.
func (c Constraints) String() string {
	var parts []string
	addInt := func(k string, v *int64) {
		if v != nil {
			parts = append(parts, k+": "+strconv.FormatInt(*v, 10))
		}
	}
	addStr := func(k string, v *string) {
		if v != nil {
			parts = append(parts, k+": "+strconv.Quote(*v))
		}
	}
	addInt("minLength", c.MinLength)
	addInt("maxLength", c.MaxLength)
	addInt("min", c.Min)
	addInt("max", c.Max)
	addInt("exclusiveMin", c.ExclusiveMin)
	addInt("exclusiveMax", c.ExclusiveMax)
	addInt("equals", c.Equals)
	addStr("pattern", c.Pattern)
	addStr("startsWith", c.StartsWith)
	addStr("endsWith", c.EndsWith)
	if c.OneOf != nil {
		quoted := make([]string, len(c.OneOf))
		for i, s := range c.OneOf {
			quoted[i] = strconv.Quote(s)
		}
		parts = append(parts, "oneOf: ["+strings.Join(quoted, ", ")+"]")
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func intPtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
