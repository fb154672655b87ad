package variant

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ColorAttribute is the conventional name of the attribute that carries swatches.
const ColorAttribute = "Color"

// Combination assigns one value to every configured attribute name.
type Combination map[string]string

func (c Combination) Clone() Combination {
	out := make(Combination, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Equal reports whether both combinations have the same key set and values.
func (c Combination) Equal(o Combination) bool {
	if len(c) != len(o) {
		return false
	}
	for k, v := range c {
		ov, ok := o[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Key is a canonical, order-independent identity for the combination.
func (c Combination) Key() string {
	names := sortedKeys(c)
	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(k)
		b.WriteByte('\x1e')
		b.WriteString(c[k])
	}
	return b.String()
}

func sortedKeys(c Combination) []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Label renders the values in the given attribute order, e.g. "Red / M".
func (c Combination) Label(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if v, ok := c[n]; ok {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "(default)"
	}
	return strings.Join(parts, " / ")
}

// Matches reports whether every chosen name/value pair is present in c.
func (c Combination) Matches(chosen map[string]string) bool {
	for k, v := range chosen {
		if c[k] != v {
			return false
		}
	}
	return true
}

type SetKind int

const (
	Structured SetKind = iota
	LegacyColor
)

// AttributeSet is the stored attribute-set of a variant: either a structured
// name->value map or the legacy bare color string.
type AttributeSet struct {
	Kind   SetKind
	Values map[string]string
	Color  string
}

func StructuredSet(values map[string]string) AttributeSet {
	return AttributeSet{Kind: Structured, Values: values}
}

func LegacyColorSet(color string) AttributeSet {
	return AttributeSet{Kind: LegacyColor, Color: color}
}

// Normalize turns the set into the structured form used by every algorithm.
func (s AttributeSet) Normalize() Combination {
	if s.Kind == LegacyColor {
		c := strings.TrimSpace(s.Color)
		if c == "" {
			return Combination{}
		}
		return Combination{ColorAttribute: c}
	}
	out := make(Combination, len(s.Values))
	for k, v := range s.Values {
		out[k] = v
	}
	return out
}

// ParseAttributes decodes the `attributes` JSON object text. Empty text yields
// an empty combination; malformed text yields an error.
func ParseAttributes(raw string) (Combination, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return Combination{}, nil
	}
	m := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	out := make(Combination, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64, bool:
			out[k] = fmt.Sprint(t)
		case nil:
			out[k] = ""
		default:
			return nil, fmt.Errorf("attribute %q: unsupported value %T", k, v)
		}
	}
	return out, nil
}

// EncodeAttributes produces the `attributes` JSON object text (keys sorted).
func EncodeAttributes(c Combination) string {
	if len(c) == 0 {
		return "{}"
	}
	b, err := json.Marshal(map[string]string(c))
	if err != nil {
		return "{}"
	}
	return string(b)
}

func parseStringList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeStringList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ParseNames decodes a product's stored attribute-name list.
func ParseNames(raw string) ([]string, error) {
	return parseStringList(raw)
}

func EncodeNames(names []string) string {
	return encodeStringList(names)
}
