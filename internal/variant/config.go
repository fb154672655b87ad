package variant

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBlankName          = errors.New("attribute name is blank")
	ErrBlankValue         = errors.New("attribute value is blank")
	ErrDuplicateAttribute = errors.New("attribute already configured")
	ErrDuplicateValue     = errors.New("value already configured")
	ErrUnknownAttribute   = errors.New("attribute not configured")
)

// Attribute is one axis of variation and its allowed values, in display order.
type Attribute struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// AttributeConfig is an ordered set of attributes. The zero value is an empty
// configuration. Mutators return a new value and never alter the receiver.
type AttributeConfig struct {
	attrs []Attribute
}

// NewAttributeConfig builds a configuration from attributes, dropping blank
// names and repeated names or values.
func NewAttributeConfig(attrs ...Attribute) AttributeConfig {
	var cfg AttributeConfig
	for _, a := range attrs {
		name := strings.TrimSpace(a.Name)
		next, err := cfg.AddAttribute(name)
		if err != nil {
			continue
		}
		cfg = next
		for _, v := range a.Values {
			if next, err := cfg.AddValue(name, v); err == nil {
				cfg = next
			}
		}
	}
	return cfg
}

func (c AttributeConfig) clone() AttributeConfig {
	out := AttributeConfig{attrs: make([]Attribute, len(c.attrs))}
	for i, a := range c.attrs {
		out.attrs[i] = Attribute{Name: a.Name, Values: append([]string(nil), a.Values...)}
	}
	return out
}

func (c AttributeConfig) index(name string) int {
	for i, a := range c.attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

func (c AttributeConfig) Len() int { return len(c.attrs) }

func (c AttributeConfig) Has(name string) bool { return c.index(name) >= 0 }

func (c AttributeConfig) Names() []string {
	out := make([]string, len(c.attrs))
	for i, a := range c.attrs {
		out[i] = a.Name
	}
	return out
}

func (c AttributeConfig) Values(name string) []string {
	i := c.index(name)
	if i < 0 {
		return nil
	}
	return append([]string(nil), c.attrs[i].Values...)
}

func (c AttributeConfig) Attributes() []Attribute {
	return c.clone().attrs
}

func (c AttributeConfig) AddAttribute(name string) (AttributeConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c, ErrBlankName
	}
	if c.Has(name) {
		return c, fmt.Errorf("%w: %s", ErrDuplicateAttribute, name)
	}
	out := c.clone()
	out.attrs = append(out.attrs, Attribute{Name: name})
	return out, nil
}

func (c AttributeConfig) RemoveAttribute(name string) AttributeConfig {
	i := c.index(name)
	if i < 0 {
		return c
	}
	out := c.clone()
	out.attrs = append(out.attrs[:i], out.attrs[i+1:]...)
	return out
}

func (c AttributeConfig) AddValue(name, value string) (AttributeConfig, error) {
	i := c.index(name)
	if i < 0 {
		return c, fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return c, ErrBlankValue
	}
	for _, v := range c.attrs[i].Values {
		if v == value {
			return c, fmt.Errorf("%w: %s=%s", ErrDuplicateValue, name, value)
		}
	}
	out := c.clone()
	out.attrs[i].Values = append(out.attrs[i].Values, value)
	return out, nil
}

func (c AttributeConfig) RemoveValue(name, value string) AttributeConfig {
	i := c.index(name)
	if i < 0 {
		return c
	}
	out := c.clone()
	vals := out.attrs[i].Values[:0]
	for _, v := range out.attrs[i].Values {
		if v != value {
			vals = append(vals, v)
		}
	}
	out.attrs[i].Values = vals
	return out
}

// ConfigFromVariants rebuilds the value lists for names by scanning the
// variants' attribute-sets in order. Values are not stored on their own, so a
// value without any variant is not recovered.
func ConfigFromVariants(names []string, variants []Variant) AttributeConfig {
	var cfg AttributeConfig
	for _, n := range names {
		if next, err := cfg.AddAttribute(n); err == nil {
			cfg = next
		}
	}
	for _, v := range variants {
		for _, n := range cfg.Names() {
			val, ok := v.Attributes[n]
			if !ok {
				continue
			}
			if next, err := cfg.AddValue(n, val); err == nil {
				cfg = next
			}
		}
	}
	return cfg
}

// InferNames derives attribute names from variants when a product has no
// stored list (legacy data). Color comes first, the rest in first-seen order
// with each variant's keys visited in sorted order.
func InferNames(variants []Variant) []string {
	seen := map[string]bool{}
	var names []string
	hasColor := false
	for _, v := range variants {
		for _, k := range sortedKeys(v.Attributes) {
			if k == ColorAttribute {
				hasColor = true
				continue
			}
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	if hasColor {
		names = append([]string{ColorAttribute}, names...)
	}
	return names
}
