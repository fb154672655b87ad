package variant

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSwatch is the color shown for a Color value without a stored code.
const DefaultSwatch = "#cccccc"

var (
	ErrInvalidColor      = errors.New("invalid color code")
	ErrNotColorAttribute = errors.New("image attribute is not a color attribute")
	ErrNoImageAttribute  = errors.New("no image attribute selected")
)

// IsColorAttribute reports whether name is the conventional swatch attribute.
func IsColorAttribute(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), ColorAttribute)
}

// NormalizeColor accepts "#rgb", "#rrggbb" with or without the leading hash
// and returns the lower-case "#rrggbb" form.
func NormalizeColor(code string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(code))
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, code)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, code)
		}
	}
	return "#" + s, nil
}

// ValueAssets is what one value of the image attribute carries.
type ValueAssets struct {
	Images []string `json:"images"`
	Color  string   `json:"color,omitempty"`
}

// AssetRegistry maps values of the single image attribute to their gallery
// and swatch. Mutators return a new registry.
type AssetRegistry struct {
	attribute string
	values    map[string]ValueAssets
}

func NewAssetRegistry(attribute string) AssetRegistry {
	return AssetRegistry{attribute: strings.TrimSpace(attribute)}
}

func (r AssetRegistry) Attribute() string { return r.attribute }

func (r AssetRegistry) IsColor() bool {
	return r.attribute != "" && IsColorAttribute(r.attribute)
}

func (r AssetRegistry) clone() AssetRegistry {
	out := AssetRegistry{attribute: r.attribute, values: make(map[string]ValueAssets, len(r.values))}
	for k, v := range r.values {
		out.values[k] = ValueAssets{Images: append([]string(nil), v.Images...), Color: v.Color}
	}
	return out
}

// WithImageAttribute selects the image attribute. Choosing a different
// attribute drops every association captured for the previous one.
func (r AssetRegistry) WithImageAttribute(name string) AssetRegistry {
	name = strings.TrimSpace(name)
	if name == r.attribute {
		return r
	}
	return AssetRegistry{attribute: name}
}

func (r AssetRegistry) Lookup(value string) (ValueAssets, bool) {
	va, ok := r.values[value]
	if !ok {
		return ValueAssets{}, false
	}
	return ValueAssets{Images: append([]string(nil), va.Images...), Color: va.Color}, true
}

// Values lists the values that have assets, in no particular order.
func (r AssetRegistry) Values() map[string]ValueAssets {
	return r.clone().values
}

// ColorFor returns the stored swatch for value, DefaultSwatch when unset and
// "" when the image attribute is not Color.
func (r AssetRegistry) ColorFor(value string) string {
	if !r.IsColor() {
		return ""
	}
	if va, ok := r.values[value]; ok && va.Color != "" {
		return va.Color
	}
	return DefaultSwatch
}

func (r AssetRegistry) SetImages(value string, urls []string) (AssetRegistry, error) {
	if r.attribute == "" {
		return r, ErrNoImageAttribute
	}
	out := r.clone()
	va := out.values[value]
	va.Images = dedupe(urls)
	out.values[value] = va
	return out, nil
}

func (r AssetRegistry) AddImage(value, url string) (AssetRegistry, error) {
	if r.attribute == "" {
		return r, ErrNoImageAttribute
	}
	va := r.values[value]
	return r.SetImages(value, append(append([]string(nil), va.Images...), url))
}

func (r AssetRegistry) RemoveImage(value, url string) AssetRegistry {
	va, ok := r.values[value]
	if !ok {
		return r
	}
	out := r.clone()
	kept := make([]string, 0, len(va.Images))
	for _, u := range va.Images {
		if u != url {
			kept = append(kept, u)
		}
	}
	va = out.values[value]
	va.Images = kept
	out.values[value] = va
	return out
}

func (r AssetRegistry) SetColor(value, code string) (AssetRegistry, error) {
	if !r.IsColor() {
		return r, ErrNotColorAttribute
	}
	norm, err := NormalizeColor(code)
	if err != nil {
		return r, err
	}
	out := r.clone()
	va := out.values[value]
	va.Color = norm
	out.values[value] = va
	return out, nil
}

// RegistryFromVariants rebuilds the registry for attribute from loaded
// variants: the first variant seen for each value supplies its assets.
func RegistryFromVariants(attribute string, variants []Variant) AssetRegistry {
	r := NewAssetRegistry(attribute)
	if r.attribute == "" {
		return r
	}
	r.values = map[string]ValueAssets{}
	for _, v := range variants {
		val, ok := v.Attributes[r.attribute]
		if !ok {
			continue
		}
		if _, seen := r.values[val]; seen {
			continue
		}
		va := ValueAssets{Images: dedupe(v.Images)}
		if r.IsColor() && v.Color != "" {
			if norm, err := NormalizeColor(v.Color); err == nil {
				va.Color = norm
			}
		}
		r.values[val] = va
	}
	return r
}

// GuessImageAttribute picks the image attribute for a loaded product: the
// configured attribute whose values partition the variants' images, preferring
// Color. Without any images only a Color attribute is picked.
func GuessImageAttribute(names []string, variants []Variant) string {
	anyImages := false
	for _, v := range variants {
		if len(v.Images) > 0 {
			anyImages = true
			break
		}
	}
	if !anyImages {
		for _, n := range names {
			if IsColorAttribute(n) {
				return n
			}
		}
		return ""
	}
	ordered := make([]string, 0, len(names))
	for _, n := range names {
		if IsColorAttribute(n) {
			ordered = append(ordered, n)
		}
	}
	for _, n := range names {
		if !IsColorAttribute(n) {
			ordered = append(ordered, n)
		}
	}
	for _, n := range ordered {
		if imagesFollow(n, variants) {
			return n
		}
	}
	return ""
}

func imagesFollow(name string, variants []Variant) bool {
	byValue := map[string]string{}
	for _, v := range variants {
		val, ok := v.Attributes[name]
		if !ok {
			return false
		}
		key := encodeStringList(v.Images)
		if prev, seen := byValue[val]; seen && prev != key {
			return false
		}
		byValue[val] = key
	}
	return len(byValue) > 0
}
