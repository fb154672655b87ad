package variant

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogo/internal/domain"
)

// Variant is the canonical in-engine record. ID is uuid.Nil until persisted.
type Variant struct {
	ID         uuid.UUID   `json:"id"`
	Attributes Combination `json:"attributes"`
	Images     []string    `json:"images"`
	Primary    string      `json:"primaryImage,omitempty"`
	Color      string      `json:"colorCode,omitempty"`
	Price      *float64    `json:"price,omitempty"`
	SKU        string      `json:"sku,omitempty"`
	Active     bool        `json:"isActive"`
}

func (v Variant) Persisted() bool { return v.ID != uuid.Nil }

func (v Variant) clone() Variant {
	out := v
	out.Attributes = v.Attributes.Clone()
	out.Images = append([]string(nil), v.Images...)
	if v.Price != nil {
		p := *v.Price
		out.Price = &p
	}
	return out
}

// FromRecord parses a persisted variant. Corrupt attribute text degrades to
// the legacy color field; a corrupt media list degrades to the primary image.
func FromRecord(r domain.Variant) Variant {
	set := StructuredSet(nil)
	attrs, err := ParseAttributes(r.Attributes)
	if err != nil {
		log.Warn().Err(err).Str("variant_id", r.ID.String()).Msg("malformed variant attributes")
		attrs = nil
	}
	if len(attrs) > 0 {
		set = StructuredSet(attrs)
	} else if strings.TrimSpace(r.Color) != "" {
		set = LegacyColorSet(r.Color)
	}

	images, err := parseStringList(r.MediaURLs)
	if err != nil {
		log.Warn().Err(err).Str("variant_id", r.ID.String()).Msg("malformed variant media list")
		images = nil
	}
	images = dedupe(images)
	if len(images) == 0 && strings.TrimSpace(r.ImageURL) != "" {
		images = []string{strings.TrimSpace(r.ImageURL)}
	}

	v := Variant{
		ID:         r.ID,
		Attributes: set.Normalize(),
		Images:     images,
		Color:      r.ColorCode,
		SKU:        r.SKU,
		Active:     r.Active,
	}
	if len(images) > 0 {
		v.Primary = images[0]
	}
	if r.Price != nil {
		p := *r.Price
		v.Price = &p
	}
	return v
}

func FromRecords(rs []domain.Variant) []Variant {
	out := make([]Variant, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromRecord(r))
	}
	return out
}

// ToRecord builds the persisted shape for productID. The legacy color field
// mirrors the Color attribute so older readers keep working.
func ToRecord(productID uuid.UUID, v Variant) domain.Variant {
	r := domain.Variant{
		ID:         v.ID,
		ProductID:  productID,
		Attributes: EncodeAttributes(v.Attributes),
		MediaURLs:  encodeStringList(v.Images),
		ColorCode:  v.Color,
		SKU:        strings.TrimSpace(v.SKU),
		Active:     v.Active,
	}
	if len(v.Images) > 0 {
		r.ImageURL = v.Images[0]
	}
	if c, ok := v.Attributes[ColorAttribute]; ok {
		r.Color = c
	}
	if v.Price != nil {
		p := *v.Price
		r.Price = &p
	}
	return r
}

func dedupe(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
