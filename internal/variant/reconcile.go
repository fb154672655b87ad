package variant

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Reconcile produces one variant per combination, in combination order. A
// session variant with an identical attribute-set donates its ID, price, SKU
// and active flag; images and color are always recomputed from reg.
func Reconcile(combos []Combination, session []Variant, reg AssetRegistry) []Variant {
	byKey := make(map[string]Variant, len(session))
	for _, v := range session {
		k := v.Attributes.Key()
		if _, dup := byKey[k]; dup {
			continue
		}
		byKey[k] = v
	}

	out := make([]Variant, 0, len(combos))
	for _, c := range combos {
		v := Variant{Attributes: c.Clone(), Active: true}
		if prev, ok := byKey[c.Key()]; ok {
			v.ID = prev.ID
			v.SKU = prev.SKU
			v.Active = prev.Active
			if prev.Price != nil {
				p := *prev.Price
				v.Price = &p
			}
		}
		out = append(out, ResolveAssets(c, reg).Apply(v))
	}
	return out
}

// Orphans lists persisted variants that no current variant accounts for,
// neither by attribute-set nor by identifier. persisted must be freshly
// fetched from the store right before the call.
func Orphans(current []Variant, persisted []Variant) []Variant {
	keys := make(map[string]struct{}, len(current))
	ids := make(map[uuid.UUID]struct{}, len(current))
	for _, v := range current {
		keys[v.Attributes.Key()] = struct{}{}
		if v.Persisted() {
			ids[v.ID] = struct{}{}
		}
	}
	var out []Variant
	for _, p := range persisted {
		if !p.Persisted() {
			continue
		}
		if _, ok := ids[p.ID]; ok {
			continue
		}
		if _, ok := keys[p.Attributes.Key()]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Plan is the outcome of regenerating a product's variants.
type Plan struct {
	Variants []Variant `json:"variants"`
	Created  int       `json:"created"`
	Kept     int       `json:"kept"`
	Orphans  []Variant `json:"orphans"`
}

// BuildPlan regenerates variants from cfg and reg against the session list
// and reports which persisted variants would be deleted.
func BuildPlan(cfg AttributeConfig, reg AssetRegistry, session, persisted []Variant) Plan {
	vs := Reconcile(Combinations(cfg), session, reg)
	p := Plan{Variants: vs, Orphans: Orphans(vs, persisted)}
	for _, v := range vs {
		if v.Persisted() {
			p.Kept++
		} else {
			p.Created++
		}
	}
	return p
}

// MissingAttributeError rejects a variant lacking a configured attribute.
type MissingAttributeError struct {
	Variant   string
	Attribute string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("variant %s: missing value for attribute %q", e.Variant, e.Attribute)
}

// Validate checks that v has a non-blank value for every configured attribute.
func Validate(v Variant, cfg AttributeConfig) error {
	for _, n := range cfg.Names() {
		if strings.TrimSpace(v.Attributes[n]) == "" {
			return &MissingAttributeError{Variant: v.Attributes.Label(cfg.Names()), Attribute: n}
		}
	}
	return nil
}
