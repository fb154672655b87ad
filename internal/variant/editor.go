package variant

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrVariantNotFound = errors.New("variant not in session")

// EditorState is the product-editing session: attribute configuration, image
// assets and the in-session variant list. Every reducer returns a new state;
// on error the receiver is returned untouched.
type EditorState struct {
	Config   AttributeConfig
	Assets   AssetRegistry
	Variants []Variant
}

// LoadEditor rebuilds a session from a product's stored attribute names,
// image attribute and variants. Products without stored names (legacy) get
// names inferred from their variants.
func LoadEditor(names []string, imageAttribute string, variants []Variant) EditorState {
	if len(names) == 0 {
		names = InferNames(variants)
	}
	cfg := ConfigFromVariants(names, variants)
	if imageAttribute == "" || !cfg.Has(imageAttribute) {
		imageAttribute = GuessImageAttribute(cfg.Names(), variants)
	}
	vs := make([]Variant, len(variants))
	for i, v := range variants {
		vs[i] = v.clone()
	}
	return EditorState{
		Config:   cfg,
		Assets:   RegistryFromVariants(imageAttribute, variants),
		Variants: vs,
	}
}

func (s EditorState) withConfig(cfg AttributeConfig) EditorState {
	s.Config = cfg
	return s
}

func (s EditorState) AddAttribute(name string) (EditorState, error) {
	cfg, err := s.Config.AddAttribute(name)
	if err != nil {
		return s, err
	}
	return s.withConfig(cfg), nil
}

// RemoveAttribute drops name; if it was the image attribute the selection and
// its assets are cleared too.
func (s EditorState) RemoveAttribute(name string) EditorState {
	out := s.withConfig(s.Config.RemoveAttribute(name))
	if out.Assets.Attribute() == name {
		out.Assets = AssetRegistry{}
	}
	return out
}

func (s EditorState) AddValue(name, value string) (EditorState, error) {
	cfg, err := s.Config.AddValue(name, value)
	if err != nil {
		return s, err
	}
	return s.withConfig(cfg), nil
}

func (s EditorState) RemoveValue(name, value string) EditorState {
	return s.withConfig(s.Config.RemoveValue(name, value))
}

func (s EditorState) SetImageAttribute(name string) (EditorState, error) {
	if name != "" && !s.Config.Has(name) {
		return s, fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
	s.Assets = s.Assets.WithImageAttribute(name)
	return s, nil
}

func (s EditorState) SetImages(value string, urls []string) (EditorState, error) {
	reg, err := s.Assets.SetImages(value, urls)
	if err != nil {
		return s, err
	}
	s.Assets = reg
	return s, nil
}

func (s EditorState) AddImage(value, url string) (EditorState, error) {
	reg, err := s.Assets.AddImage(value, url)
	if err != nil {
		return s, err
	}
	s.Assets = reg
	return s, nil
}

func (s EditorState) RemoveImage(value, url string) EditorState {
	s.Assets = s.Assets.RemoveImage(value, url)
	return s
}

func (s EditorState) SetColor(value, code string) (EditorState, error) {
	reg, err := s.Assets.SetColor(value, code)
	if err != nil {
		return s, err
	}
	s.Assets = reg
	return s, nil
}

// Regenerate replaces the session variants with the reconciled product of the
// current configuration.
func (s EditorState) Regenerate() EditorState {
	s.Variants = Reconcile(Combinations(s.Config), s.Variants, s.Assets)
	return s
}

// Plan regenerates and diffs against a freshly fetched persisted list.
func (s EditorState) Plan(persisted []Variant) Plan {
	return BuildPlan(s.Config, s.Assets, s.Variants, persisted)
}

// VariantEdit carries the per-variant fields an editor may change. Nil
// fields are left as they are.
type VariantEdit struct {
	Price      *float64
	ClearPrice bool
	SKU        *string
	Active     *bool
}

// UpdateVariant edits the session variant whose attribute-set equals combo.
func (s EditorState) UpdateVariant(combo Combination, edit VariantEdit) (EditorState, error) {
	idx := -1
	for i, v := range s.Variants {
		if v.Attributes.Equal(combo) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrVariantNotFound, combo.Label(s.Config.Names()))
	}
	vs := make([]Variant, len(s.Variants))
	for i, v := range s.Variants {
		vs[i] = v.clone()
	}
	v := vs[idx]
	switch {
	case edit.ClearPrice:
		v.Price = nil
	case edit.Price != nil:
		p := *edit.Price
		v.Price = &p
	}
	if edit.SKU != nil {
		v.SKU = *edit.SKU
	}
	if edit.Active != nil {
		v.Active = *edit.Active
	}
	vs[idx] = v
	s.Variants = vs
	return s, nil
}

// AssignIDs records identifiers handed out by the store after a save, keyed
// by attribute-set, so later regenerations keep matching them.
func (s EditorState) AssignIDs(ids map[string]uuid.UUID) EditorState {
	vs := make([]Variant, len(s.Variants))
	for i, v := range s.Variants {
		vs[i] = v.clone()
		if id, ok := ids[v.Attributes.Key()]; ok && !vs[i].Persisted() {
			vs[i].ID = id
		}
	}
	s.Variants = vs
	return s
}
