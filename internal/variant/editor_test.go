package variant

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestEditor_ConfigureAndRegenerate(t *testing.T) {
	var s EditorState
	var err error
	steps := []func(EditorState) (EditorState, error){
		func(s EditorState) (EditorState, error) { return s.AddAttribute("Color") },
		func(s EditorState) (EditorState, error) { return s.AddAttribute("Size") },
		func(s EditorState) (EditorState, error) { return s.AddValue("Color", "Red") },
		func(s EditorState) (EditorState, error) { return s.AddValue("Color", "Blue") },
		func(s EditorState) (EditorState, error) { return s.AddValue("Size", "M") },
		func(s EditorState) (EditorState, error) { return s.SetImageAttribute("Color") },
		func(s EditorState) (EditorState, error) { return s.SetImages("Red", []string{"r.png"}) },
		func(s EditorState) (EditorState, error) { return s.SetColor("Red", "#FF0000") },
	}
	for i, step := range steps {
		if s, err = step(s); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	s = s.Regenerate()
	if len(s.Variants) != 2 {
		t.Fatalf("variants: got %d, want 2", len(s.Variants))
	}
	red := findVariant(t, s.Variants, Combination{"Color": "Red", "Size": "M"})
	if red.Color != "#ff0000" || red.Primary != "r.png" {
		t.Errorf("red assets: %+v", red)
	}
}

func TestEditor_ErrorsLeaveStateUntouched(t *testing.T) {
	s, _ := EditorState{}.AddAttribute("Color")
	if _, err := s.AddAttribute("Color"); !errors.Is(err, ErrDuplicateAttribute) {
		t.Errorf("duplicate attribute: %v", err)
	}
	if _, err := s.AddValue("Size", "M"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("unknown attribute: %v", err)
	}
	if _, err := s.SetImageAttribute("Size"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("image attribute must be configured: %v", err)
	}
	if _, err := s.SetImages("Red", []string{"r.png"}); !errors.Is(err, ErrNoImageAttribute) {
		t.Errorf("images without image attribute: %v", err)
	}
	if s.Config.Len() != 1 {
		t.Errorf("config changed: %v", s.Config.Names())
	}
}

func TestEditor_RemoveImageAttributeClearsAssets(t *testing.T) {
	s, _ := EditorState{}.AddAttribute("Color")
	s, _ = s.SetImageAttribute("Color")
	s, _ = s.SetImages("Red", []string{"r.png"})
	s = s.RemoveAttribute("Color")
	if s.Assets.Attribute() != "" {
		t.Errorf("image attribute should be cleared, got %q", s.Assets.Attribute())
	}
}

func TestEditor_ReducersDoNotMutatePrevious(t *testing.T) {
	s, _ := EditorState{}.AddAttribute("Color")
	s, _ = s.AddValue("Color", "Red")
	before := s
	after, _ := s.AddValue("Color", "Blue")
	if len(before.Config.Values("Color")) != 1 {
		t.Errorf("previous state mutated: %v", before.Config.Values("Color"))
	}
	if len(after.Config.Values("Color")) != 2 {
		t.Errorf("new state: %v", after.Config.Values("Color"))
	}
}

func TestEditor_UpdateVariant(t *testing.T) {
	s := EditorState{Config: colorSizeConfig()}.Regenerate()
	price := 12.0
	sku := "SKU-1"
	off := false
	combo := Combination{"Color": "Blue", "Size": "S"}
	next, err := s.UpdateVariant(combo, VariantEdit{Price: &price, SKU: &sku, Active: &off})
	if err != nil {
		t.Fatal(err)
	}
	v := findVariant(t, next.Variants, combo)
	if v.Price == nil || *v.Price != 12 || v.SKU != "SKU-1" || v.Active {
		t.Errorf("edit not applied: %+v", v)
	}
	if old := findVariant(t, s.Variants, combo); old.SKU != "" {
		t.Error("previous state mutated")
	}

	// regenerating keeps the edits
	regen := next.Regenerate()
	if v := findVariant(t, regen.Variants, combo); v.SKU != "SKU-1" {
		t.Errorf("edit lost on regenerate: %+v", v)
	}

	if _, err := s.UpdateVariant(Combination{"Color": "Green"}, VariantEdit{}); !errors.Is(err, ErrVariantNotFound) {
		t.Errorf("unknown combination: %v", err)
	}
}

func TestLoadEditor(t *testing.T) {
	vs := []Variant{
		{ID: uuid.New(), Attributes: Combination{"Color": "Red", "Size": "S"}, Images: []string{"r.png"}, Color: "#FF0000"},
		{ID: uuid.New(), Attributes: Combination{"Color": "Red", "Size": "M"}, Images: []string{"r.png"}, Color: "#ff0000"},
		{ID: uuid.New(), Attributes: Combination{"Color": "Blue", "Size": "S"}, Images: []string{"b.png"}},
	}
	s := LoadEditor([]string{"Color", "Size"}, "Color", vs)
	if got := s.Config.Values("Color"); len(got) != 2 || got[0] != "Red" || got[1] != "Blue" {
		t.Errorf("color values: %v", got)
	}
	if got := s.Config.Values("Size"); len(got) != 2 {
		t.Errorf("size values: %v", got)
	}
	if s.Assets.ColorFor("Red") != "#ff0000" {
		t.Errorf("red swatch: %q", s.Assets.ColorFor("Red"))
	}

	// Blue/M never existed; regenerating creates it and keeps the others' ids
	regen := s.Regenerate()
	if len(regen.Variants) != 4 {
		t.Fatalf("variants: %d", len(regen.Variants))
	}
	if v := findVariant(t, regen.Variants, vs[0].Attributes); v.ID != vs[0].ID {
		t.Error("id lost on regenerate")
	}
}

func TestLoadEditor_LegacyInfersNames(t *testing.T) {
	vs := []Variant{
		{ID: uuid.New(), Attributes: LegacyColorSet("Red").Normalize()},
		{ID: uuid.New(), Attributes: LegacyColorSet("Blue").Normalize()},
	}
	s := LoadEditor(nil, "", vs)
	if names := s.Config.Names(); len(names) != 1 || names[0] != ColorAttribute {
		t.Errorf("names: %v", names)
	}
	if s.Assets.Attribute() != ColorAttribute {
		t.Errorf("image attribute: %q", s.Assets.Attribute())
	}
}

func TestEditor_AssignIDs(t *testing.T) {
	s := EditorState{Config: colorSizeConfig()}.Regenerate()
	id := uuid.New()
	combo := Combination{"Color": "Red", "Size": "S"}
	s = s.AssignIDs(map[string]uuid.UUID{combo.Key(): id})
	if v := findVariant(t, s.Variants, combo); v.ID != id {
		t.Errorf("id: got %v", v.ID)
	}
}
