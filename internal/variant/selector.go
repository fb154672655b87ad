package variant

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrStepNotReached   = errors.New("selection step not reached")
	ErrValueUnavailable = errors.New("value not offered at this step")
)

// Option is one value offered at a step.
type Option struct {
	Value     string `json:"value"`
	Available bool   `json:"available"`
	Color     string `json:"color,omitempty"`
	Image     string `json:"image,omitempty"`
}

// Selector walks a shopper through one choice per attribute. State Step(i)
// means choices for attributes 0..i-1 are recorded; Step(N) is Resolved.
// Values are immutable: every transition returns a new Selector.
type Selector struct {
	names       []string
	variants    []Variant
	choices     []string
	initialized bool
	stock       map[uuid.UUID]int
}

// NewSelector keeps only active variants.
func NewSelector(names []string, variants []Variant) Selector {
	active := make([]Variant, 0, len(variants))
	for _, v := range variants {
		if v.Active {
			active = append(active, v.clone())
		}
	}
	return Selector{names: append([]string(nil), names...), variants: active}
}

func (s Selector) copyState() Selector {
	out := s
	out.choices = append([]string(nil), s.choices...)
	return out
}

// Init performs the one-time auto-selection of the first value offered for
// the first attribute. Later calls are no-ops.
func (s Selector) Init() Selector {
	if s.initialized {
		return s
	}
	out := s.copyState()
	out.initialized = true
	if len(out.names) == 0 || len(out.choices) > 0 {
		return out
	}
	opts := out.values(0)
	if len(opts) == 0 {
		return out
	}
	out.choices = []string{opts[0]}
	return out
}

func (s Selector) Names() []string { return append([]string(nil), s.names...) }

// Step is the index of the attribute awaiting a choice.
func (s Selector) Step() int { return len(s.choices) }

func (s Selector) Resolved() bool { return len(s.choices) == len(s.names) }

// Choices returns the recorded name->value pairs.
func (s Selector) Choices() map[string]string {
	out := make(map[string]string, len(s.choices))
	for i, v := range s.choices {
		out[s.names[i]] = v
	}
	return out
}

func (s Selector) matching(upto int) []Variant {
	chosen := make(map[string]string, upto)
	for i := 0; i < upto && i < len(s.choices); i++ {
		chosen[s.names[i]] = s.choices[i]
	}
	var out []Variant
	for _, v := range s.variants {
		if v.Attributes.Matches(chosen) {
			out = append(out, v)
		}
	}
	return out
}

func (s Selector) values(step int) []string {
	name := s.names[step]
	seen := map[string]bool{}
	var out []string
	for _, v := range s.matching(step) {
		val, ok := v.Attributes[name]
		if !ok || seen[val] {
			continue
		}
		seen[val] = true
		out = append(out, val)
	}
	return out
}

// Options lists the values offered for the attribute at step, filtered by the
// choices made before it. Steps past the current one have no options.
func (s Selector) Options(step int) []Option {
	if step < 0 || step >= len(s.names) || step > len(s.choices) {
		return nil
	}
	name := s.names[step]
	var out []Option
	for _, val := range s.values(step) {
		opt := Option{Value: val}
		for _, v := range s.matching(step) {
			if v.Attributes[name] != val {
				continue
			}
			if qty, known := s.stock[v.ID]; !known || qty > 0 {
				opt.Available = true
			}
			if opt.Color == "" {
				opt.Color = v.Color
			}
			if opt.Image == "" {
				opt.Image = v.Primary
			}
		}
		out = append(out, opt)
	}
	return out
}

// Choose records value for the attribute at step. Any already-decided step
// may be re-chosen; choices after it are discarded.
func (s Selector) Choose(step int, value string) (Selector, error) {
	if step < 0 || step >= len(s.names) || step > len(s.choices) {
		return s, fmt.Errorf("%w: %d", ErrStepNotReached, step)
	}
	offered := false
	for _, v := range s.values(step) {
		if v == value {
			offered = true
			break
		}
	}
	if !offered {
		return s, fmt.Errorf("%w: %s=%s", ErrValueUnavailable, s.names[step], value)
	}
	out := s.copyState()
	out.initialized = true
	out.choices = append(out.choices[:step], value)
	return out, nil
}

// ChooseByName is Choose addressed by attribute name.
func (s Selector) ChooseByName(name, value string) (Selector, error) {
	for i, n := range s.names {
		if n == name {
			return s.Choose(i, value)
		}
	}
	return s, fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
}

// Reset clears every choice; Init will not auto-select again.
func (s Selector) Reset() Selector {
	out := s.copyState()
	out.choices = nil
	out.initialized = true
	return out
}

// Matches returns the active variants agreeing with all recorded choices.
func (s Selector) Matches() []Variant {
	return s.matching(len(s.choices))
}

// Selected returns the resolved variant when exactly one matches.
func (s Selector) Selected() (Variant, bool) {
	if !s.Resolved() {
		return Variant{}, false
	}
	m := s.Matches()
	if len(m) != 1 {
		return Variant{}, false
	}
	return m[0], true
}

// Ambiguous returns the matches of a resolved selection that could not be
// narrowed to one variant (duplicate attribute-sets in stored data).
func (s Selector) Ambiguous() []Variant {
	if !s.Resolved() {
		return nil
	}
	m := s.Matches()
	if len(m) < 2 {
		return nil
	}
	return m
}

// WithStock records a stock result. Results for variants this selector does
// not know are dropped; they may arrive in any order.
func (s Selector) WithStock(variantID uuid.UUID, qty int) Selector {
	known := false
	for _, v := range s.variants {
		if v.ID == variantID {
			known = true
			break
		}
	}
	if !known {
		return s
	}
	out := s.copyState()
	out.stock = make(map[uuid.UUID]int, len(s.stock)+1)
	for k, v := range s.stock {
		out.stock[k] = v
	}
	out.stock[variantID] = qty
	return out
}

// SelectedStock is the stock to display: the selected variant's quantity once
// known, otherwise fallback (typically the product total).
func (s Selector) SelectedStock(fallback int) (int, bool) {
	v, ok := s.Selected()
	if !ok {
		return fallback, false
	}
	qty, known := s.stock[v.ID]
	if !known {
		return fallback, false
	}
	return qty, true
}

type StepView struct {
	Attribute string   `json:"attribute"`
	Chosen    string   `json:"chosen,omitempty"`
	Options   []Option `json:"options"`
}

// View is the UI-facing snapshot of a selector.
type View struct {
	Step         int        `json:"step"`
	Resolved     bool       `json:"resolved"`
	Steps        []StepView `json:"steps"`
	Selected     *Variant   `json:"selected,omitempty"`
	Ambiguous    []Variant  `json:"ambiguous,omitempty"`
	Images       []string   `json:"images,omitempty"`
	GalleryIndex int        `json:"galleryIndex"`
}

func (s Selector) View(gallery []string) View {
	view := View{Step: s.Step(), Resolved: s.Resolved(), GalleryIndex: -1}
	for i, n := range s.names {
		sv := StepView{Attribute: n, Options: s.Options(i)}
		if i < len(s.choices) {
			sv.Chosen = s.choices[i]
		}
		view.Steps = append(view.Steps, sv)
	}
	if v, ok := s.Selected(); ok {
		view.Selected = &v
		view.Images = append([]string(nil), v.Images...)
		view.GalleryIndex = GalleryIndex(gallery, v)
	}
	view.Ambiguous = s.Ambiguous()
	return view
}
