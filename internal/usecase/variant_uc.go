package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogo/internal/domain"
	"github.com/phenrril/catalogo/internal/variant"
)

var ErrInvalidDraft = errors.New("invalid editor draft")

// EditorDraft is the wire form of an editing session.
type EditorDraft struct {
	Attributes     []variant.Attribute            `json:"attributes"`
	ImageAttribute string                         `json:"imageAttribute"`
	Assets         map[string]variant.ValueAssets `json:"assets"`
	Variants       []variant.Variant              `json:"variants"`
}

func DraftFromState(s variant.EditorState) EditorDraft {
	vs := s.Variants
	if vs == nil {
		vs = []variant.Variant{}
	}
	return EditorDraft{
		Attributes:     s.Config.Attributes(),
		ImageAttribute: s.Assets.Attribute(),
		Assets:         s.Assets.Values(),
		Variants:       vs,
	}
}

// State rebuilds the session through the editor reducers so a draft is
// subject to the same checks as interactive edits.
func (d EditorDraft) State() (variant.EditorState, error) {
	st := variant.EditorState{Config: variant.NewAttributeConfig(d.Attributes...), Variants: d.Variants}
	if d.ImageAttribute == "" {
		return st, nil
	}
	st, err := st.SetImageAttribute(d.ImageAttribute)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	values := make([]string, 0, len(d.Assets))
	for v := range d.Assets {
		values = append(values, v)
	}
	sort.Strings(values)
	for _, v := range values {
		va := d.Assets[v]
		if st, err = st.SetImages(v, va.Images); err != nil {
			return st, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
		}
		if va.Color == "" || !st.Assets.IsColor() {
			continue
		}
		if st, err = st.SetColor(v, va.Color); err != nil {
			return st, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
		}
	}
	return st, nil
}

// VariantFailure is a variant the save pipeline could not write.
type VariantFailure struct {
	Variant string `json:"variant"`
	Reason  string `json:"error"`
	Err     error  `json:"-"`
}

// SaveReport summarizes one save. Failures do not stop the batch.
type SaveReport struct {
	Created  int               `json:"created"`
	Updated  int               `json:"updated"`
	Deleted  int               `json:"deleted"`
	Failures []VariantFailure  `json:"failures"`
	Variants []variant.Variant `json:"variants"`
}

func (r *SaveReport) fail(label string, err error) {
	r.Failures = append(r.Failures, VariantFailure{Variant: label, Reason: err.Error(), Err: err})
}

type VariantUC struct {
	Products domain.ProductRepo
}

// attributeNames reads a product's stored names, falling back to names
// inferred from its variants for legacy rows.
func attributeNames(p *domain.Product, vs []variant.Variant) []string {
	names, err := variant.ParseNames(p.AttributeNames)
	if err != nil {
		log.Warn().Err(err).Str("product", p.Slug).Msg("malformed attribute names")
		names = nil
	}
	if len(names) == 0 {
		names = variant.InferNames(vs)
	}
	return names
}

func (uc *VariantUC) persisted(ctx context.Context, productID uuid.UUID) ([]variant.Variant, error) {
	recs, err := uc.Products.ListVariants(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	return variant.FromRecords(recs), nil
}

// LoadEditor rebuilds the editing session of a stored product.
func (uc *VariantUC) LoadEditor(ctx context.Context, slug string) (variant.EditorState, *domain.Product, error) {
	if slug == "" {
		return variant.EditorState{}, nil, ErrEmptySlug
	}
	p, err := uc.Products.FindBySlug(ctx, slug)
	if err != nil {
		return variant.EditorState{}, nil, err
	}
	vs := variant.FromRecords(p.Variants)
	return variant.LoadEditor(attributeNames(p, vs), p.ImageAttribute, vs), p, nil
}

// Plan is a dry run: it regenerates the draft and diffs it against the
// variants currently stored, without writing anything.
func (uc *VariantUC) Plan(ctx context.Context, slug string, d EditorDraft) (variant.Plan, error) {
	p, err := uc.Products.FindBySlug(ctx, slug)
	if err != nil {
		return variant.Plan{}, err
	}
	st, err := d.State()
	if err != nil {
		return variant.Plan{}, err
	}
	persisted, err := uc.persisted(ctx, p.ID)
	if err != nil {
		return variant.Plan{}, err
	}
	st.Variants = ownedIDs(st.Variants, persisted)
	return st.Plan(persisted), nil
}

// ownedIDs replaces the identifier of every draft variant that is not one of
// persisted by the id of the persisted variant with the same attribute-set,
// or clears it. A draft can only keep ids of its own product's variants.
func ownedIDs(draft, persisted []variant.Variant) []variant.Variant {
	own := make(map[uuid.UUID]struct{}, len(persisted))
	byKey := make(map[string]uuid.UUID, len(persisted))
	for _, v := range persisted {
		own[v.ID] = struct{}{}
		byKey[v.Attributes.Key()] = v.ID
	}
	out := make([]variant.Variant, len(draft))
	for i, v := range draft {
		if _, ok := own[v.ID]; v.Persisted() && !ok {
			log.Warn().Str("variant", v.ID.String()).Msg("dropping foreign variant id from draft")
			v.ID = byKey[v.Attributes.Key()]
		}
		out[i] = v
	}
	return out
}

// PlanStored regenerates the stored session as is, which shows the
// combinations missing from the store and the variants that no longer fit.
func (uc *VariantUC) PlanStored(ctx context.Context, slug string) (variant.Plan, error) {
	st, p, err := uc.LoadEditor(ctx, slug)
	if err != nil {
		return variant.Plan{}, err
	}
	persisted, err := uc.persisted(ctx, p.ID)
	if err != nil {
		return variant.Plan{}, err
	}
	return st.Plan(persisted), nil
}

// Save regenerates the draft and writes it.
func (uc *VariantUC) Save(ctx context.Context, slug string, d EditorDraft) (SaveReport, error) {
	p, err := uc.Products.FindBySlug(ctx, slug)
	if err != nil {
		return SaveReport{}, err
	}
	st, err := d.State()
	if err != nil {
		return SaveReport{}, err
	}
	persisted, err := uc.persisted(ctx, p.ID)
	if err != nil {
		return SaveReport{}, err
	}
	st.Variants = ownedIDs(st.Variants, persisted)
	return uc.SaveState(ctx, p, st.Regenerate())
}

// SaveState writes every session variant, stores the attribute names and
// image attribute, then deletes the persisted variants the session no longer
// accounts for. Orphans are computed from a fresh read taken after all
// writes, so nothing is deleted before its replacement exists.
func (uc *VariantUC) SaveState(ctx context.Context, p *domain.Product, st variant.EditorState) (SaveReport, error) {
	rep := SaveReport{Failures: []VariantFailure{}}
	names := st.Config.Names()
	ids := make(map[string]uuid.UUID, len(st.Variants))

	for _, v := range st.Variants {
		label := v.Attributes.Label(names)
		if err := variant.Validate(v, st.Config); err != nil {
			rep.fail(label, err)
			continue
		}
		rec := variant.ToRecord(p.ID, v)
		if err := uc.Products.SaveVariant(ctx, &rec); err != nil {
			log.Error().Err(err).Str("product", p.Slug).Str("variant", label).Msg("save variant")
			rep.fail(label, err)
			continue
		}
		if v.Persisted() {
			rep.Updated++
		} else {
			rep.Created++
		}
		ids[v.Attributes.Key()] = rec.ID
	}

	if err := uc.Products.SetAttributeNames(ctx, p.ID, variant.EncodeNames(names)); err != nil {
		return rep, fmt.Errorf("store attribute names: %w", err)
	}
	if repo, ok := uc.Products.(interface {
		SetImageAttribute(context.Context, uuid.UUID, string) error
	}); ok {
		if err := repo.SetImageAttribute(ctx, p.ID, st.Assets.Attribute()); err != nil {
			return rep, fmt.Errorf("store image attribute: %w", err)
		}
	}

	saved := st.AssignIDs(ids).Variants
	persisted, err := uc.persisted(ctx, p.ID)
	if err != nil {
		return rep, err
	}
	for _, o := range variant.Orphans(saved, persisted) {
		err := uc.Products.DeleteVariant(ctx, p.ID, o.ID)
		switch {
		case err == nil:
			rep.Deleted++
		case errors.Is(err, domain.ErrNotFound):
		default:
			log.Error().Err(err).Str("product", p.Slug).Str("variant", o.ID.String()).Msg("delete orphan")
			rep.fail(o.Attributes.Label(names), err)
		}
	}

	rep.Variants = saved
	log.Info().Str("product", p.Slug).Int("created", rep.Created).Int("updated", rep.Updated).
		Int("deleted", rep.Deleted).Int("failed", len(rep.Failures)).Msg("variants saved")
	return rep, nil
}
