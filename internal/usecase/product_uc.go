package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/catalogo/internal/domain"
	"github.com/phenrril/catalogo/internal/variant"
)

var (
	ErrEmptySlug = errors.New("empty slug")
	ErrEmptySKU  = errors.New("empty sku")
)

type ProductUC struct {
	Products domain.ProductRepo
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if slug == "" {
		return nil, ErrEmptySlug
	}
	return uc.Products.FindBySlug(ctx, slug)
}

func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name required")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.AttributeNames == "" {
		p.AttributeNames = "[]"
	}
	p.Active = true
	return uc.Products.Save(ctx, p)
}

// Slugify lower-cases name and joins its words with dashes.
func Slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

func (uc *ProductUC) AddImages(ctx context.Context, productID uuid.UUID, imgs []domain.Image) error {
	return uc.Products.AddImages(ctx, productID, imgs)
}

func (uc *ProductUC) DeleteBySlug(ctx context.Context, slug string) error {
	if slug == "" {
		return ErrEmptySlug
	}
	if repo, ok := uc.Products.(interface {
		DeleteBySlug(context.Context, string) error
	}); ok {
		return repo.DeleteBySlug(ctx, slug)
	}
	return errors.New("repo does not support delete")
}

func (uc *ProductUC) Categories(ctx context.Context) ([]string, error) {
	if repo, ok := uc.Products.(interface {
		DistinctCategories(context.Context) ([]string, error)
	}); ok {
		return repo.DistinctCategories(ctx)
	}
	return []string{}, nil
}

// SetAttributeNames stores the ordered attribute names of a product.
func (uc *ProductUC) SetAttributeNames(ctx context.Context, productID uuid.UUID, names []string) error {
	if productID == uuid.Nil {
		return errors.New("product id")
	}
	cfg := variant.NewAttributeConfig()
	for _, n := range names {
		var err error
		if cfg, err = cfg.AddAttribute(n); err != nil {
			return err
		}
	}
	return uc.Products.SetAttributeNames(ctx, productID, variant.EncodeNames(cfg.Names()))
}

// --- Variants ---

func (uc *ProductUC) CreateVariant(ctx context.Context, v *domain.Variant) error {
	if v == nil {
		return errors.New("variant nil")
	}
	if v.ProductID == uuid.Nil {
		return errors.New("product id")
	}
	if err := uc.checkAttributes(ctx, v); err != nil {
		return err
	}
	return uc.Products.SaveVariant(ctx, v)
}

func (uc *ProductUC) UpdateVariant(ctx context.Context, v *domain.Variant) error {
	if v == nil || v.ID == uuid.Nil {
		return errors.New("variant id")
	}
	if err := uc.checkAttributes(ctx, v); err != nil {
		return err
	}
	return uc.Products.SaveVariant(ctx, v)
}

// checkAttributes rejects a variant that lacks a value for one of its
// product's attributes.
func (uc *ProductUC) checkAttributes(ctx context.Context, v *domain.Variant) error {
	p, err := uc.Products.FindByID(ctx, v.ProductID)
	if err != nil {
		return err
	}
	vs := variant.FromRecords(p.Variants)
	cfg := variant.ConfigFromVariants(attributeNames(p, vs), vs)
	return variant.Validate(variant.FromRecord(*v), cfg)
}

func (uc *ProductUC) DeleteVariant(ctx context.Context, productID, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("variant id")
	}
	return uc.Products.DeleteVariant(ctx, productID, id)
}

func (uc *ProductUC) ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	if productID == uuid.Nil {
		return nil, errors.New("product id")
	}
	return uc.Products.ListVariants(ctx, productID)
}

func (uc *ProductUC) SearchBySKU(ctx context.Context, sku string) (*domain.Product, *domain.Variant, error) {
	s := strings.TrimSpace(sku)
	if s == "" {
		return nil, nil, ErrEmptySKU
	}
	return uc.Products.FindVariantBySKU(ctx, s)
}
