package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	AddImages(ctx context.Context, productID uuid.UUID, imgs []Image) error
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	SetAttributeNames(ctx context.Context, productID uuid.UUID, encoded string) error

	SaveVariant(ctx context.Context, v *Variant) error
	ListVariants(ctx context.Context, productID uuid.UUID) ([]Variant, error)
	DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error
	FindVariantBySKU(ctx context.Context, sku string) (*Product, *Variant, error)
}

// StockRepo answers per-variant stock queries. A missing row is ErrNotFound.
type StockRepo interface {
	Quantity(ctx context.Context, variantID uuid.UUID, warehouseID string) (int, error)
}
