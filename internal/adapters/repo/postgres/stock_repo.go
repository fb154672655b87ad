package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/catalogo/internal/domain"
)

type StockRepo struct{ db *gorm.DB }

func NewStockRepo(db *gorm.DB) *StockRepo { return &StockRepo{db: db} }

// Quantity returns the on-hand quantity of a variant in a warehouse.
func (r *StockRepo) Quantity(ctx context.Context, variantID uuid.UUID, warehouseID string) (int, error) {
	var item domain.StockItem
	err := r.db.WithContext(ctx).
		Select("quantity").
		First(&item, "variant_id = ? AND warehouse_id = ?", variantID, warehouseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return item.Quantity, nil
}

// SetQuantity upserts the row for (variant, warehouse).
func (r *StockRepo) SetQuantity(ctx context.Context, variantID uuid.UUID, warehouseID string, qty int) error {
	item := domain.StockItem{
		ID:          uuid.New(),
		VariantID:   variantID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		UpdatedAt:   time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variant_id"}, {Name: "warehouse_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&item).Error
}
