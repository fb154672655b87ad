package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/phenrril/catalogo/internal/domain"
)

const defaultStockConcurrency = 8

// StockResult is the outcome of one lookup. Known is false when the lookup
// failed; the quantity is then meaningless.
type StockResult struct {
	VariantID uuid.UUID `json:"variantId"`
	Quantity  int       `json:"quantity"`
	Known     bool      `json:"known"`
}

type StockUC struct {
	Stock       domain.StockRepo
	Warehouse   string
	Concurrency int
}

// Lookup queries every variant independently. A missing stock row counts as
// zero; any other failure marks only that variant unknown.
func (uc *StockUC) Lookup(ctx context.Context, warehouse string, ids []uuid.UUID) []StockResult {
	if warehouse == "" {
		warehouse = uc.Warehouse
	}
	out := make([]StockResult, len(ids))
	limit := uc.Concurrency
	if limit < 1 {
		limit = defaultStockConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		i, id := i, id
		out[i].VariantID = id
		g.Go(func() error {
			qty, err := uc.Stock.Quantity(ctx, id, warehouse)
			switch {
			case err == nil:
				out[i].Quantity, out[i].Known = qty, true
			case errors.Is(err, domain.ErrNotFound):
				out[i].Known = true
			default:
				log.Warn().Err(err).Str("variant", id.String()).Str("warehouse", warehouse).Msg("stock lookup failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
