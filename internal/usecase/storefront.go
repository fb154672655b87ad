package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/phenrril/catalogo/internal/domain"
	"github.com/phenrril/catalogo/internal/variant"
)

// Selection is what a product page shows for a list of shopper choices.
type Selection struct {
	Product    *domain.Product `json:"product"`
	View       variant.View    `json:"view"`
	Gallery    []string        `json:"gallery"`
	Stock      int             `json:"stock"`
	StockKnown bool            `json:"stockKnown"`
}

// SelectQuery is a shopper's position on a product page. Init asks for the
// first-visit auto-selection; it only applies while Choices is empty, so a
// shopper who reset their choices sends Init false and sees none.
type SelectQuery struct {
	Choices   []string `json:"choices"`
	Warehouse string   `json:"warehouse"`
	Init      bool     `json:"init"`
}

type Storefront struct {
	Products domain.ProductRepo
	Stock    *StockUC
}

// Select replays q.Choices, one per attribute in order, against the product's
// active variants.
func (s *Storefront) Select(ctx context.Context, slug string, q SelectQuery) (Selection, error) {
	if slug == "" {
		return Selection{}, ErrEmptySlug
	}
	p, err := s.Products.FindBySlug(ctx, slug)
	if err != nil {
		return Selection{}, err
	}
	vs := variant.FromRecords(p.Variants)
	sel := variant.NewSelector(attributeNames(p, vs), vs)
	if len(q.Choices) == 0 && q.Init {
		sel = sel.Init()
	}
	for i, c := range q.Choices {
		if sel, err = sel.Choose(i, c); err != nil {
			return Selection{}, err
		}
	}

	total := 0
	if s.Stock != nil {
		for _, r := range s.Stock.Lookup(ctx, q.Warehouse, activeIDs(vs)) {
			if !r.Known {
				continue
			}
			sel = sel.WithStock(r.VariantID, r.Quantity)
			total += r.Quantity
		}
	}

	imgs := make([]string, 0, len(p.Images))
	for _, im := range p.Images {
		imgs = append(imgs, im.URL)
	}
	gallery := variant.Gallery(imgs, vs)
	qty, known := sel.SelectedStock(total)
	return Selection{
		Product:    p,
		View:       sel.View(gallery),
		Gallery:    gallery,
		Stock:      qty,
		StockKnown: known,
	}, nil
}

func activeIDs(vs []variant.Variant) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(vs))
	for _, v := range vs {
		if v.Active && v.Persisted() {
			ids = append(ids, v.ID)
		}
	}
	return ids
}
