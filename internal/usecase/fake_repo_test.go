package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/phenrril/catalogo/internal/domain"
)

// memRepo is an in-memory ProductRepo that records the order of writes.
type memRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
	variants []domain.Variant
	ops      []string
	// failSave rejects SaveVariant for records whose Attributes text matches.
	failSave map[string]error
}

func newMemRepo() *memRepo {
	return &memRepo{products: map[uuid.UUID]*domain.Product{}, failSave: map[string]error{}}
}

func (m *memRepo) Save(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) AddImages(_ context.Context, productID uuid.UUID, imgs []domain.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Images = append(p.Images, imgs...)
	return nil
}

func (m *memRepo) find(match func(*domain.Product) bool) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if match(p) {
			cp := *p
			cp.Variants = nil
			for _, v := range m.variants {
				if v.ProductID == p.ID {
					cp.Variants = append(cp.Variants, v)
				}
			}
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepo) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	return m.find(func(p *domain.Product) bool { return p.Slug == slug })
}

func (m *memRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	return m.find(func(p *domain.Product) bool { return p.ID == id })
}

func (m *memRepo) List(context.Context, domain.ProductFilter) ([]domain.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) SetAttributeNames(_ context.Context, productID uuid.UUID, encoded string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.AttributeNames = encoded
	m.ops = append(m.ops, "names")
	return nil
}

func (m *memRepo) SetImageAttribute(_ context.Context, productID uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[productID]; ok {
		p.ImageAttribute = name
	}
	return nil
}

func (m *memRepo) SaveVariant(_ context.Context, v *domain.Variant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failSave[v.Attributes]; ok {
		return err
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range m.variants {
		if m.variants[i].ID == v.ID {
			if m.variants[i].ProductID != v.ProductID {
				return domain.ErrNotFound
			}
			m.variants[i] = *v
			m.ops = append(m.ops, "update")
			return nil
		}
	}
	m.variants = append(m.variants, *v)
	m.ops = append(m.ops, "create")
	return nil
}

func (m *memRepo) ListVariants(_ context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Variant
	for _, v := range m.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	m.ops = append(m.ops, "list")
	return out, nil
}

func (m *memRepo) DeleteVariant(_ context.Context, productID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.variants {
		if v.ID == id && v.ProductID == productID {
			m.variants = append(m.variants[:i], m.variants[i+1:]...)
			m.ops = append(m.ops, "delete")
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memRepo) FindVariantBySKU(_ context.Context, sku string) (*domain.Product, *domain.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.variants {
		if v.SKU == sku {
			cp := v
			p := *m.products[v.ProductID]
			return &p, &cp, nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

// memStock serves quantities from a map; missing entries are ErrNotFound and
// entries in fail return that error.
type memStock struct {
	qty  map[uuid.UUID]int
	fail map[uuid.UUID]error
}

func (s memStock) Quantity(_ context.Context, id uuid.UUID, _ string) (int, error) {
	if err, ok := s.fail[id]; ok {
		return 0, err
	}
	q, ok := s.qty[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return q, nil
}

var errBoom = errors.New("boom")
