package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/phenrril/catalogo/internal/adapters/cache"
	"github.com/phenrril/catalogo/internal/adapters/httpserver"
	"github.com/phenrril/catalogo/internal/adapters/repo/postgres"
	"github.com/phenrril/catalogo/internal/domain"
	"github.com/phenrril/catalogo/internal/usecase"
	"github.com/phenrril/catalogo/internal/variant"
)

type App struct {
	DB         *gorm.DB
	Products   *postgres.ProductRepo
	Stock      *postgres.StockRepo
	StockCache *cache.StockCache
	ProductUC  *usecase.ProductUC
	VariantUC  *usecase.VariantUC
	StockUC    *usecase.StockUC
	Storefront *usecase.Storefront
}

// NewApp wires repositories and use cases. rdb may be nil, which disables
// the stock cache.
func NewApp(db *gorm.DB, rdb *redis.Client) (*App, error) {
	if db == nil {
		return nil, fmt.Errorf("nil database")
	}
	prodRepo := postgres.NewProductRepo(db)
	stockRepo := postgres.NewStockRepo(db)
	stockCache := cache.NewStockCache(stockRepo, rdb, cache.TTLFromEnv())

	warehouse := os.Getenv("DEFAULT_WAREHOUSE")
	if warehouse == "" {
		warehouse = "main"
	}

	a := &App{DB: db, Products: prodRepo, Stock: stockRepo, StockCache: stockCache}
	a.ProductUC = &usecase.ProductUC{Products: prodRepo}
	a.VariantUC = &usecase.VariantUC{Products: prodRepo}
	a.StockUC = &usecase.StockUC{Stock: stockCache, Warehouse: warehouse}
	a.Storefront = &usecase.Storefront{Products: prodRepo, Stock: a.StockUC}
	if rdb == nil {
		log.Info().Msg("stock cache disabled")
	}
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.ProductUC, a.VariantUC, a.StockUC, a.Storefront)
}

func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.Variant{}, &domain.Image{}, &domain.StockItem{},
	); err != nil {
		return err
	}

	if err := backfillSlugs(a.DB); err != nil {
		return err
	}
	_ = a.DB.Exec("UPDATE products SET attribute_names = '[]' WHERE attribute_names IS NULL OR attribute_names = ''").Error

	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_variants_sku_unique ON variants (sku) WHERE sku IS NOT NULL AND sku <> ''").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_variants_product_created ON variants (product_id, created_at)").Error
	if a.DB.Dialector.Name() == "postgres" {
		_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_variants_attributes_gin ON variants USING gin ((attributes::jsonb))").Error
	}
	return nil
}

func backfillSlugs(db *gorm.DB) error {
	var products []domain.Product
	if err := db.Where("slug IS NULL OR slug = ''").Find(&products).Error; err != nil {
		return err
	}
	for _, p := range products {
		base := usecase.Slugify(p.Name)
		if base == "" {
			base = p.ID.String()[:8]
		}
		slug := base

		var count int64
		i := 1
		for {
			if err := db.Model(&domain.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
			i++
			slug = fmt.Sprintf("%s-%d", base, i)
		}
		if err := db.Model(&domain.Product{}).Where("id = ?", p.ID).Update("slug", slug).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedDemo stores a small Color x Size product with stock when the catalog
// is empty. It returns the slug of the product it created, or "".
func (a *App) SeedDemo(ctx context.Context) (string, error) {
	var count int64
	if err := a.DB.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", nil
	}
	p := &domain.Product{ID: uuid.New(), Name: "Basic Tee", Category: "shirts", BasePrice: 20, ShortDesc: "Cotton t-shirt"}
	if err := a.ProductUC.Create(ctx, p); err != nil {
		return "", err
	}
	d := usecase.EditorDraft{
		Attributes: []variant.Attribute{
			{Name: "Color", Values: []string{"Black", "Red"}},
			{Name: "Size", Values: []string{"S", "M", "L"}},
		},
		ImageAttribute: "Color",
		Assets: map[string]variant.ValueAssets{
			"Black": {Images: []string{"/img/tee-black.jpg"}, Color: "#111111"},
			"Red":   {Images: []string{"/img/tee-red.jpg"}, Color: "#cc0000"},
		},
	}
	rep, err := a.VariantUC.Save(ctx, p.Slug, d)
	if err != nil {
		return "", err
	}
	for i, v := range rep.Variants {
		if !v.Persisted() {
			continue
		}
		qty := (i * 3) % 7
		if strings.EqualFold(v.Attributes["Size"], "L") {
			qty = 0
		}
		if err := a.Stock.SetQuantity(ctx, v.ID, a.StockUC.Warehouse, qty); err != nil {
			return "", err
		}
		_ = a.StockCache.Invalidate(ctx, v.ID, a.StockUC.Warehouse)
	}
	return p.Slug, nil
}
