package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug      string    `gorm:"uniqueIndex;size:140" json:"slug"`
	Name      string    `gorm:"size:180" json:"name"`
	BasePrice float64   `gorm:"type:decimal(12,2)" json:"basePrice"`
	Category  string    `gorm:"size:100" json:"category"`
	ShortDesc string    `gorm:"type:text" json:"shortDesc"`
	Active    bool      `gorm:"default:true;index" json:"isActive"`
	// AttributeNames is the ordered list of variant attribute names, stored as a JSON array.
	AttributeNames string    `gorm:"type:text" json:"attributeNames"`
	ImageAttribute string    `gorm:"size:100" json:"imageAttribute"`
	Images         []Image   `json:"images,omitempty"`
	Variants       []Variant `json:"variants,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Variant is the persisted shape. Attributes and MediaURLs are opaque JSON text;
// Color holds the legacy single attribute value used before Attributes existed.
type Variant struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID  uuid.UUID `gorm:"type:uuid;index" json:"productId"`
	Attributes string    `gorm:"type:text" json:"attributes"`
	MediaURLs  string    `gorm:"type:text" json:"mediaUrls"`
	ImageURL   string    `gorm:"size:255" json:"imageUrl"`
	Color      string    `gorm:"size:60" json:"color"`
	ColorCode  string    `gorm:"size:7" json:"colorCode"`
	Price      *float64  `gorm:"type:decimal(12,2)" json:"price"`
	SKU        string    `gorm:"size:100;index" json:"sku"`
	Active     bool      `gorm:"not null" json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Image struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"productId"`
	URL       string    `gorm:"size:255" json:"url"`
	Alt       string    `gorm:"size:140" json:"alt"`
	CreatedAt time.Time `json:"createdAt"`
}

// StockItem is the on-hand quantity of one variant in one warehouse.
type StockItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VariantID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_stock_variant_warehouse" json:"variantId"`
	WarehouseID string    `gorm:"size:60;uniqueIndex:idx_stock_variant_warehouse" json:"warehouseId"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProductFilter struct {
	Category string
	Query    string
	Sort     string
	Page     int
	PageSize int
}
