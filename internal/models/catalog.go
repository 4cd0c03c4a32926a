package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a crop type grouping produce items.
type Category struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"size:50;not null"`
	Slug          string    `json:"slug" gorm:"size:55;unique;not null"`
	Description   string    `json:"description" gorm:"type:text"`
	CategoryImage string    `json:"category_image"`
	IsActive      bool      `json:"is_active"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Product is a produce item listed for sale. Column names for batch id, origin,
// details and price predate the produce naming and are kept as is.
type Product struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Title          string          `json:"title" gorm:"size:150;not null"`
	Slug           string          `json:"slug" gorm:"size:160;unique;not null"`
	BatchID        string          `json:"batch_id" gorm:"column:sku;size:255;unique;not null"`
	Origin         string          `json:"origin" gorm:"column:short_description;type:text"`
	ProduceDetails string          `json:"produce_details" gorm:"column:detail_description;type:text"`
	ProductImage   string          `json:"product_image"`
	PricePerUnit   decimal.Decimal `json:"price_per_unit" gorm:"column:price;type:decimal(8,2);not null"`
	UnitType       UnitType        `json:"unit_type" gorm:"size:10;default:'KG'"`
	HarvestDate    *time.Time      `json:"harvest_date" gorm:"type:date"`
	CategoryID     uint            `json:"category_id" gorm:"index;not null"`
	Category       Category        `json:"category" gorm:"constraint:OnDelete:CASCADE"`
	FarmerID       *uint           `json:"farmer_id" gorm:"index"`
	IsActive       bool            `json:"is_active"`
	IsFeatured     bool            `json:"is_featured"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type UnitType string

const (
	UnitKilogram UnitType = "KG"
	UnitCrate    UnitType = "CRATE"
	UnitBag      UnitType = "BAG"
	UnitLiter    UnitType = "LITER"
	UnitPiece    UnitType = "PIECE"
)

var unitLabels = map[UnitType]string{
	UnitKilogram: "Kilogram",
	UnitCrate:    "Crate/Box",
	UnitBag:      "Bag (e.g., 50kg)",
	UnitLiter:    "Liter",
	UnitPiece:    "Piece/Unit",
}

func (u UnitType) Valid() bool {
	_, ok := unitLabels[u]
	return ok
}

// Label is the human readable unit name.
func (u UnitType) Label() string {
	return unitLabels[u]
}
