package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is one basket line: a product and how many units of it the user wants.
// A (user, product) pair has a single row; that is kept by the service, not by a constraint.
type Cart struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ProductID uint      `json:"product_id" gorm:"index;not null"`
	Product   Product   `json:"product" gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalPrice is quantity times the product's unit price. Product must be loaded.
func (c *Cart) TotalPrice() decimal.Decimal {
	return c.Product.PricePerUnit.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
