package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"index;not null"`
	User        User            `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AddressID   uint            `json:"address_id" gorm:"not null"`
	Address     Address         `json:"address" gorm:"constraint:OnDelete:CASCADE"`
	ProductID   uint            `json:"product_id" gorm:"not null"`
	Product     Product         `json:"product" gorm:"constraint:OnDelete:CASCADE"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(8,2)"`
	OrderedDate time.Time       `json:"ordered_date" gorm:"autoCreateTime"`
	Status      OrderStatus     `json:"status" gorm:"size:50;default:'Pending'"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderAccepted  OrderStatus = "Accepted"
	OrderPacked    OrderStatus = "Packed"
	OrderOnTheWay  OrderStatus = "On The Way"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// orderTransitions lists the statuses reachable from each status.
// Delivered and Cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderAccepted, OrderCancelled},
	OrderAccepted: {OrderPacked, OrderCancelled},
	OrderPacked:   {OrderOnTheWay, OrderCancelled},
	OrderOnTheWay: {OrderDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderPacked, OrderOnTheWay, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Total is quantity times the unit price captured when the order was placed.
func (o *Order) Total() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}
