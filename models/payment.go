package models

import (
	"time"
)

const DefaultCashier = "System"

// Payment represents the settlement of an order. It is never updated or deleted;
// the unique index on order_id allows at most one payment per order.
type Payment struct {
	PaymentID   string    `gorm:"primaryKey;type:varchar(64)" json:"payment_id"`
	OrderID     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`
	Amount      float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method      string    `gorm:"type:varchar(30);not null" json:"method"` // cash, card, qr, upi
	Cashier     string    `gorm:"type:varchar(100);not null" json:"cashier"`
	PaymentTime time.Time `gorm:"not null" json:"payment_time"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
