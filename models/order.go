package models

import (
	"math"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderCompleted OrderStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

const DefaultCustomerName = "Customer"

// OrderLine adalah salinan item menu pada saat order dibuat
type OrderLine struct {
	ItemID   string  `json:"item_id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (l OrderLine) Subtotal() float64 {
	return RoundCents(l.Price * float64(l.Quantity))
}

// Order memiliki item-nya sendiri (embedded JSON), bukan referensi ke menu_items.
// TotalAmount dihitung sekali saat dibuat dan tidak pernah dihitung ulang.
type Order struct {
	OrderID       string        `gorm:"primaryKey;type:varchar(64)" json:"order_id"`
	TableNo       string        `gorm:"type:varchar(50);not null;index" json:"table_no"`
	CustomerName  string        `gorm:"type:varchar(255);not null" json:"customer_name"`
	Items         []OrderLine   `gorm:"serializer:json;type:text;not null" json:"items"`
	TotalAmount   float64       `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	CreatedAt     time.Time     `gorm:"not null;index" json:"created_at"`
	CompletedAt   *time.Time    `json:"completed_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

// IsLive -> order belum dibayar dan belum selesai
func (o Order) IsLive() bool {
	return o.Status != OrderCompleted && o.PaymentStatus != PaymentPaid
}

// LinesTotal -> Σ(price × quantity), dibulatkan ke sen. Harga, quantity dan
// total di luar batas memberi ErrAmountOutOfRange.
func LinesTotal(lines []OrderLine) (float64, error) {
	var cents int64
	for _, l := range lines {
		if !ValidUnitPrice(l.Price) || l.Quantity < 1 || l.Quantity > MaxLineQuantity {
			return 0, ErrAmountOutOfRange
		}
		unit := Cents(l.Price)
		qty := int64(l.Quantity)
		if unit > math.MaxInt64/qty {
			return 0, ErrAmountOutOfRange
		}
		sub := unit * qty
		if cents > math.MaxInt64-sub {
			return 0, ErrAmountOutOfRange
		}
		cents += sub
	}
	total := float64(cents) / 100
	if total > MaxOrderAmount {
		return 0, ErrAmountOutOfRange
	}
	return total, nil
}

// orderTransitions adalah satu-satunya tabel transisi status order.
// completed hanya bisa dicapai lewat settlement (lihat CanSettle).
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderReady},
	OrderReady:   {OrderServed},
	OrderServed:  {},
}

// CanTransition reports whether an order may move from -> to through a status
// update. completed is never reachable here.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanSettle reports whether an order in status s may be completed by a payment.
func CanSettle(s OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderReady, OrderServed, OrderCompleted:
		return true
	}
	return false
}
