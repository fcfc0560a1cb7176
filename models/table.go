package models

import "time"

type TableStatus string

const (
	TableVacant   TableStatus = "vacant"
	TableOccupied TableStatus = "occupied"
)

// DefaultTableCapacity dipakai jika capacity tidak diisi saat menambah meja
const DefaultTableCapacity = 4

// Table adalah meja fisik. CurrentOrderID terisi jika dan hanya jika Status = occupied.
type Table struct {
	TableNo        string      `gorm:"primaryKey;type:varchar(50)" json:"table_no"`
	Capacity       int         `gorm:"not null;default:4" json:"capacity"`
	Status         TableStatus `gorm:"type:varchar(20);not null;default:'vacant';index" json:"status"`
	CurrentOrderID *string     `gorm:"type:varchar(64);index" json:"current_order_id"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}

func (Table) TableName() string {
	return "restaurant_tables"
}

func (t Table) IsOccupied() bool {
	return t.Status == TableOccupied
}

// HoldsOrder -> true jika meja sedang dipakai oleh order tersebut
func (t Table) HoldsOrder(orderID string) bool {
	return t.CurrentOrderID != nil && *t.CurrentOrderID == orderID
}

func ValidTableStatus(s TableStatus) bool {
	return s == TableVacant || s == TableOccupied
}
