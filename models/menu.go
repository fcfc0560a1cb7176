package models

import "time"

const (
	DefaultKitchenStation = "Main Kitchen"
	DefaultPrepTime       = 15
)

// MenuItem tidak pernah direferensikan oleh order; order menyimpan salinan nama dan harga.
type MenuItem struct {
	ItemID         string    `gorm:"primaryKey;type:varchar(64)" json:"item_id"`
	Name           string    `gorm:"column:item_name;type:varchar(255);not null" json:"item_name"`
	Category       string    `gorm:"type:varchar(100);not null;index" json:"category"`
	Price          float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Description    string    `gorm:"type:text" json:"description"`
	KitchenStation string    `gorm:"type:varchar(100);not null;default:'Main Kitchen'" json:"kitchen_station"`
	PrepTime       int       `gorm:"not null;default:15" json:"prep_time"`
	Available      bool      `gorm:"not null" json:"available"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
