package models

import "time"

const (
	SettingRestaurantName = "restaurant_name"
	SettingSheetsWebhook  = "google_sheets_webhook"
)

type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
