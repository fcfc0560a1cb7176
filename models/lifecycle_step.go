package models

import "time"

type StepState string

const (
	StepPlanned   StepState = "planned"
	StepCommitted StepState = "committed"
	StepFailed    StepState = "failed"
	// StepResolved -> ditutup oleh reconcile setelah drift-nya diperbaiki
	StepResolved  StepState = "resolved"
)

// LifecycleStep is one journaled write of a multi-step lifecycle operation.
// It is recorded as planned before the write and marked afterwards.
type LifecycleStep struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Operation string    `gorm:"type:varchar(30);not null;index" json:"operation"`
	OrderID   string    `gorm:"type:varchar(64);not null;index" json:"order_id"`
	TableNo   string    `gorm:"type:varchar(50);index" json:"table_no"`
	Step      int       `gorm:"not null" json:"step"`
	Intent    string    `gorm:"type:varchar(255);not null" json:"intent"`
	State     StepState `gorm:"type:varchar(20);not null;index" json:"state"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
