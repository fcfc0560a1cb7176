// Package store is the data-access layer: every read and individually-committed
// write the POS needs against the relational store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/restaurant-pos/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrStale     = errors.New("record changed since it was read")
	ErrDuplicate = errors.New("duplicate record")
)

// OrderFilterAll lists orders of every status.
const OrderFilterAll = "all"

// TableGuard is the state a table must still be in for a guarded update to apply.
// A nil OrderID means current_order_id must be NULL.
type TableGuard struct {
	Status  models.TableStatus
	OrderID *string
}

type TablePatch struct {
	Status         models.TableStatus
	CurrentOrderID *string
}

// OrderGuard is the state an order must still be in. Empty fields are not checked.
type OrderGuard struct {
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
}

// OrderPatch holds the fields to change; nil fields are left alone.
type OrderPatch struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	TableNo       *string
	CompletedAt   *time.Time
}

// MenuItemPatch holds the editable menu fields; nil fields are left alone.
type MenuItemPatch struct {
	Name           *string
	Category       *string
	Price          *float64
	Description    *string
	KitchenStation *string
	PrepTime       *int
	Available      *bool
}

type Store interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	GetTable(ctx context.Context, tableNo string) (*models.Table, error)
	FindTableByOrder(ctx context.Context, orderID string) (*models.Table, error)
	InsertTable(ctx context.Context, table *models.Table) (*models.Table, error)
	// UpdateTable applies patch only if the table still matches guard (nil guard: unconditional).
	UpdateTable(ctx context.Context, tableNo string, guard *TableGuard, patch TablePatch) (*models.Table, error)

	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, itemID string) (*models.MenuItem, error)
	InsertMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, itemID string, patch MenuItemPatch) (*models.MenuItem, error)

	ListOrders(ctx context.Context, statusFilter string) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	InsertOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID string, guard *OrderGuard, patch OrderPatch) (*models.Order, error)

	InsertPayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	FindPaymentByOrder(ctx context.Context, orderID string) (*models.Payment, error)

	AppendStep(ctx context.Context, step *models.LifecycleStep) error
	MarkStep(ctx context.Context, id uint, state models.StepState, errMsg string) error
	ListOpenSteps(ctx context.Context) ([]models.LifecycleStep, error)

	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
}
