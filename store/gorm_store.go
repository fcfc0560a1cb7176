package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-pos/models"
)

// GormStore implements Store on a gorm connection (sqlite, mysql or postgres).
// Each method is one independently committed statement; there are no
// multi-record transactions.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

var _ Store = (*GormStore)(nil)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

/*
========================================
 TABLES
========================================
*/

func (s *GormStore) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := s.DB.WithContext(ctx).Order("table_no asc").Find(&tables).Error; err != nil {
		return nil, translate(err)
	}
	return tables, nil
}

func (s *GormStore) GetTable(ctx context.Context, tableNo string) (*models.Table, error) {
	var table models.Table
	if err := s.DB.WithContext(ctx).Where("table_no = ?", tableNo).First(&table).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (s *GormStore) FindTableByOrder(ctx context.Context, orderID string) (*models.Table, error) {
	var table models.Table
	if err := s.DB.WithContext(ctx).Where("current_order_id = ?", orderID).First(&table).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (s *GormStore) InsertTable(ctx context.Context, table *models.Table) (*models.Table, error) {
	if table.Status == "" {
		table.Status = models.TableVacant
	}
	if table.Capacity == 0 {
		table.Capacity = models.DefaultTableCapacity
	}
	now := time.Now().UTC()
	table.CreatedAt, table.UpdatedAt = now, now

	if err := s.DB.WithContext(ctx).Create(table).Error; err != nil {
		return nil, translate(err)
	}
	return table, nil
}

func (s *GormStore) UpdateTable(ctx context.Context, tableNo string, guard *TableGuard, patch TablePatch) (*models.Table, error) {
	q := s.DB.WithContext(ctx).Model(&models.Table{}).Where("table_no = ?", tableNo)
	if guard != nil {
		q = q.Where("status = ?", guard.Status)
		if guard.OrderID == nil {
			q = q.Where("current_order_id IS NULL")
		} else {
			q = q.Where("current_order_id = ?", *guard.OrderID)
		}
	}

	res := q.Updates(map[string]interface{}{
		"status":           patch.Status,
		"current_order_id": patch.CurrentOrderID,
		"updated_at":       time.Now().UTC(),
	})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, s.missingOrStale(ctx, &models.Table{}, "table_no = ?", tableNo)
	}
	return s.GetTable(ctx, tableNo)
}

/*
========================================
 MENU
========================================
*/

func (s *GormStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.DB.WithContext(ctx).Order("category asc").Order("item_name asc").Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (s *GormStore) GetMenuItem(ctx context.Context, itemID string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.DB.WithContext(ctx).Where("item_id = ?", itemID).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *GormStore) InsertMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	item.ItemID = models.NewMenuItemID()
	if item.KitchenStation == "" {
		item.KitchenStation = models.DefaultKitchenStation
	}
	if item.PrepTime == 0 {
		item.PrepTime = models.DefaultPrepTime
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now

	if err := s.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (s *GormStore) UpdateMenuItem(ctx context.Context, itemID string, patch MenuItemPatch) (*models.MenuItem, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		updates["item_name"] = *patch.Name
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.KitchenStation != nil {
		updates["kitchen_station"] = *patch.KitchenStation
	}
	if patch.PrepTime != nil {
		updates["prep_time"] = *patch.PrepTime
	}
	if patch.Available != nil {
		updates["available"] = *patch.Available
	}

	res := s.DB.WithContext(ctx).Model(&models.MenuItem{}).Where("item_id = ?", itemID).Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetMenuItem(ctx, itemID)
}

/*
========================================
 ORDERS
========================================
*/

func (s *GormStore) ListOrders(ctx context.Context, statusFilter string) ([]models.Order, error) {
	q := s.DB.WithContext(ctx).Order("created_at desc").Order("order_id desc")
	if statusFilter != "" && statusFilter != OrderFilterAll {
		q = q.Where("status = ?", statusFilter)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

func (s *GormStore) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *GormStore) InsertOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.OrderID = models.NewOrderID()
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now

	if err := s.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, translate(err)
	}
	return order, nil
}

func (s *GormStore) UpdateOrder(ctx context.Context, orderID string, guard *OrderGuard, patch OrderPatch) (*models.Order, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.PaymentStatus != nil {
		updates["payment_status"] = *patch.PaymentStatus
	}
	if patch.TableNo != nil {
		updates["table_no"] = *patch.TableNo
	}
	if patch.CompletedAt != nil {
		updates["completed_at"] = patch.CompletedAt.UTC()
	}

	q := s.DB.WithContext(ctx).Model(&models.Order{}).Where("order_id = ?", orderID)
	if guard != nil {
		if guard.Status != "" {
			q = q.Where("status = ?", guard.Status)
		}
		if guard.PaymentStatus != "" {
			q = q.Where("payment_status = ?", guard.PaymentStatus)
		}
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, s.missingOrStale(ctx, &models.Order{}, "order_id = ?", orderID)
	}
	return s.GetOrder(ctx, orderID)
}

/*
========================================
 PAYMENTS
========================================
*/

func (s *GormStore) InsertPayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	payment.PaymentID = models.NewPaymentID()
	now := time.Now().UTC()
	payment.PaymentTime, payment.CreatedAt = now, now

	if err := s.DB.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, translate(err)
	}
	return payment, nil
}

func (s *GormStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.DB.WithContext(ctx).Order("payment_time desc").Find(&payments).Error; err != nil {
		return nil, translate(err)
	}
	return payments, nil
}

func (s *GormStore) FindPaymentByOrder(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

/*
========================================
 STEP JOURNAL & SETTINGS
========================================
*/

func (s *GormStore) AppendStep(ctx context.Context, step *models.LifecycleStep) error {
	now := time.Now().UTC()
	step.CreatedAt, step.UpdatedAt = now, now
	return translate(s.DB.WithContext(ctx).Create(step).Error)
}

func (s *GormStore) MarkStep(ctx context.Context, id uint, state models.StepState, errMsg string) error {
	res := s.DB.WithContext(ctx).Model(&models.LifecycleStep{}).Where("id = ?", id).Updates(map[string]interface{}{
		"state":      state,
		"error":      errMsg,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListOpenSteps(ctx context.Context) ([]models.LifecycleStep, error) {
	var steps []models.LifecycleStep
	err := s.DB.WithContext(ctx).
		Where("state IN ?", []models.StepState{models.StepPlanned, models.StepFailed}).
		Order("id asc").
		Find(&steps).Error
	if err != nil {
		return nil, translate(err)
	}
	return steps, nil
}

func (s *GormStore) GetSetting(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	if err := s.DB.WithContext(ctx).Where(map[string]interface{}{"key": key}).First(&setting).Error; err != nil {
		return "", translate(err)
	}
	return setting.Value, nil
}

func (s *GormStore) PutSetting(ctx context.Context, key, value string) error {
	setting := models.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	return translate(err)
}

// missingOrStale tells a guarded update that matched nothing apart from a missing row.
func (s *GormStore) missingOrStale(ctx context.Context, model interface{}, where string, key string) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(model).Where(where, key).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStale
}
