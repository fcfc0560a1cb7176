package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	OpPlaceOrder    = "place_order"
	OpAdvanceStatus = "advance_order_status"
	OpSettlePayment = "settle_payment"
	OpTransferTable = "transfer_table"
)

// Notifier menerima event setelah sebuah operasi berhasil. Implementasinya
// (kds.Hub) best-effort, kegagalannya tidak mempengaruhi operasi.
type Notifier interface {
	BroadcastOrderUpdate(order models.Order)
	BroadcastTableUpdate(table models.Table)
	BroadcastPaymentSuccess(payment models.Payment, order models.Order)
	BroadcastStaffNotification(message string)
}

type LineInput struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type PlaceOrderInput struct {
	TableNo      string      `json:"table_no"`
	CustomerName string      `json:"customer_name"`
	Items        []LineInput `json:"items"`
}

type SettleInput struct {
	OrderID string  `json:"order_id"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
	Cashier string  `json:"cashier"`
}

// OrderLifecycle keeps table occupancy, order status and payment settlement
// consistent. It holds no entity state between calls: every operation reads
// the records it needs from the store and writes them back with guarded
// updates, one step at a time, in a fixed order.
type OrderLifecycle struct {
	store   store.Store
	journal *Journal
	notify  Notifier
	metrics *MetricsRecorder
	now     func() time.Time
}

func NewOrderLifecycle(s store.Store, notify Notifier, metrics *MetricsRecorder) *OrderLifecycle {
	return &OrderLifecycle{
		store:   s,
		journal: NewJournal(s),
		notify:  notify,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

/*
========================================
 PLACE ORDER
========================================
*/

func (l *OrderLifecycle) PlaceOrder(ctx context.Context, in PlaceOrderInput) (order *models.Order, err error) {
	defer func() { l.metrics.record(OpPlaceOrder, err) }()

	tableNo := strings.TrimSpace(in.TableNo)
	if tableNo == "" {
		return nil, newError(OpPlaceOrder, ErrValidation, "table number is required")
	}
	if len(in.Items) == 0 {
		return nil, newError(OpPlaceOrder, ErrValidation, "order has no items")
	}
	for i, item := range in.Items {
		if item.Quantity < 1 {
			return nil, newError(OpPlaceOrder, ErrValidation, "line %d: quantity must be at least 1", i+1)
		}
		if item.Quantity > models.MaxLineQuantity {
			return nil, newError(OpPlaceOrder, ErrValidation, "line %d: quantity must be at most %d", i+1, models.MaxLineQuantity)
		}
	}

	table, err := l.store.GetTable(ctx, tableNo)
	if err != nil {
		return nil, fromStore(OpPlaceOrder, err, "table "+tableNo)
	}
	if table.IsOccupied() || table.CurrentOrderID != nil {
		return nil, newError(OpPlaceOrder, ErrConflict, "table %s is already occupied", tableNo)
	}

	lines, err := l.resolveLines(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	total, err := models.LinesTotal(lines)
	if err != nil {
		return nil, wrapError(OpPlaceOrder, ErrValidation, err, "order total is out of range")
	}

	customer := strings.TrimSpace(in.CustomerName)
	if customer == "" {
		customer = models.DefaultCustomerName
	}

	entry := l.journal.Plan(ctx, OpPlaceOrder, "", tableNo, 1, "insert order for table "+tableNo)
	order, err = l.store.InsertOrder(ctx, &models.Order{
		TableNo:       tableNo,
		CustomerName:  customer,
		Items:         lines,
		TotalAmount:   total,
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
	})
	if err != nil {
		entry.Fail(ctx, err)
		return nil, fromStore(OpPlaceOrder, err, "order")
	}
	entry.Commit(ctx)

	orderID := order.OrderID
	entry = l.journal.Plan(ctx, OpPlaceOrder, orderID, tableNo, 2, "occupy table "+tableNo)
	table, err = l.store.UpdateTable(ctx, tableNo,
		&store.TableGuard{Status: models.TableVacant},
		store.TablePatch{Status: models.TableOccupied, CurrentOrderID: &orderID})
	if err != nil {
		entry.Fail(ctx, err)
		return nil, &PartialCommitError{
			Op:        OpPlaceOrder,
			OrderID:   orderID,
			Committed: []string{"order saved"},
			Failed:    "occupy table " + tableNo,
			Hint:      fmt.Sprintf("order %s saved but table %s was not marked occupied; reconcile manually", models.ShortID(orderID), tableNo),
			Err:       fromStore(OpPlaceOrder, err, "table "+tableNo),
		}
	}
	entry.Commit(ctx)

	l.logger(OpPlaceOrder, orderID).Infof("order placed on table %s, total %s", tableNo, utils.FormatCurrency(order.TotalAmount))
	if l.notify != nil {
		l.notify.BroadcastOrderUpdate(*order)
		l.notify.BroadcastTableUpdate(*table)
	}
	return order, nil
}

// resolveLines snapshots name and price for every line. Lines that reference
// a menu item take both from the menu; free lines must carry them.
func (l *OrderLifecycle) resolveLines(ctx context.Context, items []LineInput) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0, len(items))
	for i, in := range items {
		line := models.OrderLine{
			ItemID:   strings.TrimSpace(in.ItemID),
			Name:     strings.TrimSpace(in.Name),
			Price:    in.Price,
			Quantity: in.Quantity,
		}

		if line.ItemID != "" {
			item, err := l.store.GetMenuItem(ctx, line.ItemID)
			if err != nil {
				return nil, fromStore(OpPlaceOrder, err, "menu item "+line.ItemID)
			}
			if !item.Available {
				return nil, newError(OpPlaceOrder, ErrValidation, "%s is not available", item.Name)
			}
			line.Name = item.Name
			line.Price = item.Price
		} else if line.Name == "" {
			return nil, newError(OpPlaceOrder, ErrValidation, "line %d: name is required", i+1)
		}

		// cek sebelum dan sesudah pembulatan: Cents tidak boleh dipanggil untuk nilai di luar batas
		if !models.ValidUnitPrice(line.Price) || !models.ValidUnitPrice(models.RoundCents(line.Price)) {
			return nil, newError(OpPlaceOrder, ErrValidation, "line %d: price must be positive and at most %s",
				i+1, utils.FormatAmount(models.MaxUnitPrice))
		}
		line.Price = models.RoundCents(line.Price)
		lines = append(lines, line)
	}
	return lines, nil
}

/*
========================================
 ADVANCE ORDER STATUS
========================================
*/

func (l *OrderLifecycle) AdvanceOrderStatus(ctx context.Context, orderID string, next models.OrderStatus) (order *models.Order, err error) {
	defer func() { l.metrics.record(OpAdvanceStatus, err) }()

	if !models.ValidOrderStatus(next) {
		return nil, newError(OpAdvanceStatus, ErrValidation, "unknown order status %q", next)
	}

	current, err := l.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fromStore(OpAdvanceStatus, err, "order "+orderID)
	}

	if next == models.OrderCompleted {
		return nil, newError(OpAdvanceStatus, ErrInvalidTransition, "orders are completed only by settling payment")
	}
	if current.Status == next {
		return nil, newError(OpAdvanceStatus, ErrConflict, "order is already %s", next)
	}
	if !models.CanTransition(current.Status, next) {
		return nil, newError(OpAdvanceStatus, ErrInvalidTransition, "cannot move order from %s to %s", current.Status, next)
	}

	order, err = l.store.UpdateOrder(ctx, orderID,
		&store.OrderGuard{Status: current.Status},
		store.OrderPatch{Status: &next})
	if err != nil {
		return nil, fromStore(OpAdvanceStatus, err, "order "+orderID)
	}

	l.logger(OpAdvanceStatus, orderID).Infof("order %s -> %s", current.Status, next)
	if l.notify != nil {
		l.notify.BroadcastOrderUpdate(*order)
	}
	return order, nil
}

/*
========================================
 SETTLE PAYMENT
========================================
*/

func (l *OrderLifecycle) SettlePayment(ctx context.Context, in SettleInput) (payment *models.Payment, err error) {
	defer func() { l.metrics.record(OpSettlePayment, err) }()

	method := strings.TrimSpace(in.Method)
	if method == "" {
		return nil, newError(OpSettlePayment, ErrValidation, "payment method is required")
	}
	cashier := strings.TrimSpace(in.Cashier)
	if cashier == "" {
		cashier = models.DefaultCashier
	}

	order, err := l.store.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, fromStore(OpSettlePayment, err, "order "+in.OrderID)
	}
	if order.PaymentStatus == models.PaymentPaid || order.Status == models.OrderCompleted {
		return nil, newError(OpSettlePayment, ErrConflict, "order %s is already paid", models.ShortID(order.OrderID))
	}
	if !models.CanSettle(order.Status) {
		return nil, newError(OpSettlePayment, ErrInvalidTransition, "order in status %s cannot be settled", order.Status)
	}
	if !models.SameAmount(in.Amount, order.TotalAmount) {
		return nil, newError(OpSettlePayment, ErrValidation, "amount %s does not match order total %s",
			utils.FormatCurrency(in.Amount), utils.FormatCurrency(order.TotalAmount))
	}

	// payment tercatat tapi order belum paid: sisa dari settlement yang terputus
	if _, err := l.store.FindPaymentByOrder(ctx, order.OrderID); err == nil {
		return nil, newError(OpSettlePayment, ErrConflict,
			"a payment is already recorded for order %s; reconcile manually", models.ShortID(order.OrderID))
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fromStore(OpSettlePayment, err, "payment lookup")
	}

	orderID := order.OrderID
	entry := l.journal.Plan(ctx, OpSettlePayment, orderID, order.TableNo, 1, "record payment of "+utils.FormatAmount(order.TotalAmount))
	payment, err = l.store.InsertPayment(ctx, &models.Payment{
		OrderID: orderID,
		Amount:  models.RoundCents(order.TotalAmount),
		Method:  method,
		Cashier: cashier,
	})
	if err != nil {
		entry.Fail(ctx, err)
		return nil, fromStore(OpSettlePayment, err, "payment")
	}
	entry.Commit(ctx)

	committed := []string{"payment recorded"}
	completed := models.OrderCompleted
	paid := models.PaymentPaid
	now := l.now()

	entry = l.journal.Plan(ctx, OpSettlePayment, orderID, order.TableNo, 2, "mark order paid and completed")
	order, err = l.store.UpdateOrder(ctx, orderID,
		&store.OrderGuard{PaymentStatus: models.PaymentPending},
		store.OrderPatch{Status: &completed, PaymentStatus: &paid, CompletedAt: &now})
	if err != nil {
		entry.Fail(ctx, err)
		return nil, &PartialCommitError{
			Op:        OpSettlePayment,
			OrderID:   orderID,
			Committed: committed,
			Failed:    "mark order paid and completed",
			Hint:      "payment recorded but order and table state may be stale; reconcile manually",
			Err:       fromStore(OpSettlePayment, err, "order "+orderID),
		}
	}
	entry.Commit(ctx)
	committed = append(committed, "order completed")

	table, err := l.releaseTable(ctx, OpSettlePayment, orderID, 3)
	if err != nil {
		return nil, &PartialCommitError{
			Op:        OpSettlePayment,
			OrderID:   orderID,
			Committed: committed,
			Failed:    "vacate table",
			Hint:      "payment recorded but table state may be stale; reconcile manually",
			Err:       err,
		}
	}

	l.logger(OpSettlePayment, orderID).Infof("payment %s of %s by %s (%s)",
		models.ShortID(payment.PaymentID), utils.FormatCurrency(payment.Amount), cashier, method)
	if l.notify != nil {
		l.notify.BroadcastPaymentSuccess(*payment, *order)
		l.notify.BroadcastOrderUpdate(*order)
		if table != nil {
			l.notify.BroadcastTableUpdate(*table)
		}
	}
	return payment, nil
}

// releaseTable vacates whichever table still references the order. An order
// with no table holding it (left over from a partial PlaceOrder) has nothing
// to release.
func (l *OrderLifecycle) releaseTable(ctx context.Context, op, orderID string, step int) (*models.Table, error) {
	held, err := l.store.FindTableByOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		l.logger(op, orderID).Warn("no table references this order, nothing to vacate")
		return nil, nil
	}
	if err != nil {
		return nil, fromStore(op, err, "table lookup")
	}

	entry := l.journal.Plan(ctx, op, orderID, held.TableNo, step, "vacate table "+held.TableNo)
	table, err := l.store.UpdateTable(ctx, held.TableNo,
		&store.TableGuard{Status: models.TableOccupied, OrderID: &orderID},
		store.TablePatch{Status: models.TableVacant})
	if err != nil {
		entry.Fail(ctx, err)
		return nil, fromStore(op, err, "table "+held.TableNo)
	}
	entry.Commit(ctx)
	return table, nil
}

/*
========================================
 TRANSFER TABLE
========================================
*/

func (l *OrderLifecycle) TransferTable(ctx context.Context, orderID, fromTable, toTable string) (order *models.Order, err error) {
	defer func() { l.metrics.record(OpTransferTable, err) }()

	fromTable, toTable = strings.TrimSpace(fromTable), strings.TrimSpace(toTable)
	if fromTable == "" || toTable == "" {
		return nil, newError(OpTransferTable, ErrValidation, "both source and destination tables are required")
	}
	if fromTable == toTable {
		return nil, newError(OpTransferTable, ErrValidation, "order is already at table %s", fromTable)
	}

	current, err := l.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fromStore(OpTransferTable, err, "order "+orderID)
	}
	if !current.IsLive() {
		return nil, newError(OpTransferTable, ErrInvalidTransition, "order %s is already settled", models.ShortID(orderID))
	}

	from, err := l.store.GetTable(ctx, fromTable)
	if err != nil {
		return nil, fromStore(OpTransferTable, err, "table "+fromTable)
	}
	if !from.HoldsOrder(orderID) {
		return nil, newError(OpTransferTable, ErrConflict, "table %s does not hold order %s", fromTable, models.ShortID(orderID))
	}

	to, err := l.store.GetTable(ctx, toTable)
	if err != nil {
		return nil, fromStore(OpTransferTable, err, "table "+toTable)
	}
	if to.IsOccupied() || to.CurrentOrderID != nil {
		return nil, newError(OpTransferTable, ErrInvalidTransition, "table %s is occupied", toTable)
	}

	entry := l.journal.Plan(ctx, OpTransferTable, orderID, toTable, 1, "claim table "+toTable)
	to, err = l.store.UpdateTable(ctx, toTable,
		&store.TableGuard{Status: models.TableVacant},
		store.TablePatch{Status: models.TableOccupied, CurrentOrderID: &orderID})
	if err != nil {
		entry.Fail(ctx, err)
		return nil, fromStore(OpTransferTable, err, "table "+toTable)
	}
	entry.Commit(ctx)

	entry = l.journal.Plan(ctx, OpTransferTable, orderID, toTable, 2, "move order to table "+toTable)
	order, err = l.store.UpdateOrder(ctx, orderID,
		&store.OrderGuard{PaymentStatus: models.PaymentPending},
		store.OrderPatch{TableNo: &toTable})
	if err != nil {
		entry.Fail(ctx, err)
		return nil, &PartialCommitError{
			Op:        OpTransferTable,
			OrderID:   orderID,
			Committed: []string{"claim table " + toTable},
			Failed:    "move order to table " + toTable,
			Hint:      fmt.Sprintf("table %s claimed but the order still points at table %s; reconcile manually", toTable, fromTable),
			Err:       fromStore(OpTransferTable, err, "order "+orderID),
		}
	}
	entry.Commit(ctx)

	entry = l.journal.Plan(ctx, OpTransferTable, orderID, fromTable, 3, "vacate table "+fromTable)
	from, err = l.store.UpdateTable(ctx, fromTable,
		&store.TableGuard{Status: models.TableOccupied, OrderID: &orderID},
		store.TablePatch{Status: models.TableVacant})
	if err != nil {
		entry.Fail(ctx, err)
		return nil, &PartialCommitError{
			Op:        OpTransferTable,
			OrderID:   orderID,
			Committed: []string{"claim table " + toTable, "move order to table " + toTable},
			Failed:    "vacate table " + fromTable,
			Hint:      fmt.Sprintf("order moved to table %s but table %s may still show occupied; reconcile manually", toTable, fromTable),
			Err:       fromStore(OpTransferTable, err, "table "+fromTable),
		}
	}
	entry.Commit(ctx)

	l.logger(OpTransferTable, orderID).Infof("order moved from table %s to %s", fromTable, toTable)
	if l.notify != nil {
		l.notify.BroadcastOrderUpdate(*order)
		l.notify.BroadcastTableUpdate(*from)
		l.notify.BroadcastTableUpdate(*to)
		l.notify.BroadcastStaffNotification(fmt.Sprintf("Order %s moved from table %s to %s", models.ShortID(orderID), fromTable, toTable))
	}
	return order, nil
}

func (l *OrderLifecycle) logger(op, orderID string) *logrus.Entry {
	return utils.InfoLogger.WithFields(logrus.Fields{"op": op, "order_id": orderID})
}

// fromStore maps a store error onto the lifecycle taxonomy.
func fromStore(op string, err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return wrapError(op, ErrNotFound, err, "%s not found", what)
	case errors.Is(err, store.ErrStale), errors.Is(err, store.ErrDuplicate):
		return wrapError(op, ErrConflict, err, "%s was changed by another terminal", what)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapError(op, ErrUpstream, err, "request ended before %s was written", what)
	}
	return wrapError(op, ErrUpstream, err, "data store call failed for %s", what)
}
