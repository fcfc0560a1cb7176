package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type DriftKind string

const (
	DriftStaleOccupancy    DriftKind = "stale_occupancy"
	DriftUnsettledOrder    DriftKind = "unsettled_order"
	DriftPaidNotCompleted  DriftKind = "paid_not_completed"
	DriftOrphanOrder       DriftKind = "orphan_order"
	DriftDoubleBooked      DriftKind = "double_booked"
	DriftOpenSteps         DriftKind = "open_steps"
	DriftOccupancyMismatch DriftKind = "occupancy_mismatch"
)

// stepGrace -> step yang lebih muda dari ini mungkin masih berjalan di terminal lain
const stepGrace = time.Minute

// Drift is one place where tables, orders and payments disagree.
type Drift struct {
	Kind       DriftKind `json:"kind"`
	TableNo    string    `json:"table_no,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	Detail     string    `json:"detail"`
	Repairable bool      `json:"repairable"`

	fix func(ctx context.Context) error
}

type ReconcileReport struct {
	CheckedAt       time.Time `json:"checked_at"`
	SnapshotVersion uint64    `json:"snapshot_version"`
	Drift           []Drift   `json:"drift"`
}

func (r *ReconcileReport) Clean() bool {
	return len(r.Drift) == 0
}

type RepairResult struct {
	Drift    Drift  `json:"drift"`
	Repaired bool   `json:"repaired"`
	Error    string `json:"error,omitempty"`
}

type RepairReport struct {
	Results       []RepairResult `json:"results"`
	ResolvedSteps int            `json:"resolved_steps"`
	Remaining     []Drift        `json:"remaining"`
}

// Reconciler finds drift left by interrupted operations and applies the
// fixes that are safe to automate. Every fix is a guarded write, so a record
// that moved on since inspection is left alone.
type Reconciler struct {
	store     store.Store
	snapshots *Snapshotter
	now       func() time.Time
}

func NewReconciler(s store.Store, snapshots *Snapshotter) *Reconciler {
	return &Reconciler{
		store:     s,
		snapshots: snapshots,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *Reconciler) Inspect(ctx context.Context) (*ReconcileReport, error) {
	snap, err := r.snapshots.Take(ctx)
	if err != nil {
		return nil, err
	}
	steps, err := r.store.ListOpenSteps(ctx)
	if err != nil {
		return nil, wrapError("reconcile", ErrUpstream, err, "cannot read step journal")
	}

	report := &ReconcileReport{CheckedAt: snap.TakenAt, SnapshotVersion: snap.Version}
	report.Drift = append(report.Drift, r.inspectTables(snap)...)
	report.Drift = append(report.Drift, r.inspectOrders(snap)...)
	for _, step := range steps {
		report.Drift = append(report.Drift, Drift{
			Kind:    DriftOpenSteps,
			TableNo: step.TableNo,
			OrderID: step.OrderID,
			Detail:  fmt.Sprintf("%s step %d (%s) left %s: %s", step.Operation, step.Step, step.Intent, step.State, step.Error),
		})
	}
	return report, nil
}

func (r *Reconciler) inspectTables(snap *Snapshot) []Drift {
	orders := make(map[string]models.Order, len(snap.Orders))
	for _, o := range snap.Orders {
		orders[o.OrderID] = o
	}

	var drift []Drift
	for _, t := range snap.Tables {
		tableNo := t.TableNo
		switch {
		case t.IsOccupied() && t.CurrentOrderID == nil:
			drift = append(drift, Drift{
				Kind:       DriftOccupancyMismatch,
				TableNo:    tableNo,
				Detail:     "table is occupied without an order",
				Repairable: true,
				fix: func(ctx context.Context) error {
					return r.vacate(ctx, tableNo, &store.TableGuard{Status: models.TableOccupied})
				},
			})

		case !t.IsOccupied() && t.CurrentOrderID != nil:
			orderID := *t.CurrentOrderID
			guard := &store.TableGuard{Status: models.TableVacant, OrderID: &orderID}
			if o, ok := orders[orderID]; ok && o.IsLive() && o.TableNo == tableNo {
				drift = append(drift, Drift{
					Kind:       DriftOccupancyMismatch,
					TableNo:    tableNo,
					OrderID:    orderID,
					Detail:     "table is vacant but holds a live order",
					Repairable: true,
					fix: func(ctx context.Context) error {
						_, err := r.store.UpdateTable(ctx, tableNo, guard,
							store.TablePatch{Status: models.TableOccupied, CurrentOrderID: &orderID})
						return err
					},
				})
			} else {
				drift = append(drift, Drift{
					Kind:       DriftOccupancyMismatch,
					TableNo:    tableNo,
					OrderID:    orderID,
					Detail:     "table is vacant but still references an order",
					Repairable: true,
					fix: func(ctx context.Context) error {
						return r.vacate(ctx, tableNo, guard)
					},
				})
			}

		case t.IsOccupied():
			orderID := *t.CurrentOrderID
			o, ok := orders[orderID]
			detail := "occupying order does not exist"
			switch {
			case ok && o.IsLive() && o.TableNo != tableNo && holdsOrder(snap.Tables, o.TableNo, orderID):
				detail = fmt.Sprintf("order sits at table %s, which also holds it", o.TableNo)
			case ok && o.IsLive():
				continue
			case ok:
				detail = fmt.Sprintf("occupying order is %s/%s", o.Status, o.PaymentStatus)
			}
			drift = append(drift, Drift{
				Kind:       DriftStaleOccupancy,
				TableNo:    tableNo,
				OrderID:    orderID,
				Detail:     detail,
				Repairable: true,
				fix: func(ctx context.Context) error {
					return r.vacate(ctx, tableNo, &store.TableGuard{Status: models.TableOccupied, OrderID: &orderID})
				},
			})
		}
	}
	return drift
}

func (r *Reconciler) inspectOrders(snap *Snapshot) []Drift {
	tables := make(map[string]models.Table, len(snap.Tables))
	holders := make(map[string][]string)
	for _, t := range snap.Tables {
		tables[t.TableNo] = t
		if t.CurrentOrderID != nil {
			holders[*t.CurrentOrderID] = append(holders[*t.CurrentOrderID], t.TableNo)
		}
	}
	payments := make(map[string]models.Payment, len(snap.Payments))
	for _, p := range snap.Payments {
		payments[p.OrderID] = p
	}

	var drift []Drift
	for _, o := range snap.Orders {
		order := o
		orderID := order.OrderID
		payment, hasPayment := payments[orderID]

		switch {
		case hasPayment && (order.PaymentStatus != models.PaymentPaid || order.Status != models.OrderCompleted):
			drift = append(drift, Drift{
				Kind:       DriftUnsettledOrder,
				TableNo:    order.TableNo,
				OrderID:    orderID,
				Detail:     fmt.Sprintf("payment %s recorded but order is %s/%s", models.ShortID(payment.PaymentID), order.Status, order.PaymentStatus),
				Repairable: true,
				fix: func(ctx context.Context) error {
					return r.completeOrder(ctx, order, payment.PaymentTime)
				},
			})

		case !hasPayment && order.PaymentStatus == models.PaymentPaid && order.Status != models.OrderCompleted:
			drift = append(drift, Drift{
				Kind:       DriftPaidNotCompleted,
				TableNo:    order.TableNo,
				OrderID:    orderID,
				Detail:     fmt.Sprintf("order is paid but still %s", order.Status),
				Repairable: true,
				fix: func(ctx context.Context) error {
					return r.completeOrder(ctx, order, r.now())
				},
			})

		case order.IsLive():
			held := holders[orderID]
			if len(held) > 1 && holdsOrder(snap.Tables, order.TableNo, orderID) {
				continue
			}
			if len(held) > 1 {
				drift = append(drift, Drift{
					Kind:    DriftDoubleBooked,
					OrderID: orderID,
					Detail:  fmt.Sprintf("order is held by tables %v", held),
				})
				continue
			}
			if len(held) == 1 {
				continue
			}

			table, ok := tables[order.TableNo]
			switch {
			case !ok:
				drift = append(drift, Drift{
					Kind:    DriftOrphanOrder,
					TableNo: order.TableNo,
					OrderID: orderID,
					Detail:  "live order points at a table that does not exist",
				})
			case table.IsOccupied() || table.CurrentOrderID != nil:
				drift = append(drift, Drift{
					Kind:    DriftDoubleBooked,
					TableNo: order.TableNo,
					OrderID: orderID,
					Detail:  "live order's table is occupied by another order",
				})
			default:
				tableNo := order.TableNo
				drift = append(drift, Drift{
					Kind:       DriftOrphanOrder,
					TableNo:    tableNo,
					OrderID:    orderID,
					Detail:     "live order is not seated at its vacant table",
					Repairable: true,
					fix: func(ctx context.Context) error {
						_, err := r.store.UpdateTable(ctx, tableNo,
							&store.TableGuard{Status: models.TableVacant},
							store.TablePatch{Status: models.TableOccupied, CurrentOrderID: &orderID})
						return err
					},
				})
			}
		}
	}
	return drift
}

// Repair applies every repairable drift item once, then marks journal steps
// resolved for orders that no longer show drift.
func (r *Reconciler) Repair(ctx context.Context) (*RepairReport, error) {
	report, err := r.Inspect(ctx)
	if err != nil {
		return nil, err
	}

	out := &RepairReport{}
	for _, d := range report.Drift {
		if !d.Repairable {
			continue
		}
		res := RepairResult{Drift: d}
		if err := d.fix(ctx); err != nil {
			res.Error = err.Error()
			utils.ErrorLogger.Warnf("reconcile: %s on table %s order %s not repaired: %v", d.Kind, d.TableNo, d.OrderID, err)
		} else {
			res.Repaired = true
			utils.InfoLogger.Infof("reconcile: repaired %s on table %s order %s", d.Kind, d.TableNo, d.OrderID)
		}
		out.Results = append(out.Results, res)
	}

	after, err := r.Inspect(ctx)
	if err != nil {
		return nil, err
	}

	dirty := make(map[string]bool)
	for _, d := range after.Drift {
		if d.Kind != DriftOpenSteps && d.OrderID != "" {
			dirty[d.OrderID] = true
		}
	}

	steps, err := r.store.ListOpenSteps(ctx)
	if err != nil {
		return nil, wrapError("reconcile", ErrUpstream, err, "cannot read step journal")
	}
	cutoff := r.now().Add(-stepGrace)
	for _, step := range steps {
		if dirty[step.OrderID] || step.UpdatedAt.After(cutoff) {
			continue
		}
		if err := r.store.MarkStep(ctx, step.ID, models.StepResolved, step.Error); err != nil {
			utils.ErrorLogger.Warnf("reconcile: cannot resolve step %d: %v", step.ID, err)
			continue
		}
		out.ResolvedSteps++
	}

	final, err := r.Inspect(ctx)
	if err != nil {
		return nil, err
	}
	out.Remaining = final.Drift
	return out, nil
}

func holdsOrder(tables []models.Table, tableNo, orderID string) bool {
	for _, t := range tables {
		if t.TableNo == tableNo {
			return t.HoldsOrder(orderID)
		}
	}
	return false
}

func (r *Reconciler) vacate(ctx context.Context, tableNo string, guard *store.TableGuard) error {
	_, err := r.store.UpdateTable(ctx, tableNo, guard, store.TablePatch{Status: models.TableVacant})
	return err
}

// completeOrder marks an order paid and completed, then frees its table.
func (r *Reconciler) completeOrder(ctx context.Context, order models.Order, at time.Time) error {
	completed := models.OrderCompleted
	paid := models.PaymentPaid
	_, err := r.store.UpdateOrder(ctx, order.OrderID,
		&store.OrderGuard{Status: order.Status, PaymentStatus: order.PaymentStatus},
		store.OrderPatch{Status: &completed, PaymentStatus: &paid, CompletedAt: &at})
	if err != nil {
		return err
	}

	held, err := r.store.FindTableByOrder(ctx, order.OrderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	orderID := order.OrderID
	return r.vacate(ctx, held.TableNo, &store.TableGuard{Status: models.TableOccupied, OrderID: &orderID})
}
