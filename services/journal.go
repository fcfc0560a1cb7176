package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Journal records each durable step of a multi-step operation before it runs
// and marks it afterwards. A journal write that fails is logged and ignored.
type Journal struct {
	store store.Store
}

func NewJournal(s store.Store) *Journal {
	return &Journal{store: s}
}

// JournalEntry is a planned step handed back to the caller to mark.
type JournalEntry struct {
	journal *Journal
	rec     *models.LifecycleStep
	logged  bool
}

// Plan -> orderID boleh kosong (order belum dibuat), tableNo menunjuk meja yang disentuh step ini
func (j *Journal) Plan(ctx context.Context, op, orderID, tableNo string, step int, intent string) *JournalEntry {
	rec := &models.LifecycleStep{
		Operation: op,
		OrderID:   orderID,
		TableNo:   tableNo,
		Step:      step,
		Intent:    intent,
		State:     models.StepPlanned,
	}
	entry := &JournalEntry{journal: j, rec: rec}

	fields := logrus.Fields{"op": op, "order_id": orderID, "table_no": tableNo, "step": step}
	if err := j.store.AppendStep(ctx, rec); err != nil {
		utils.ErrorLogger.WithFields(fields).Warnf("journal: cannot record planned step %q: %v", intent, err)
		return entry
	}
	entry.logged = true
	utils.InfoLogger.WithFields(fields).Debugf("planned: %s", intent)
	return entry
}

func (e *JournalEntry) Commit(ctx context.Context) {
	e.mark(ctx, models.StepCommitted, "")
}

func (e *JournalEntry) Fail(ctx context.Context, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	e.mark(ctx, models.StepFailed, msg)
}

func (e *JournalEntry) mark(ctx context.Context, state models.StepState, errMsg string) {
	fields := logrus.Fields{"op": e.rec.Operation, "order_id": e.rec.OrderID, "step": e.rec.Step}
	if state == models.StepFailed {
		utils.ErrorLogger.WithFields(fields).Warnf("step failed: %s: %s", e.rec.Intent, errMsg)
	}
	if !e.logged {
		return
	}
	if err := e.journal.store.MarkStep(ctx, e.rec.ID, state, errMsg); err != nil {
		utils.ErrorLogger.WithFields(fields).Warnf("journal: cannot mark step %s: %v", state, err)
	}
}
