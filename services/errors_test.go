package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/restaurant-pos/store"
)

func TestLifecycleErrorKinds(t *testing.T) {
	err := newError(OpSettlePayment, ErrValidation, "amount %d does not match", 400)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "settle_payment: amount 400 does not match", err.Error())

	wrapped := fromStore(OpAdvanceStatus, store.ErrStale, "order ORD-1")
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.ErrorIs(t, wrapped, store.ErrStale)

	assert.ErrorIs(t, fromStore(OpPlaceOrder, store.ErrNotFound, "table 9"), ErrNotFound)
	assert.ErrorIs(t, fromStore(OpPlaceOrder, store.ErrDuplicate, "payment"), ErrConflict)
	assert.ErrorIs(t, fromStore(OpPlaceOrder, errNetwork, "order"), ErrUpstream)
}

func TestPartialCommitErrorMatchesCause(t *testing.T) {
	err := error(&PartialCommitError{
		Op:        OpSettlePayment,
		OrderID:   "ORD-1",
		Committed: []string{"payment recorded"},
		Failed:    "mark order paid and completed",
		Hint:      "payment recorded but order and table state may be stale; reconcile manually",
		Err:       fromStore(OpSettlePayment, errNetwork, "order ORD-1"),
	})

	assert.ErrorIs(t, err, ErrPartialCommit)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, errNetwork)
	assert.NotErrorIs(t, err, ErrConflict)

	var partial *PartialCommitError
	assert.True(t, errors.As(err, &partial))
	assert.Contains(t, err.Error(), "reconcile manually")
}
