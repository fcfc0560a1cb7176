package services

import (
	"errors"
	"sync"
	"time"
)

// LifecycleMetrics menyimpan metrik operasi order, meja dan pembayaran
type LifecycleMetrics struct {
	OrdersPlaced    int64     `json:"orders_placed"`
	StatusChanges   int64     `json:"status_changes"`
	Settlements     int64     `json:"settlements"`
	Transfers       int64     `json:"transfers"`
	Rejected        int64     `json:"rejected"`
	Conflicts       int64     `json:"conflicts"`
	PartialCommits  int64     `json:"partial_commits"`
	LastPartialAt   time.Time `json:"last_partial_at,omitempty"`
	LastPartialHint string    `json:"last_partial_hint,omitempty"`
}

// MetricsRecorder menghitung hasil setiap operasi lifecycle
type MetricsRecorder struct {
	mutex   sync.Mutex
	metrics LifecycleMetrics
}

func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

func (m *MetricsRecorder) record(op string, err error) {
	if m == nil {
		return
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var partial *PartialCommitError
	switch {
	case err == nil:
		switch op {
		case OpPlaceOrder:
			m.metrics.OrdersPlaced++
		case OpAdvanceStatus:
			m.metrics.StatusChanges++
		case OpSettlePayment:
			m.metrics.Settlements++
		case OpTransferTable:
			m.metrics.Transfers++
		}
	case errors.As(err, &partial):
		m.metrics.PartialCommits++
		m.metrics.LastPartialAt = time.Now().UTC()
		m.metrics.LastPartialHint = partial.Hint
	case errors.Is(err, ErrConflict):
		m.metrics.Conflicts++
	default:
		m.metrics.Rejected++
	}
}

// Snapshot mengembalikan salinan metrik saat ini
func (m *MetricsRecorder) Snapshot() LifecycleMetrics {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.metrics
}
