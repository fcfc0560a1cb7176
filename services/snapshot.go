package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
)

const opSnapshot = "snapshot"

// Snapshot is a point-in-time read of every list the front end renders.
// The four lists are read concurrently and are not a transactional view.
type Snapshot struct {
	Version  uint64            `json:"version"`
	Digest   string            `json:"digest"`
	TakenAt  time.Time         `json:"taken_at"`
	Tables   []models.Table    `json:"tables"`
	Menu     []models.MenuItem `json:"menu"`
	Orders   []models.Order    `json:"orders"`
	Payments []models.Payment  `json:"payments"`
}

// Snapshotter takes snapshots and numbers them. The version only moves when
// the content differs from the previous snapshot, so a client can compare
// versions instead of payloads.
type Snapshotter struct {
	store store.Store

	mutex      sync.Mutex
	version    uint64
	lastDigest string
}

func NewSnapshotter(s store.Store) *Snapshotter {
	return &Snapshotter{store: s}
}

func (s *Snapshotter) Take(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Tables, err = s.store.ListTables(gctx)
		return wrapRead(err, "tables")
	})
	g.Go(func() (err error) {
		snap.Menu, err = s.store.ListMenuItems(gctx)
		return wrapRead(err, "menu")
	})
	g.Go(func() (err error) {
		snap.Orders, err = s.store.ListOrders(gctx, store.OrderFilterAll)
		return wrapRead(err, "orders")
	})
	g.Go(func() (err error) {
		snap.Payments, err = s.store.ListPayments(gctx)
		return wrapRead(err, "payments")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	digest, err := contentDigest(snap)
	if err != nil {
		return nil, wrapError(opSnapshot, ErrUpstream, err, "cannot digest snapshot")
	}

	s.mutex.Lock()
	if digest != s.lastDigest {
		s.version++
		s.lastDigest = digest
	}
	snap.Version = s.version
	s.mutex.Unlock()

	snap.Digest = digest
	snap.TakenAt = time.Now().UTC()
	return snap, nil
}

// Version -> versi snapshot terakhir
func (s *Snapshotter) Version() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.version
}

func wrapRead(err error, what string) error {
	if err == nil {
		return nil
	}
	return wrapError(opSnapshot, ErrUpstream, err, "cannot read %s", what)
}

func contentDigest(snap *Snapshot) (string, error) {
	body, err := json.Marshal(struct {
		Tables   []models.Table
		Menu     []models.MenuItem
		Orders   []models.Order
		Payments []models.Payment
	}{snap.Tables, snap.Menu, snap.Orders, snap.Payments})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
