package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-pos/utils"
)

const minPollTimeout = 5 * time.Second

type DashboardNotifier interface {
	BroadcastDashboardUpdate(data interface{})
}

// SnapshotPoller mengambil snapshot berkala. Jika isinya berubah, layar
// dashboard diberi tahu dan spreadsheet disinkronkan bila webhook terisi
// (config atau setting google_sheets_webhook). AutoSync=false mematikannya.
type SnapshotPoller struct {
	Snapshots *Snapshotter
	Mirror    *SheetMirror
	Notify    DashboardNotifier
	AutoSync  bool
	Interval  time.Duration
	StopChan  chan struct{}

	stopOnce    sync.Once
	lastVersion uint64
}

func NewSnapshotPoller(snapshots *Snapshotter, mirror *SheetMirror, notify DashboardNotifier) *SnapshotPoller {
	return &SnapshotPoller{
		Snapshots: snapshots,
		Mirror:    mirror,
		Notify:    notify,
		AutoSync:  true,
		Interval:  10 * time.Second,
		StopChan:  make(chan struct{}),
	}
}

func (p *SnapshotPoller) Start() {
	go func() {
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), p.pollTimeout())
				if _, err := p.Poll(ctx); err != nil {
					utils.ErrorLogger.Warnf("snapshot poll failed: %v", err)
				}
				cancel()
			case <-p.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Infof("Snapshot poller started (every %s)", p.Interval)
}

func (p *SnapshotPoller) Stop() {
	p.stopOnce.Do(func() { close(p.StopChan) })
}

func (p *SnapshotPoller) pollTimeout() time.Duration {
	if p.Interval < minPollTimeout {
		return minPollTimeout
	}
	return p.Interval
}

// Poll -> satu putaran; changed bernilai true jika versi snapshot bergerak
func (p *SnapshotPoller) Poll(ctx context.Context) (changed bool, err error) {
	snap, err := p.Snapshots.Take(ctx)
	if err != nil {
		return false, err
	}
	if snap.Version == p.lastVersion {
		return false, nil
	}
	p.lastVersion = snap.Version

	if p.Notify != nil {
		p.Notify.BroadcastDashboardUpdate(map[string]interface{}{
			"version":  snap.Version,
			"digest":   snap.Digest,
			"taken_at": snap.TakenAt,
		})
	}
	if p.AutoSync && p.Mirror != nil && p.Mirror.WebhookURL(ctx) != "" {
		p.Mirror.PushAsync(snap)
	}
	return true, nil
}
