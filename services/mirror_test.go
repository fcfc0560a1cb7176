package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/models"
)

type webhookRecorder struct {
	mutex    sync.Mutex
	payloads []map[string]interface{}
	reply    string
	status   int
}

func newWebhook(t *testing.T) (*webhookRecorder, *httptest.Server) {
	rec := &webhookRecorder{reply: `{"success":true,"message":"Data synced successfully"}`, status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			rec.mutex.Lock()
			rec.payloads = append(rec.payloads, body)
			rec.mutex.Unlock()
		}
		w.WriteHeader(rec.status)
		w.Write([]byte(rec.reply))
	}))
	t.Cleanup(srv.Close)
	return rec, srv
}

func (w *webhookRecorder) count() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.payloads)
}

func TestMirrorPushesFullSnapshot(t *testing.T) {
	f := newFixture(t)
	order := f.place(t, "5")
	_, err := f.life.SettlePayment(f.ctx, SettleInput{OrderID: order.OrderID, Amount: 250, Method: "cash"})
	require.NoError(t, err)

	hook, srv := newWebhook(t)
	mirror := NewSheetMirror(f.db, srv.URL, time.Second)

	snap, err := NewSnapshotter(f.db).Take(f.ctx)
	require.NoError(t, err)
	result, err := mirror.Push(f.ctx, snap)
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Equal(t, 1, hook.count())
	body := hook.payloads[0]
	assert.Equal(t, "sync", body["action"])
	assert.Len(t, body["tables"], 3)
	assert.Len(t, body["menu"], 0)
	assert.Len(t, body["payments"], 1)

	orders := body["orders"].([]interface{})
	require.Len(t, orders, 1)
	row := orders[0].(map[string]interface{})
	assert.Equal(t, order.OrderID, row["order_id"])
	assert.NotEmpty(t, row["timestamp"])
	assert.Equal(t, row["created_at"], row["timestamp"])
}

func TestMirrorWebhookSettingWins(t *testing.T) {
	f := newFixture(t)
	hook, srv := newWebhook(t)

	mirror := NewSheetMirror(f.db, "http://127.0.0.1:1/unused", time.Second)
	require.NoError(t, f.db.PutSetting(f.ctx, models.SettingSheetsWebhook, srv.URL))
	assert.Equal(t, srv.URL, mirror.WebhookURL(f.ctx))

	snap, err := NewSnapshotter(f.db).Take(f.ctx)
	require.NoError(t, err)
	_, err = mirror.Push(f.ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, hook.count())
}

func TestMirrorFailures(t *testing.T) {
	f := newFixture(t)
	snap, err := NewSnapshotter(f.db).Take(f.ctx)
	require.NoError(t, err)

	_, err = NewSheetMirror(f.db, "", time.Second).Push(f.ctx, snap)
	assert.ErrorIs(t, err, ErrMirrorNotConfigured)
	assert.ErrorIs(t, err, ErrValidation)

	hook, srv := newWebhook(t)
	hook.status = http.StatusInternalServerError
	_, err = NewSheetMirror(f.db, srv.URL, time.Second).Push(f.ctx, snap)
	assert.ErrorIs(t, err, ErrUpstream)

	hook.status = http.StatusOK
	hook.reply = `{"success":false,"message":"sheet locked"}`
	result, err := NewSheetMirror(f.db, srv.URL, time.Second).Push(f.ctx, snap)
	assert.ErrorIs(t, err, ErrUpstream)
	require.NotNil(t, result)
	assert.Equal(t, "sheet locked", result.Message)
}

func TestSnapshotPollerBroadcastsAndSyncs(t *testing.T) {
	f := newFixture(t)
	hook, srv := newWebhook(t)

	snaps := NewSnapshotter(f.db)
	poller := NewSnapshotPoller(snaps, NewSheetMirror(f.db, srv.URL, time.Second), f.notifier)
	poller.AutoSync = true

	changed, err := poller.Poll(f.ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = poller.Poll(f.ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	f.place(t, "3")
	changed, err = poller.Poll(f.ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, 2, f.notifier.count("dashboard"))
	require.Eventually(t, func() bool { return hook.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestSnapshotPollerSyncsToWebhookFromSettings(t *testing.T) {
	f := newFixture(t)
	hook, srv := newWebhook(t)

	poller := NewSnapshotPoller(NewSnapshotter(f.db), NewSheetMirror(f.db, "", time.Second), f.notifier)

	// belum ada webhook: tidak ada yang dikirim
	changed, err := poller.Poll(f.ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	// admin mengisi webhook lewat setting, perubahan berikutnya ikut tersinkron
	require.NoError(t, f.db.PutSetting(f.ctx, models.SettingSheetsWebhook, srv.URL))
	f.place(t, "3")
	changed, err = poller.Poll(f.ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Eventually(t, func() bool { return hook.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSnapshotPollerAutoSyncOff(t *testing.T) {
	f := newFixture(t)
	hook, srv := newWebhook(t)

	poller := NewSnapshotPoller(NewSnapshotter(f.db), NewSheetMirror(f.db, srv.URL, time.Second), f.notifier)
	poller.AutoSync = false

	changed, err := poller.Poll(f.ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, f.notifier.count("dashboard"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, hook.count())
}

func TestSnapshotPollerStartStop(t *testing.T) {
	f := newFixture(t)
	poller := NewSnapshotPoller(NewSnapshotter(f.db), nil, f.notifier)
	poller.Interval = 10 * time.Millisecond

	poller.Start()
	require.Eventually(t, func() bool { return f.notifier.count("dashboard") >= 1 }, time.Second, 5*time.Millisecond)
	poller.Stop()
	poller.Stop()
}
