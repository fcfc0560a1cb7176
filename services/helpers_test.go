package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
)

var errNetwork = errors.New("connection reset by peer")

// faultyStore wraps a real store and can fail or intercept chosen calls.
type faultyStore struct {
	store.Store

	mutex  sync.Mutex
	fail   map[string]error
	before map[string]func()
}

func newFaultyStore(inner store.Store) *faultyStore {
	return &faultyStore{Store: inner, fail: map[string]error{}, before: map[string]func(){}}
}

func (f *faultyStore) failOn(method string, err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.fail[method] = err
}

// beforeOnce runs fn the next time method is called, ahead of the real call.
func (f *faultyStore) beforeOnce(method string, fn func()) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.before[method] = fn
}

func (f *faultyStore) reset() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.fail = map[string]error{}
	f.before = map[string]func(){}
}

func (f *faultyStore) intercept(method string) error {
	f.mutex.Lock()
	hook := f.before[method]
	delete(f.before, method)
	err := f.fail[method]
	f.mutex.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (f *faultyStore) InsertOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	if err := f.intercept("InsertOrder"); err != nil {
		return nil, err
	}
	return f.Store.InsertOrder(ctx, o)
}

func (f *faultyStore) UpdateOrder(ctx context.Context, id string, g *store.OrderGuard, p store.OrderPatch) (*models.Order, error) {
	if err := f.intercept("UpdateOrder"); err != nil {
		return nil, err
	}
	return f.Store.UpdateOrder(ctx, id, g, p)
}

func (f *faultyStore) UpdateTable(ctx context.Context, no string, g *store.TableGuard, p store.TablePatch) (*models.Table, error) {
	if err := f.intercept("UpdateTable"); err != nil {
		return nil, err
	}
	return f.Store.UpdateTable(ctx, no, g, p)
}

func (f *faultyStore) InsertPayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	if err := f.intercept("InsertPayment"); err != nil {
		return nil, err
	}
	return f.Store.InsertPayment(ctx, p)
}

func (f *faultyStore) AppendStep(ctx context.Context, s *models.LifecycleStep) error {
	if err := f.intercept("AppendStep"); err != nil {
		return err
	}
	return f.Store.AppendStep(ctx, s)
}

func (f *faultyStore) ListTables(ctx context.Context) ([]models.Table, error) {
	if err := f.intercept("ListTables"); err != nil {
		return nil, err
	}
	return f.Store.ListTables(ctx)
}

type event struct {
	kind string
	key  string
}

type recordingNotifier struct {
	mutex  sync.Mutex
	events []event
}

func (n *recordingNotifier) add(kind, key string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.events = append(n.events, event{kind, key})
}

func (n *recordingNotifier) BroadcastOrderUpdate(o models.Order) { n.add("order", o.OrderID) }
func (n *recordingNotifier) BroadcastTableUpdate(t models.Table) { n.add("table", t.TableNo) }
func (n *recordingNotifier) BroadcastPaymentSuccess(p models.Payment, o models.Order) {
	n.add("payment", o.OrderID)
}
func (n *recordingNotifier) BroadcastStaffNotification(msg string) { n.add("staff", msg) }
func (n *recordingNotifier) BroadcastDashboardUpdate(data interface{}) {
	n.add("dashboard", "")
}

func (n *recordingNotifier) count(kind string) int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	c := 0
	for _, e := range n.events {
		if e.kind == kind {
			c++
		}
	}
	return c
}

type fixture struct {
	db       *store.GormStore
	faulty   *faultyStore
	life     *OrderLifecycle
	notifier *recordingNotifier
	metrics  *MetricsRecorder
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)

	db := store.NewGormStore(gdb)
	faulty := newFaultyStore(db)
	notifier := &recordingNotifier{}
	metrics := NewMetricsRecorder()

	f := &fixture{
		db:       db,
		faulty:   faulty,
		life:     NewOrderLifecycle(faulty, notifier, metrics),
		notifier: notifier,
		metrics:  metrics,
		ctx:      context.Background(),
	}
	for _, no := range []string{"3", "5", "7"} {
		_, err := db.InsertTable(f.ctx, &models.Table{TableNo: no})
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) addMenuItem(t *testing.T, name string, price float64, available bool) *models.MenuItem {
	t.Helper()
	item, err := f.db.InsertMenuItem(f.ctx, &models.MenuItem{Name: name, Category: "Mains", Price: price, Available: available})
	require.NoError(t, err)
	return item
}

func (f *fixture) place(t *testing.T, tableNo string, lines ...LineInput) *models.Order {
	t.Helper()
	if len(lines) == 0 {
		lines = []LineInput{{Name: "Paneer Tikka", Price: 100, Quantity: 2}, {Name: "Lassi", Price: 50, Quantity: 1}}
	}
	order, err := f.life.PlaceOrder(f.ctx, PlaceOrderInput{TableNo: tableNo, Items: lines})
	require.NoError(t, err)
	return order
}

func (f *fixture) table(t *testing.T, no string) *models.Table {
	t.Helper()
	table, err := f.db.GetTable(f.ctx, no)
	require.NoError(t, err)
	return table
}

func (f *fixture) order(t *testing.T, id string) *models.Order {
	t.Helper()
	order, err := f.db.GetOrder(f.ctx, id)
	require.NoError(t, err)
	return order
}

// assertOccupancyInvariant: a table is occupied iff it references an order
// that exists and is not completed.
func (f *fixture) assertOccupancyInvariant(t *testing.T) {
	t.Helper()
	tables, err := f.db.ListTables(f.ctx)
	require.NoError(t, err)
	for _, table := range tables {
		if table.CurrentOrderID == nil {
			require.Equal(t, models.TableVacant, table.Status, "table %s", table.TableNo)
			continue
		}
		require.Equal(t, models.TableOccupied, table.Status, "table %s", table.TableNo)
		order, err := f.db.GetOrder(f.ctx, *table.CurrentOrderID)
		require.NoError(t, err, "table %s", table.TableNo)
		require.NotEqual(t, models.OrderCompleted, order.Status, "table %s", table.TableNo)
	}
}
