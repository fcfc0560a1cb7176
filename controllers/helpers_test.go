package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// flakyStore -> UpdateTable gagal selama failTables bernilai true
type flakyStore struct {
	store.Store
	failTables atomic.Bool
}

func (f *flakyStore) UpdateTable(ctx context.Context, no string, g *store.TableGuard, p store.TablePatch) (*models.Table, error) {
	if f.failTables.Load() {
		return nil, errors.New("connection reset by peer")
	}
	return f.Store.UpdateTable(ctx, no, g, p)
}

type testEnv struct {
	db      *gorm.DB
	store   *store.GormStore
	flaky   *flakyStore
	hub     *kds.Hub
	metrics *services.MetricsRecorder
	tokens  *utils.TokenIssuer
	router  *gin.Engine
	ctx     context.Context
}

// setupTestEnv -> sqlite in-memory, meja 1..3, dan semua route controller
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)

	st := store.NewGormStore(db)
	env := &testEnv{
		db:      db,
		store:   st,
		flaky:   &flakyStore{Store: st},
		hub:     kds.NewHub(),
		metrics: services.NewMetricsRecorder(),
		tokens:  utils.NewTokenIssuer("test-secret", time.Hour),
		ctx:     context.Background(),
	}
	for _, no := range []string{"1", "2", "3"} {
		_, err := st.InsertTable(env.ctx, &models.Table{TableNo: no})
		require.NoError(t, err)
	}

	lifecycle := services.NewOrderLifecycle(env.flaky, env.hub, env.metrics)
	snapshots := services.NewSnapshotter(st)

	tableCtrl := controllers.NewTableController(st, lifecycle, env.hub)
	menuCtrl := controllers.NewMenuController(st)
	orderCtrl := controllers.NewOrderController(st, lifecycle)
	paymentCtrl := controllers.NewPaymentController(st, lifecycle)
	receiptCtrl := controllers.NewReceiptController(st, "Test Kitchen")
	userCtrl := controllers.NewUserController(db, env.tokens)
	adminCtrl := controllers.NewAdminController(st, snapshots,
		services.NewSheetMirror(st, "", time.Second),
		services.NewReconciler(st, snapshots),
		services.NewReports(st, time.UTC),
		env.metrics, env.hub)

	r := gin.New()
	r.POST("/login", userCtrl.Login)
	r.POST("/api/users", userCtrl.Register)
	r.POST("/api/logout", userCtrl.Logout)

	r.GET("/api/tables", tableCtrl.GetAllTables)
	r.POST("/api/tables", tableCtrl.CreateTable)
	r.GET("/api/tables/:table_no", tableCtrl.GetTableByNo)
	r.POST("/api/tables/:table_no/transfer", tableCtrl.TransferTable)

	r.GET("/api/menu", menuCtrl.GetAllMenus)
	r.POST("/api/menu", menuCtrl.CreateMenu)
	r.PATCH("/api/menu/:item_id", menuCtrl.UpdateMenu)

	r.GET("/api/orders", orderCtrl.GetAllOrders)
	r.POST("/api/orders", orderCtrl.CreateOrder)
	r.GET("/api/orders/:order_id", orderCtrl.GetOrderByID)
	r.PATCH("/api/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	r.GET("/api/orders/:order_id/receipt", receiptCtrl.GenerateReceipt)
	r.GET("/api/kitchen/orders", orderCtrl.GetKitchenDisplay)

	r.GET("/api/payments", paymentCtrl.GetAllPayments)
	r.POST("/api/payments", func(c *gin.Context) {
		if name := c.GetHeader("X-Test-Cashier"); name != "" {
			c.Set("name", name)
		}
		paymentCtrl.CreatePayment(c)
	})

	r.GET("/api/snapshot", adminCtrl.GetSnapshot)
	r.POST("/api/sync", adminCtrl.SyncNow)
	r.GET("/api/reconcile", adminCtrl.GetReconcileReport)
	r.POST("/api/reconcile", adminCtrl.RepairDrift)
	r.GET("/api/reports/daily", adminCtrl.GetDailySummary)
	r.GET("/api/reports/daily.txt", adminCtrl.DownloadDailyReport)
	r.GET("/api/settings", adminCtrl.GetSettings)
	r.PUT("/api/settings", adminCtrl.UpdateSettings)
	r.GET("/api/metrics", adminCtrl.GetMetrics)

	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.doWithHeader(t, method, path, body, nil)
}

func (e *testEnv) doWithHeader(t *testing.T, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// placeOrder -> order 2x100 + 1x50 = 250 di meja tableNo
func (e *testEnv) placeOrder(t *testing.T, tableNo string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/orders", gin.H{
		"table_no":      tableNo,
		"customer_name": "Asha",
		"items": []gin.H{
			{"name": "Paneer Tikka", "price": 100, "quantity": 2},
			{"name": "Lassi", "price": 50, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w).data()["order_id"].(string)
}

func (e *testEnv) table(t *testing.T, no string) *models.Table {
	t.Helper()
	table, err := e.store.GetTable(e.ctx, no)
	require.NoError(t, err)
	return table
}

type response map[string]interface{}

func decode(t *testing.T, w *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func (r response) data() map[string]interface{} {
	data, _ := r["data"].(map[string]interface{})
	return data
}

func (r response) list() []interface{} {
	list, _ := r["data"].([]interface{})
	return list
}
