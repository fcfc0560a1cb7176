package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Deps -> semua komponen yang dipakai controller
type Deps struct {
	Config     config.Config
	DB         *gorm.DB
	Store      store.Store
	Hub        *kds.Hub
	Lifecycle  *services.OrderLifecycle
	Snapshots  *services.Snapshotter
	Mirror     *services.SheetMirror
	Reconciler *services.Reconciler
	Reports    *services.Reports
	Metrics    *services.MetricsRecorder
	Tokens     *utils.TokenIssuer
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.Config.HTTP.CORSOrigins))
	if d.Config.HTTP.RateLimitRPS > 0 {
		limiter := middlewares.NewRateLimiter(rate.Limit(d.Config.HTTP.RateLimitRPS), d.Config.HTTP.RateLimitRPS)
		r.Use(limiter.RateLimit())
	}

	auth := middlewares.NewAuth(d.Tokens, d.Config.Auth.Enabled)

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(d.DB, d.Tokens)
	tableCtrl := controllers.NewTableController(d.Store, d.Lifecycle, d.Hub)
	menuCtrl := controllers.NewMenuController(d.Store)
	orderCtrl := controllers.NewOrderController(d.Store, d.Lifecycle)
	paymentCtrl := controllers.NewPaymentController(d.Store, d.Lifecycle)
	receiptCtrl := controllers.NewReceiptController(d.Store, d.Config.RestaurantName)
	kdsCtrl := controllers.NewKDSController(d.Hub)
	adminCtrl := controllers.NewAdminController(d.Store, d.Snapshots, d.Mirror, d.Reconciler, d.Reports, d.Metrics, d.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/login", middlewares.NewStrictRateLimiter().RateLimit(), userCtrl.Login)

	// Endpoint KDS WebSocket
	r.GET("/ws", auth.WebSocketAuthMiddleware(), kdsCtrl.KDSHandler)

	// ----------------------------------------------------------------
	//                      API ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(auth.AuthMiddleware())

	cashier := auth.RequireRole(kds.RoleCashier)
	kitchen := auth.RequireRole(kds.RoleKitchen, kds.RoleCashier)
	admin := auth.RequireRole()

	api.GET("/profile", userCtrl.GetProfile)
	api.POST("/logout", userCtrl.Logout)
	api.GET("/users", admin, userCtrl.GetAllUsers)
	api.POST("/users", admin, userCtrl.Register)

	// TABLE
	api.GET("/tables", tableCtrl.GetAllTables)
	api.POST("/tables", admin, tableCtrl.CreateTable)
	api.GET("/tables/:table_no", tableCtrl.GetTableByNo)
	api.POST("/tables/:table_no/transfer", cashier, tableCtrl.TransferTable)

	// MENU
	api.GET("/menu", menuCtrl.GetAllMenus)
	api.POST("/menu", admin, menuCtrl.CreateMenu)
	api.PATCH("/menu/:item_id", admin, menuCtrl.UpdateMenu)

	// ORDER
	api.GET("/orders", orderCtrl.GetAllOrders)
	api.POST("/orders", cashier, orderCtrl.CreateOrder)
	api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	api.PATCH("/orders/:order_id/status", kitchen, orderCtrl.UpdateOrderStatus)
	api.GET("/kitchen/orders", kitchen, orderCtrl.GetKitchenDisplay)

	// PAYMENT & RECEIPT
	payments := api.Group("")
	payments.Use(middlewares.PaymentSecurityHeaders(), middlewares.LogPaymentRequest())
	{
		payments.GET("/payments", cashier, paymentCtrl.GetAllPayments)
		payments.POST("/payments", cashier, paymentCtrl.CreatePayment)
		payments.GET("/orders/:order_id/receipt", cashier, receiptCtrl.GenerateReceipt)
	}

	// SNAPSHOT, SYNC, RECONCILE
	api.GET("/snapshot", adminCtrl.GetSnapshot)
	api.POST("/sync", admin, adminCtrl.SyncNow)
	api.GET("/reconcile", admin, adminCtrl.GetReconcileReport)
	api.POST("/reconcile", admin, adminCtrl.RepairDrift)

	// REPORTS, SETTINGS, METRICS
	api.GET("/reports/daily", admin, adminCtrl.GetDailySummary)
	api.GET("/reports/daily.txt", admin, adminCtrl.DownloadDailyReport)
	api.GET("/settings", adminCtrl.GetSettings)
	api.PUT("/settings", admin, adminCtrl.UpdateSettings)
	api.GET("/metrics", admin, adminCtrl.GetMetrics)

	return r
}
