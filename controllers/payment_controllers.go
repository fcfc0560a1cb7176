package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type PaymentController struct {
	Store     store.Store
	Lifecycle *services.OrderLifecycle
}

func NewPaymentController(s store.Store, lifecycle *services.OrderLifecycle) *PaymentController {
	return &PaymentController{Store: s, Lifecycle: lifecycle}
}

// GetAllPayments -> pembayaran terbaru dulu
func (pc *PaymentController) GetAllPayments(c *gin.Context) {
	payments, err := pc.Store.ListPayments(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All payments", payments)
}

// CreatePayment -> settle order: catat payment, order completed, meja kosong
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var body services.SettleInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// kasir diambil dari token jika tidak dikirim
	if strings.TrimSpace(body.Cashier) == "" {
		body.Cashier = c.GetString("name")
	}

	payment, err := pc.Lifecycle.SettlePayment(c.Request.Context(), body)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Payment recorded, "+utils.FormatCurrency(payment.Amount), payment)
}
