package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/receipt"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type ReceiptController struct {
	Store       store.Store
	DefaultName string
}

func NewReceiptController(s store.Store, defaultName string) *ReceiptController {
	return &ReceiptController{Store: s, DefaultName: defaultName}
}

// GenerateReceipt -> struk PDF untuk order yang sudah dibayar
func (rc *ReceiptController) GenerateReceipt(c *gin.Context) {
	ctx := c.Request.Context()
	orderID := c.Param("order_id")

	order, err := rc.Store.GetOrder(ctx, orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	payment, err := rc.Store.FindPaymentByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(c, http.StatusConflict, receipt.ErrNotPaid)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	rcpt, err := receipt.Build(rc.restaurantName(c), *order, payment, time.Now())
	if err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	var buf bytes.Buffer
	if err := rcpt.WritePDF(&buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Receipt %s generated for order %s", rcpt.Number, models.ShortID(orderID))
	c.Header("Content-Disposition", `attachment; filename="`+rcpt.FileName()+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (rc *ReceiptController) restaurantName(c *gin.Context) string {
	name, err := rc.Store.GetSetting(c.Request.Context(), models.SettingRestaurantName)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.ErrorLogger.Warnf("receipt: cannot read restaurant name: %v", err)
	}
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return rc.DefaultName
}
