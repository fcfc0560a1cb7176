package controllers

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type OrderController struct {
	Store     store.Store
	Lifecycle *services.OrderLifecycle
}

func NewOrderController(s store.Store, lifecycle *services.OrderLifecycle) *OrderController {
	return &OrderController{Store: s, Lifecycle: lifecycle}
}

// GetAllOrders -> list order terbaru dulu, ?status=all|pending|ready|served|completed
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	status := c.DefaultQuery("status", store.OrderFilterAll)
	if status != store.OrderFilterAll && !models.ValidOrderStatus(models.OrderStatus(status)) {
		utils.RespondError(c, http.StatusUnprocessableEntity, fmt.Errorf("unknown status filter %q", status))
		return
	}

	orders, err := oc.Store.ListOrders(c.Request.Context(), status)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// CreateOrder -> order baru untuk meja yang kosong
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Lifecycle.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", order)
}

// GetOrderByID -> detail order beserta item
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.Store.GetOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> pending -> ready -> served
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Lifecycle.AdvanceOrderStatus(c.Request.Context(), c.Param("order_id"), req.Status)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order is now "+string(order.Status), order)
}

// GetKitchenDisplay -> order yang belum completed, yang paling lama di atas
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	orders, err := oc.Store.ListOrders(c.Request.Context(), store.OrderFilterAll)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kitchen := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		switch o.Status {
		case models.OrderPending, models.OrderReady, models.OrderServed:
			kitchen = append(kitchen, o)
		}
	}
	sort.SliceStable(kitchen, func(i, j int) bool {
		return kitchen[i].CreatedAt.Before(kitchen[j].CreatedAt)
	})

	utils.RespondJSON(c, http.StatusOK, "Kitchen orders", kitchen)
}
