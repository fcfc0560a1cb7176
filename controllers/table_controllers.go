package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type TableController struct {
	Store     store.Store
	Lifecycle *services.OrderLifecycle
	Notify    services.Notifier
}

func NewTableController(s store.Store, lifecycle *services.OrderLifecycle, notify services.Notifier) *TableController {
	return &TableController{Store: s, Lifecycle: lifecycle, Notify: notify}
}

// GetAllTables -> list meja urut table_no
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Store.ListTables(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable -> menambahkan meja baru (selalu vacant)
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNo  string `json:"table_no" binding:"required"`
		Capacity int    `json:"capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	req.TableNo = strings.TrimSpace(req.TableNo)
	if req.TableNo == "" || req.Capacity < 0 {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("table_no is required and capacity cannot be negative"))
		return
	}

	table, err := tc.Store.InsertTable(c.Request.Context(), &models.Table{
		TableNo:  req.TableNo,
		Capacity: req.Capacity,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			utils.RespondError(c, http.StatusConflict, errors.New("table "+req.TableNo+" already exists"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if tc.Notify != nil {
		tc.Notify.BroadcastTableUpdate(*table)
	}

	utils.InfoLogger.Printf("New table created: %s (capacity=%d)", table.TableNo, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetTableByNo -> detail satu meja
func (tc *TableController) GetTableByNo(c *gin.Context) {
	table, err := tc.Store.GetTable(c.Request.Context(), c.Param("table_no"))
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// TransferTable -> memindahkan order yang sedang berjalan ke meja lain
func (tc *TableController) TransferTable(c *gin.Context) {
	var req struct {
		OrderID string `json:"order_id" binding:"required"`
		ToTable string `json:"to_table" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := tc.Lifecycle.TransferTable(c.Request.Context(), req.OrderID, c.Param("table_no"), req.ToTable)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order moved to table "+order.TableNo, order)
}
