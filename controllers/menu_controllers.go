package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type MenuController struct {
	Store store.Store
}

func NewMenuController(s store.Store) *MenuController {
	return &MenuController{Store: s}
}

type menuRequest struct {
	Name           *string  `json:"item_name"`
	Category       *string  `json:"category"`
	Price          *float64 `json:"price"`
	Description    *string  `json:"description"`
	KitchenStation *string  `json:"kitchen_station"`
	PrepTime       *int     `json:"prep_time"`
	Available      *bool    `json:"available"`
}

func (r menuRequest) validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("item_name cannot be empty")
	}
	if r.Price != nil && (!models.ValidUnitPrice(*r.Price) || !models.ValidUnitPrice(models.RoundCents(*r.Price))) {
		return fmt.Errorf("price must be greater than 0 and at most %s", utils.FormatAmount(models.MaxUnitPrice))
	}
	if r.PrepTime != nil && *r.PrepTime < 0 {
		return errors.New("prep_time cannot be negative")
	}
	return nil
}

// GetAllMenus -> menu urut kategori lalu nama
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	items, err := mc.Store.ListMenuItems(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", items)
}

// CreateMenu -> item baru, available kecuali dikirim false
func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Name == nil || req.Category == nil || req.Price == nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("item_name, category and price are required"))
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	item := models.MenuItem{
		Name:      strings.TrimSpace(*req.Name),
		Category:  strings.TrimSpace(*req.Category),
		Price:     models.RoundCents(*req.Price),
		Available: true,
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.KitchenStation != nil {
		item.KitchenStation = *req.KitchenStation
	}
	if req.PrepTime != nil {
		item.PrepTime = *req.PrepTime
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	created, err := mc.Store.InsertMenuItem(c.Request.Context(), &item)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Menu item created: %s (%s)", created.Name, created.ItemID)
	utils.RespondJSON(c, http.StatusCreated, "Menu created successfully", created)
}

// UpdateMenu -> hanya field yang dikirim yang diubah
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}
	if req.Price != nil {
		rounded := models.RoundCents(*req.Price)
		req.Price = &rounded
	}

	item, err := mc.Store.UpdateMenuItem(c.Request.Context(), c.Param("item_id"), store.MenuItemPatch{
		Name:           req.Name,
		Category:       req.Category,
		Price:          req.Price,
		Description:    req.Description,
		KitchenStation: req.KitchenStation,
		PrepTime:       req.PrepTime,
		Available:      req.Available,
	})
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu updated successfully", item)
}
