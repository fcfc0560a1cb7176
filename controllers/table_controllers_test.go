package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/models"
)

func TestGetAllTables(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/tables", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "List of tables", resp["message"])
	tables := resp.list()
	require.Len(t, tables, 3)
	assert.Equal(t, "1", tables[0].(map[string]interface{})["table_no"])
	assert.Equal(t, "vacant", tables[0].(map[string]interface{})["status"])
}

func TestCreateTable(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/tables", gin.H{"table_no": "12", "capacity": 6})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w).data()
	assert.Equal(t, "vacant", data["status"])
	assert.EqualValues(t, 6, data["capacity"])
	assert.Nil(t, data["current_order_id"])

	// nomor meja sudah ada
	w = env.do(t, http.MethodPost, "/api/tables", gin.H{"table_no": "12"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/tables", gin.H{"table_no": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/api/tables", gin.H{"capacity": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTableByNo(t *testing.T) {
	env := setupTestEnv(t)
	orderID := env.placeOrder(t, "2")

	w := env.do(t, http.MethodGet, "/api/tables/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).data()
	assert.Equal(t, "occupied", data["status"])
	assert.Equal(t, orderID, data["current_order_id"])

	w = env.do(t, http.MethodGet, "/api/tables/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["status"])
}

func TestTransferTable(t *testing.T) {
	env := setupTestEnv(t)
	orderID := env.placeOrder(t, "1")

	w := env.do(t, http.MethodPost, "/api/tables/1/transfer", gin.H{"order_id": orderID, "to_table": "3"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "3", decode(t, w).data()["table_no"])

	assert.Equal(t, models.TableVacant, env.table(t, "1").Status)
	assert.Equal(t, orderID, *env.table(t, "3").CurrentOrderID)
}

func TestTransferTableRejected(t *testing.T) {
	env := setupTestEnv(t)
	first := env.placeOrder(t, "1")
	env.placeOrder(t, "2")

	tests := []struct {
		name string
		path string
		body gin.H
		code int
	}{
		{"target occupied", "/api/tables/1/transfer", gin.H{"order_id": first, "to_table": "2"}, http.StatusConflict},
		{"same table", "/api/tables/1/transfer", gin.H{"order_id": first, "to_table": "1"}, http.StatusUnprocessableEntity},
		{"unknown target", "/api/tables/1/transfer", gin.H{"order_id": first, "to_table": "99"}, http.StatusNotFound},
		{"wrong source", "/api/tables/3/transfer", gin.H{"order_id": first, "to_table": "3"}, http.StatusUnprocessableEntity},
		{"missing body", "/api/tables/1/transfer", gin.H{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	// tidak ada yang berubah
	assert.Equal(t, first, *env.table(t, "1").CurrentOrderID)
	assert.Equal(t, models.TableVacant, env.table(t, "3").Status)
}
