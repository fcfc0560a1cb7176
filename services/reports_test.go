package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/models"
)

func TestDailySummaryAndReport(t *testing.T) {
	f := newFixture(t)
	paid := f.place(t, "3")
	f.place(t, "5", LineInput{Name: "Chai", Price: 20.5, Quantity: 2})
	_, err := f.life.SettlePayment(f.ctx, SettleInput{OrderID: paid.OrderID, Amount: 250, Method: "cash"})
	require.NoError(t, err)

	// yesterday's order does not count
	_, err = f.db.InsertOrder(f.ctx, &models.Order{
		TableNo: "7", CustomerName: "Old", Status: models.OrderPending, PaymentStatus: models.PaymentPending,
		Items: []models.OrderLine{{Name: "Chai", Price: 20, Quantity: 1}}, TotalAmount: 20,
	})
	require.NoError(t, err)
	require.NoError(t, f.db.DB.Model(&models.Order{}).Where("table_no = ?", "7").
		Update("created_at", time.Now().UTC().Add(-48*time.Hour)).Error)

	reports := NewReports(f.db, time.UTC)
	summary, err := reports.DailySummary(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), summary.Date)
	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 1, summary.PaidOrders)
	assert.Equal(t, 1, summary.PendingOrders)
	assert.Equal(t, 291.0, summary.TotalRevenue)
	assert.Equal(t, 250.0, summary.CollectedRevenue)

	name, body, err := reports.DailyReport(f.ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "report-"))
	assert.True(t, strings.HasSuffix(name, ".txt"))
	assert.Contains(t, body, "Daily Report - ")
	assert.Contains(t, body, "Order "+models.ShortID(paid.OrderID)+" - Table 3")
	assert.Contains(t, body, "Status: completed | Payment: paid")
	assert.Contains(t, body, "Total Orders: 2")
	assert.Contains(t, body, "Total Revenue: ₹291.00")
}
