package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type DailySummary struct {
	Date             string  `json:"date"`
	TotalOrders      int     `json:"total_orders"`
	PaidOrders       int     `json:"paid_orders"`
	PendingOrders    int     `json:"pending_orders"`
	TotalRevenue     float64 `json:"total_revenue"`
	CollectedRevenue float64 `json:"collected_revenue"`
}

// Reports -> ringkasan harian dan laporan teks dari order hari ini
type Reports struct {
	store    store.Store
	location *time.Location
	now      func() time.Time
}

func NewReports(s store.Store, loc *time.Location) *Reports {
	if loc == nil {
		loc = time.Local
	}
	return &Reports{store: s, location: loc, now: time.Now}
}

// todayOrders -> order yang dibuat hari ini (zona waktu restoran), urut dari yang terbaru
func (r *Reports) todayOrders(ctx context.Context) ([]models.Order, time.Time, error) {
	now := r.now().In(r.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.location)
	end := start.AddDate(0, 0, 1)

	orders, err := r.store.ListOrders(ctx, store.OrderFilterAll)
	if err != nil {
		return nil, start, wrapError("report", ErrUpstream, err, "cannot read orders")
	}

	today := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			today = append(today, o)
		}
	}
	return today, start, nil
}

func (r *Reports) DailySummary(ctx context.Context) (*DailySummary, error) {
	orders, day, err := r.todayOrders(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{Date: day.Format("2006-01-02"), TotalOrders: len(orders)}
	var total, collected int64
	for _, o := range orders {
		total += models.Cents(o.TotalAmount)
		if o.PaymentStatus == models.PaymentPaid {
			summary.PaidOrders++
			collected += models.Cents(o.TotalAmount)
		}
	}
	summary.PendingOrders = summary.TotalOrders - summary.PaidOrders
	summary.TotalRevenue = float64(total) / 100
	summary.CollectedRevenue = float64(collected) / 100
	return summary, nil
}

// DailyReport -> laporan teks untuk diunduh, nama file report-YYYY-MM-DD.txt
func (r *Reports) DailyReport(ctx context.Context) (filename, body string, err error) {
	orders, day, err := r.todayOrders(ctx)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Daily Report - %s\n", day.Format("Mon Jan 02 2006"))
	b.WriteString(strings.Repeat("=", 30) + "\n\n")

	var total int64
	for i, o := range orders {
		fmt.Fprintf(&b, "%d. Order %s - Table %s\n", i+1, models.ShortID(o.OrderID), o.TableNo)
		fmt.Fprintf(&b, "   Status: %s | Payment: %s\n", o.Status, o.PaymentStatus)
		fmt.Fprintf(&b, "   Amount: %s\n\n", utils.FormatCurrency(o.TotalAmount))
		total += models.Cents(o.TotalAmount)
	}

	fmt.Fprintf(&b, "\nTotal Orders: %d\n", len(orders))
	fmt.Fprintf(&b, "Total Revenue: %s\n", utils.FormatCurrency(float64(total)/100))

	return "report-" + day.Format("2006-01-02") + ".txt", b.String(), nil
}
