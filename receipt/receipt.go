// Package receipt menyusun struk untuk order yang sudah dibayar dan
// mencetaknya sebagai PDF ukuran kertas thermal 80mm.
package receipt

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	paperWidth  = 80.0
	margin      = 4.0
	lineHeight  = 5.0
	amountWidth = 24.0
)

var ErrNotPaid = errors.New("order has no recorded payment")

type Line struct {
	Label  string
	Amount float64
}

type Receipt struct {
	Number         string
	RestaurantName string
	PrintedAt      time.Time
	OrderID        string
	TableNo        string
	CustomerName   string
	Lines          []Line
	Total          float64
	Method         string
	Cashier        string
	PaymentID      string
}

// Build -> struk dari order dan payment-nya. Nomor struk RCP/<tanggal>/<id pendek>.
func Build(restaurantName string, order models.Order, payment *models.Payment, at time.Time) (*Receipt, error) {
	if payment == nil || payment.OrderID != order.OrderID {
		return nil, ErrNotPaid
	}

	r := &Receipt{
		Number:         fmt.Sprintf("RCP/%s/%s", payment.PaymentTime.Format("20060102"), models.ShortID(payment.PaymentID)),
		RestaurantName: restaurantName,
		PrintedAt:      at,
		OrderID:        models.ShortID(order.OrderID),
		TableNo:        order.TableNo,
		CustomerName:   order.CustomerName,
		Total:          order.TotalAmount,
		Method:         payment.Method,
		Cashier:        payment.Cashier,
		PaymentID:      payment.PaymentID,
	}
	for _, item := range order.Items {
		r.Lines = append(r.Lines, Line{
			Label:  fmt.Sprintf("%dx %s", item.Quantity, item.Name),
			Amount: item.Subtotal(),
		})
	}
	return r, nil
}

// FileName -> receipt-<id pendek>.pdf
func (r *Receipt) FileName() string {
	return "receipt-" + r.OrderID + ".pdf"
}

func money(v float64) string {
	return "Rs. " + utils.FormatAmount(v)
}

// WritePDF -> render struk ke w
func (r *Receipt) WritePDF(w io.Writer) error {
	height := 80.0 + float64(len(r.Lines))*lineHeight
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: paperWidth, Ht: height},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle("Receipt "+r.Number, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	inner := paperWidth - 2*margin

	// header
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(inner, 7, tr(r.RestaurantName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(inner, 4, r.PrintedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.CellFormat(inner, 4, "Order: "+r.OrderID, "", 1, "C", false, 0, "")
	pdf.CellFormat(inner, 4, tr("Table: "+r.TableNo+"  Customer: "+r.CustomerName), "", 1, "C", false, 0, "")
	pdf.CellFormat(inner, 4, r.Number, "B", 1, "C", false, 0, "")
	pdf.Ln(2)

	// items
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range r.Lines {
		pdf.CellFormat(inner-amountWidth, lineHeight, tr(line.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, lineHeight, money(line.Amount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(1)

	// total
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(inner-amountWidth, 6, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, 6, money(r.Total), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(inner-amountWidth, lineHeight, "Payment", "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, lineHeight, tr(r.Method), "", 1, "R", false, 0, "")
	pdf.CellFormat(inner-amountWidth, lineHeight, "Cashier", "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, lineHeight, tr(r.Cashier), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(inner, lineHeight, "Thank you!", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 6)
	pdf.CellFormat(inner, 4, "Transaction: "+r.PaymentID, "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
