package utils

import (
	"fmt"
	"math"
	"strings"
)

const CurrencySymbol = "₹"

// FormatAmount formats an amount with thousands separators and 2 decimals.
// Example: 1250.5 -> "1,250.50"
func FormatAmount(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	formatted := fmt.Sprintf("%.2f", math.Round(amount*100)/100)
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	// Tambahkan pemisah ribuan
	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return sign + strings.Join(groups, ",") + "." + decimalPart
}

// FormatCurrency -> "₹1,250.50"
func FormatCurrency(amount float64) string {
	return CurrencySymbol + FormatAmount(amount)
}
