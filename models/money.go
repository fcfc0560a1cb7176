package models

import (
	"errors"
	"math"
)

// Batas nominal. Total terbesar (MaxOrderAmount) masih exact sebagai sen di float64 dan int64.
const (
	MaxUnitPrice    = 10_000_000.0
	MaxLineQuantity = 1000
	MaxOrderAmount  = 1_000_000_000_000.0
)

var ErrAmountOutOfRange = errors.New("amount out of range")

// Cents converts an amount to integer cents, rounding half away from zero.
// Callers keep amounts within MaxOrderAmount; see ValidAmount.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func RoundCents(amount float64) float64 {
	return float64(Cents(amount)) / 100
}

// ValidAmount -> bukan NaN dan |amount| <= MaxOrderAmount
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && math.Abs(amount) <= MaxOrderAmount
}

// ValidUnitPrice -> 0 < price <= MaxUnitPrice
func ValidUnitPrice(price float64) bool {
	return price > 0 && price <= MaxUnitPrice
}

// SameAmount compares two amounts to the cent. Out-of-range amounts never match.
func SameAmount(a, b float64) bool {
	if !ValidAmount(a) || !ValidAmount(b) {
		return false
	}
	return Cents(a) == Cents(b)
}
