package models

import (
	"github.com/google/uuid"
)

const (
	orderIDPrefix   = "ORD-"
	paymentIDPrefix = "PAY-"
	itemIDPrefix    = "ITEM-"
)

// NewOrderID returns a time-ordered order id (UUIDv7), so ids sort by creation.
func NewOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return orderIDPrefix + id.String()
}

func NewPaymentID() string {
	return paymentIDPrefix + uuid.NewString()
}

func NewMenuItemID() string {
	return itemIDPrefix + uuid.NewString()
}

// ShortID -> 8 karakter terakhir dari id, untuk struk dan laporan.
// Bagian awal UUIDv7 adalah timestamp sehingga tidak cukup unik.
func ShortID(id string) string {
	for _, p := range []string{orderIDPrefix, paymentIDPrefix, itemIDPrefix} {
		if len(id) > len(p) && id[:len(p)] == p {
			id = id[len(p):]
			break
		}
	}
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
