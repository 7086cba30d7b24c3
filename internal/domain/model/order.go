package model

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a bot order is settled.
type PaymentMethod string

const (
	PaymentPayNow PaymentMethod = "pay_now"
	PaymentBNPL   PaymentMethod = "bnpl"
)

// Order is a placed bot order. Persistence is best-effort; the confirmed
// order id shown to the user is generated here, not by the database.
type Order struct {
	ID            string
	ChatID        int64
	Lines         []CartLine
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	PlacedAt      time.Time
}

func NewOrder(chatID int64, lines []CartLine, method PaymentMethod) *Order {
	o := &Order{
		ID:            NewOrderID(time.Now().UTC()),
		ChatID:        chatID,
		Lines:         append([]CartLine(nil), lines...),
		PaymentMethod: method,
		PlacedAt:      time.Now().UTC(),
	}
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	o.Total = total
	return o
}

const orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderID returns an id of the form SS-YYYYMMDD-XXXX where XXXX are four
// random uppercase alphanumerics.
func NewOrderID(now time.Time) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(orderIDAlphabet))))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// fall back to a fixed character rather than panic mid-order.
			suffix[i] = 'X'
			continue
		}
		suffix[i] = orderIDAlphabet[n.Int64()]
	}
	return fmt.Sprintf("SS-%s-%s", now.Format("20060102"), suffix)
}
