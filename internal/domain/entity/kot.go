package entity

import (
	"strconv"
	"time"
)

// KOTItem is one dish line on a kitchen order ticket.
type KOTItem struct {
	Name     string `json:"name"`
	Portion  string `json:"portion,omitempty"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// KOTData is a kitchen order ticket. It is built per print event and never stored.
type KOTData struct {
	IsParcel    bool      `json:"is_parcel"`
	TableNumber string    `json:"table_number,omitempty"`
	TokenNumber int       `json:"token_number,omitempty"`
	KOTNumber   int       `json:"kot_number"`
	Items       []KOTItem `json:"items" binding:"required,min=1"`
	OrderNotes  string    `json:"order_notes,omitempty"`
	ServerName  string    `json:"server_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SeatLabel returns "Table 4" for dine-in and "Token 17" for parcels.
func (k *KOTData) SeatLabel() string {
	return seatLabel(k.IsParcel, k.TableNumber, k.TokenNumber)
}

// DisplayNumber returns the ticket number zero padded to two digits.
func (k *KOTData) DisplayNumber() string {
	if k.KOTNumber < 10 && k.KOTNumber >= 0 {
		return "0" + itoa(k.KOTNumber)
	}
	return itoa(k.KOTNumber)
}

// CartItem is a line of an open table order. SentQuantity counts portions
// already sent to the kitchen.
type CartItem struct {
	LineItem
	SentQuantity int `json:"sent_quantity"`
}

// Pending returns the quantity not yet sent to the kitchen.
func (c CartItem) Pending() int {
	if c.Quantity <= c.SentQuantity {
		return 0
	}
	return c.Quantity - c.SentQuantity
}

// BuildKOT copies header into a new ticket holding only the unsent delta of
// cart. It returns false when nothing is pending.
func BuildKOT(header KOTData, cart []CartItem) (*KOTData, bool) {
	kot := header
	kot.Items = nil
	for _, c := range cart {
		n := c.Pending()
		if n == 0 {
			continue
		}
		kot.Items = append(kot.Items, KOTItem{
			Name:     c.Name,
			Portion:  c.Portion,
			Quantity: n,
			Notes:    c.Notes,
		})
	}
	if len(kot.Items) == 0 {
		return nil, false
	}
	return &kot, true
}

// MarkSent records the pending quantity of every cart line as sent.
func MarkSent(cart []CartItem) []CartItem {
	out := make([]CartItem, len(cart))
	for i, c := range cart {
		c.SentQuantity = c.Quantity
		out[i] = c
	}
	return out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
