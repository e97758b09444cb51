package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// SessionPriceLookup answers GET /config/session-price/:sessionId.
type SessionPriceLookup struct {
	Found bool            `json:"found"`
	Price decimal.Decimal `json:"price"`
}

// MarshalJSON writes price as a bare JSON number so desks that parse it as a float keep working.
func (l SessionPriceLookup) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Found bool        `json:"found"`
		Price json.Number `json:"price"`
	}{Found: l.Found, Price: json.Number(l.Price.String())})
}

// SetSessionPriceRequest configures the fixed price of a session.
type SetSessionPriceRequest struct {
	Price decimal.Decimal `json:"price"`
}
