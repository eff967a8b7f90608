package models

import (
	"github.com/goccy/go-json"
)

// Price keeps the decimal literal exactly as the client sent it so that
// minor-unit conversion never goes through a binary float.
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	if s == "null" {
		s = ""
	}
	*p = Price(s)
	return nil
}

// PaymentIntentRequest is the body of POST /create-payment-intent.
type PaymentIntentRequest struct {
	Price Price `json:"price" validate:"required"`
}
