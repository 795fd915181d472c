package domain

import (
	"time"

	"github.com/google/uuid"
)

// TradingAccount links a customer to an account on the trading engine.
type TradingAccount struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Login      string    `json:"login"`
	Group      string    `json:"group"`
	CreatedAt  time.Time `json:"created_at"`
}

// PaymentMethodKind is the payout destination type.
type PaymentMethodKind string

const (
	PaymentMethodBank PaymentMethodKind = "BANK"
	PaymentMethodUPI  PaymentMethodKind = "UPI"
)

// PaymentMethod is a customer's payout destination. Sensitive fields are stored
// under the deterministic cipher so they can be searched by exact match.
type PaymentMethod struct {
	ID               uuid.UUID         `json:"id"`
	CustomerID       uuid.UUID         `json:"customer_id"`
	Kind             PaymentMethodKind `json:"kind"`
	HolderNameEnc    string            `json:"-"`
	AccountNumberEnc string            `json:"-"`
	IFSCEnc          string            `json:"-"`
	VPAEnc           string            `json:"-"`
	CreatedAt        time.Time         `json:"created_at"`
}

// PaymentDetails is the decrypted destination, built only at the point of use.
type PaymentDetails struct {
	Kind          PaymentMethodKind `json:"kind"`
	HolderName    string            `json:"holder_name"`
	AccountNumber string            `json:"account_number,omitempty"`
	IFSC          string            `json:"ifsc,omitempty"`
	VPA           string            `json:"vpa,omitempty"`
}

// Masked returns a copy safe for admin display.
func (d PaymentDetails) Masked() PaymentDetails {
	d.AccountNumber = mask(d.AccountNumber)
	d.VPA = mask(d.VPA)
	return d
}

func mask(s string) string {
	if len(s) <= 4 {
		return s
	}
	b := []byte(s)
	for i := 0; i < len(b)-4; i++ {
		b[i] = '*'
	}
	return string(b)
}
