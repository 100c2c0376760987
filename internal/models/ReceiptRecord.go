package models

import (
	"receiptd/internal/billing"
	"time"
)

const DefaultDescription = "お品代として"

// ReceiptRecord is an immutable snapshot of one issued receipt. The issuer
// is copied by value so later issuer edits leave history untouched.
type ReceiptRecord struct {
	ID                  int64           `json:"id"`
	ReceiptNumber       string          `json:"receiptNumber"`
	Date                string          `json:"date"`
	CreatedAt           time.Time       `json:"timestamp"`
	CustomerName        string          `json:"customerName"`
	CustomerSuffix      string          `json:"customerSuffix,omitempty"`
	Description         string          `json:"description"`
	ProductAmount       int64           `json:"productAmount"`
	ShippingAmount      int64           `json:"shippingAmount"`
	ShippingEnabled     bool            `json:"shippingEnabled"`
	TaxRate             float64         `json:"taxRate"`
	TaxMode             string          `json:"taxMode"`
	IsElectronicReceipt bool            `json:"isElectronicReceipt"`
	Figures             billing.Figures `json:"figures"`
	Issuer              Issuer          `json:"issuer"`
}

// AddressedTo is the customer line as printed, name followed by honorific.
func (r ReceiptRecord) AddressedTo() string {
	if r.CustomerSuffix == "" {
		return r.CustomerName
	}
	if r.CustomerName == "" {
		return r.CustomerSuffix
	}
	return r.CustomerName + " " + r.CustomerSuffix
}
