package services

import (
	"receiptd/internal/billing"
	"receiptd/internal/models"
	"receiptd/internal/postal"
	"strings"

	"github.com/gookit/validate"
)

func init() {
	validate.AddValidator("postalCode", func(val interface{}) bool {
		s, ok := val.(string)
		if !ok {
			return false
		}
		_, err := postal.Normalize(s)
		return err == nil
	})
}

// CalcRequest previews figures without issuing anything. Nil pointers fall
// back to the configured defaults.
type CalcRequest struct {
	ProductAmount       billing.Amount `json:"productAmount"`
	ShippingAmount      billing.Amount `json:"shippingAmount"`
	ShippingEnabled     *bool          `json:"shippingEnabled"`
	TaxRate             *float64       `json:"taxRate"`
	TaxMode             string         `json:"taxMode"`
	IsElectronicReceipt *bool          `json:"isElectronicReceipt"`
}

// ReceiptInput is the form submitted to issue a receipt.
type ReceiptInput struct {
	CalcRequest
	IssuerID       int64  `json:"issuerId"`
	CustomerName   string `json:"customerName"`
	CustomerSuffix string `json:"customerSuffix"`
	Description    string `json:"description"`
	Date           string `json:"date"`
}

type IssuerInput struct {
	Name          string `json:"name" validate:"required|maxLen:200"`
	PostalCode    string `json:"postalCode" validate:"postalCode"`
	Address       string `json:"address" validate:"maxLen:500"`
	Phone         string `json:"phone" validate:"maxLen:30"`
	InvoiceNumber string `json:"invoiceNumber" validate:"maxLen:20"`
	HankoImage    string `json:"hankoImage"`
}

func (i IssuerInput) Messages() map[string]string {
	return map[string]string{
		"required":   "{field} is required",
		"maxLen":     "{field} is too long",
		"postalCode": "{field} must be 7 digits, e.g. 551-0031",
	}
}

func (i IssuerInput) normalized() IssuerInput {
	i.Name = strings.TrimSpace(i.Name)
	i.PostalCode = strings.TrimSpace(i.PostalCode)
	i.Phone = strings.TrimSpace(i.Phone)
	i.InvoiceNumber = strings.TrimSpace(i.InvoiceNumber)
	i.HankoImage = strings.TrimSpace(i.HankoImage)
	return i
}

func (i IssuerInput) toIssuer(id int64) models.Issuer {
	return models.Issuer{
		ID:            id,
		Name:          i.Name,
		PostalCode:    i.PostalCode,
		Address:       i.Address,
		Phone:         i.Phone,
		InvoiceNumber: i.InvoiceNumber,
		HankoImage:    i.HankoImage,
	}
}
