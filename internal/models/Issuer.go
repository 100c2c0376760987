package models

import "strings"

const DefaultHankoImage = "hanko.png"

// Issuer is the billing party printed on a receipt.
type Issuer struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	PostalCode    string `json:"postalCode,omitempty"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	InvoiceNumber string `json:"invoiceNumber"`
	HankoImage    string `json:"hankoImage"`
}

// HankoOrDefault falls back to the bundled stamp image.
func (i Issuer) HankoOrDefault() string {
	if strings.TrimSpace(i.HankoImage) == "" {
		return DefaultHankoImage
	}
	return i.HankoImage
}

// AddressLines splits a multi-line address as entered in the form.
func (i Issuer) AddressLines() []string {
	raw := strings.ReplaceAll(i.Address, "\r\n", "\n")
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// DefaultIssuers is the built-in seed used on first start and by restore.
func DefaultIssuers() []Issuer {
	return []Issuer{
		{
			ID:            1,
			Name:          "株式会社色禅　ZEGRAMTOOLS",
			PostalCode:    "551-0031",
			Address:       "大阪府大阪市大正区泉尾１丁目１８番２２号",
			Phone:         "050-7117-7851",
			InvoiceNumber: "T1120001228247",
			HankoImage:    DefaultHankoImage,
		},
	}
}
