package document

import (
	"receiptd/internal/billing"
	"receiptd/internal/models"
	"strings"
	"time"
)

const (
	titleReceipt    = "領収書"
	acknowledgement = "上記の金額正に領収いたしました"
	breakdownTitle  = "【内訳】"
)

// Build assembles the document for record.
func Build(record models.ReceiptRecord) *Document {
	description := record.Description
	if strings.TrimSpace(description) == "" {
		description = models.DefaultDescription
	}

	return &Document{
		Header: Header{
			Title:  titleReceipt,
			Number: strings.TrimPrefix(record.ReceiptNumber, "R-"),
			Date:   japaneseDate(record.Date),
		},
		Party:  Party{CustomerName: record.AddressedTo()},
		Amount: AmountBlock{Total: record.Figures.TotalWithTax},
		Note: Note{
			Description:     description,
			Acknowledgement: acknowledgement,
		},
		Stamp:     stampBlock(record),
		Breakdown: breakdown(record),
		Issuer: IssuerBlock{
			Name:          record.Issuer.Name,
			PostalCode:    record.Issuer.PostalCode,
			Address:       record.Issuer.AddressLines(),
			Phone:         record.Issuer.Phone,
			InvoiceNumber: record.Issuer.InvoiceNumber,
			HankoImage:    record.Issuer.HankoOrDefault(),
		},
	}
}

// japaneseDate turns 2025-01-05 into 2025年01月05日. Anything else is kept
// as entered.
func japaneseDate(raw string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return t.Format("2006年01月02日")
}

func stampBlock(record models.ReceiptRecord) StampBlock {
	duty := record.Figures.StampDuty
	switch {
	case record.IsElectronicReceipt:
		return StampBlock{Electronic: true, Lines: []string{"電子領収書", "につき印紙", "不要"}}
	case duty > 0:
		return StampBlock{Duty: duty, Lines: []string{"収入印紙", Yen(duty) + "円"}}
	default:
		return StampBlock{Lines: []string{"印紙", "不要"}}
	}
}

func breakdown(record models.ReceiptRecord) Breakdown {
	f := record.Figures
	lines := []Line{{Label: "商品計", Amount: record.ProductAmount, Suffix: " 円"}}

	if f.Strategy == billing.ModeInclusive {
		lines = append(lines, Line{Label: "（内消費税", Amount: f.TaxAmount, Suffix: " 円）"})
	} else {
		lines = append(lines, Line{Label: "消費税", Amount: f.TaxAmount, Suffix: " 円"})
	}
	lines = append(lines, Line{Label: "消費税率", Text: percent(f.TaxRate)})

	if record.ShippingEnabled {
		lines = append(lines, Line{Label: "送料", Amount: record.ShippingAmount, Suffix: " 円"})
	}
	return Breakdown{Title: breakdownTitle, Lines: lines}
}
