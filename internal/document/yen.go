package document

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Japanese)

// Yen groups digits the way amounts appear on a receipt: 1,234,567.
func Yen(n int64) string {
	return printer.Sprintf("%d", n)
}

// Value renders the line's right-hand side.
func (l Line) Value() string {
	if l.Text != "" {
		return l.Text + l.Suffix
	}
	return Yen(l.Amount) + l.Suffix
}

func percent(rate float64) string {
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(100)).String() + "％"
}
