package billing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const DefaultTaxRate = 0.10

const (
	ModeExclusive = "exclusive"
	ModeInclusive = "inclusive"
)

type Input struct {
	ProductAmount       int64
	ShippingAmount      int64
	TaxRate             float64
	IsElectronicReceipt bool
}

type Figures struct {
	Strategy     string  `json:"strategy"`
	TaxRate      float64 `json:"taxRate"`
	Subtotal     int64   `json:"subtotal"`
	TaxAmount    int64   `json:"taxAmount"`
	TotalWithTax int64   `json:"totalWithTax"`
	StampDuty    int64   `json:"stampDuty"`
}

// Strategy turns transaction input into display figures. Implementations are
// pure and never fail on non-negative input.
type Strategy interface {
	Name() string
	Compute(in Input) Figures
}

// Exclusive treats the product amount as tax-exclusive and adds tax on top of
// product plus shipping.
type Exclusive struct{}

func (Exclusive) Name() string { return ModeExclusive }

func (Exclusive) Compute(in Input) Figures {
	subtotal := in.ProductAmount + in.ShippingAmount
	tax := decimal.NewFromInt(subtotal).Mul(decimal.NewFromFloat(in.TaxRate)).Floor().IntPart()
	total := subtotal + tax
	return Figures{
		Strategy:     ModeExclusive,
		TaxRate:      in.TaxRate,
		Subtotal:     subtotal,
		TaxAmount:    tax,
		TotalWithTax: total,
		StampDuty:    stampDutyFor(total, in.IsElectronicReceipt),
	}
}

// Inclusive treats the product amount as already tax-inclusive. The tax is
// only derived for display; shipping is untaxed and nothing is added.
type Inclusive struct{}

func (Inclusive) Name() string { return ModeInclusive }

func (Inclusive) Compute(in Input) Figures {
	rate := decimal.NewFromFloat(in.TaxRate)
	tax := decimal.NewFromInt(in.ProductAmount).Mul(rate).Div(decimal.NewFromInt(1).Add(rate)).Floor().IntPart()
	total := in.ProductAmount + in.ShippingAmount
	return Figures{
		Strategy:     ModeInclusive,
		TaxRate:      in.TaxRate,
		Subtotal:     total,
		TaxAmount:    tax,
		TotalWithTax: total,
		StampDuty:    stampDutyFor(total, in.IsElectronicReceipt),
	}
}

func StrategyByName(name string) (Strategy, error) {
	switch name {
	case ModeExclusive, "":
		return Exclusive{}, nil
	case ModeInclusive:
		return Inclusive{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaxMode, name)
	}
}

// CheckTaxRate rejects rates that are not finite or fall outside [0, 1].
func CheckTaxRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidTaxRate, rate)
	}
	return nil
}

func clampAmount(n int64) int64 {
	if n < 0 || n > MaxAmount {
		return 0
	}
	return n
}

// Calculate normalizes the input and runs it through the strategy. Amounts
// outside [0, MaxAmount] become 0, as do negative or non-finite rates; rates
// above 1 are capped at 1.
func Calculate(s Strategy, in Input) Figures {
	in.ProductAmount = clampAmount(in.ProductAmount)
	in.ShippingAmount = clampAmount(in.ShippingAmount)
	switch {
	case math.IsNaN(in.TaxRate), math.IsInf(in.TaxRate, -1), in.TaxRate < 0:
		in.TaxRate = 0
	case in.TaxRate > 1:
		in.TaxRate = 1
	}
	return s.Compute(in)
}
