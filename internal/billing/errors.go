package billing

import "errors"

var (
	ErrUnknownTaxMode = errors.New("unknown tax mode")
	ErrInvalidTaxRate = errors.New("tax rate must be between 0 and 1")
)
