package store

import "errors"

var (
	ErrIssuerNotFound = errors.New("issuer not found")
	ErrRecordNotFound = errors.New("receipt record not found")
)
