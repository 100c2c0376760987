package services

import (
	"errors"
	"receiptd/internal/apperror"
	"strings"
)

var (
	ErrIssuerRequired     = errors.New("発行者を選択してください")
	ErrValidation         = errors.New("validation failed")
	ErrPrinterUnavailable = errors.New("印刷できませんでした。プリンターの接続を確認するか、ポップアップブロックを解除してから再度お試しください")
	ErrPrintFailed        = errors.New("print job failed")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields []apperror.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: []apperror.FieldError{{Field: field, Message: message}}}
}
