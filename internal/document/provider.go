package document

import (
	"receiptd/internal/structures"
)

// NewRegistryFromConfig builds the registry with every supported output
// format configured from conf.
func NewRegistryFromConfig(conf *structures.Config) (*Registry, error) {
	html, err := NewHTMLFormatter()
	if err != nil {
		return nil, err
	}
	pdf, err := NewPDFFormatter(conf.PDF.FontPath)
	if err != nil {
		return nil, err
	}
	escpos := NewESCPOSFormatter(conf.Printer.CharWidth, conf.Printer.Charset)
	return NewRegistry(html, pdf, escpos), nil
}
