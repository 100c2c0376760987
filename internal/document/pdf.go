package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFontFamily = "receipt"
	pdfPageWidth  = 210.0
	pdfMargin     = 20.0
	pdfInner      = pdfPageWidth - 2*pdfMargin
)

// PDFFormatter lays the document out on an A4 page. Japanese text needs a
// TrueType font; without one the core Helvetica font is used and runes it
// cannot encode are lost.
type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter(fontPath string) (*PDFFormatter, error) {
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err != nil {
			return nil, fmt.Errorf("pdf font %s: %w", fontPath, err)
		}
	}
	return &PDFFormatter{fontPath: fontPath}, nil
}

func (p *PDFFormatter) Name() string        { return "pdf" }
func (p *PDFFormatter) ContentType() string { return "application/pdf" }
func (p *PDFFormatter) Extension() string   { return "pdf" }

type pdfPage struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
}

func (pg *pdfPage) font(size float64) {
	pg.pdf.SetFont(pg.family, "", size)
}

func (pg *pdfPage) cell(w, h float64, text, align string) {
	pg.pdf.CellFormat(w, h, pg.tr(text), "", 0, align, false, 0, "")
}

func (pg *pdfPage) line(w, h float64, text, align string) {
	pg.pdf.CellFormat(w, h, pg.tr(text), "", 1, align, false, 0, "")
}

func (pg *pdfPage) rule(width float64) {
	y := pg.pdf.GetY()
	pg.pdf.SetLineWidth(width)
	pg.pdf.Line(pdfMargin, y, pdfMargin+pdfInner, y)
}

func (p *PDFFormatter) newPage() *pdfPage {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)

	pg := &pdfPage{pdf: pdf, family: "Helvetica", tr: func(s string) string { return s }}
	if p.fontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", p.fontPath)
		pg.family = pdfFontFamily
	} else {
		pg.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddPage()
	return pg
}

func (p *PDFFormatter) Format(doc *Document) ([]byte, error) {
	pg := p.newPage()
	pdf := pg.pdf
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf setup: %w", err)
	}

	pg.font(28)
	pg.cell(pdfInner/2, 14, doc.Header.Title, "L")
	pg.font(12)
	y := pdf.GetY()
	pdf.SetX(pdfMargin + pdfInner/2)
	pg.line(pdfInner/2, 7, "№ "+doc.Header.Number, "R")
	pdf.SetX(pdfMargin + pdfInner/2)
	pg.line(pdfInner/2, 7, doc.Header.Date, "R")
	pdf.SetY(y + 24)

	pg.font(18)
	pg.line(pdfInner, 10, doc.Party.CustomerName, "C")
	pg.rule(0.6)
	pdf.Ln(12)

	pg.font(22)
	pg.line(pdfInner, 12, "¥ "+Yen(doc.Amount.Total)+"-", "C")
	pg.rule(0.6)
	pdf.Ln(10)

	pg.font(12)
	pg.line(pdfInner, 8, "但　"+doc.Note.Description, "L")
	pg.rule(0.3)
	pdf.Ln(8)
	pg.line(pdfInner, 8, doc.Note.Acknowledgement, "C")
	pdf.Ln(8)

	top := pdf.GetY()
	p.stamp(pg, doc.Stamp, top)
	p.breakdown(pg, doc.Breakdown, top)

	pdf.SetY(top + 50)
	p.issuer(pg, doc.Issuer)

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *PDFFormatter) stamp(pg *pdfPage, s StampBlock, top float64) {
	const boxW, boxH = 22.0, 30.0
	pg.pdf.SetLineWidth(0.6)
	pg.pdf.Rect(pdfMargin, top, boxW, boxH, "D")
	pg.font(8)
	lineH := boxH / float64(len(s.Lines)+1)
	for i, l := range s.Lines {
		pg.pdf.SetXY(pdfMargin, top+lineH*float64(i)+lineH/2)
		pg.cell(boxW, lineH, l, "C")
	}
}

func (p *PDFFormatter) breakdown(pg *pdfPage, b Breakdown, top float64) {
	const left = pdfMargin + 32
	const width = pdfInner - 32
	pg.pdf.SetXY(left, top)
	pg.font(11)
	pg.line(width, 7, b.Title, "L")
	for _, l := range b.Lines {
		pg.pdf.SetX(left)
		pg.cell(width/2, 7, l.Label+"：", "L")
		pg.line(width/2, 7, l.Value(), "R")
	}
	y := pg.pdf.GetY()
	pg.pdf.SetLineWidth(0.3)
	pg.pdf.Line(left, y, left+width, y)
}

func (p *PDFFormatter) issuer(pg *pdfPage, is IssuerBlock) {
	pdf := pg.pdf
	top := pdf.GetY()

	pg.font(14)
	pg.line(pdfInner, 8, is.Name, "R")
	pg.font(10)
	if is.PostalCode != "" {
		pg.line(pdfInner, 6, "〒"+is.PostalCode, "R")
	}
	for _, a := range is.Address {
		pg.line(pdfInner, 6, a, "R")
	}
	if is.Phone != "" {
		pg.line(pdfInner, 6, "TEL："+is.Phone, "R")
	}
	pg.line(pdfInner, 6, "インボイス登録番号："+is.InvoiceNumber, "R")

	p.hanko(pdf, is.HankoImage, pdfMargin+pdfInner-20, top-4)
}

// hanko draws the stamp image when it can be decoded. A missing or broken
// image leaves the page without it.
func (p *PDFFormatter) hanko(pdf *gofpdf.Fpdf, src string, x, y float64) {
	name, opts, ok := registerImage(pdf, src)
	if !ok {
		pdf.ClearError()
		return
	}
	pdf.ImageOptions(name, x, y, 18, 18, false, opts, 0, "")
	if pdf.Err() {
		pdf.ClearError()
	}
}

func registerImage(pdf *gofpdf.Fpdf, src string) (string, gofpdf.ImageOptions, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", gofpdf.ImageOptions{}, false
	}

	if strings.HasPrefix(src, "data:") {
		if !safeImageURI.MatchString(src) {
			return "", gofpdf.ImageOptions{}, false
		}
		meta, payload, _ := strings.Cut(src, ",")
		raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(payload), ""))
		if err != nil {
			return "", gofpdf.ImageOptions{}, false
		}
		opts := gofpdf.ImageOptions{ImageType: imageType(meta)}
		pdf.RegisterImageOptionsReader("hanko", opts, bytes.NewReader(raw))
		return "hanko", opts, !pdf.Err()
	}

	if _, err := os.Stat(src); err != nil {
		return "", gofpdf.ImageOptions{}, false
	}
	opts := gofpdf.ImageOptions{ReadDpi: true}
	pdf.RegisterImageOptions(src, opts)
	return src, opts, !pdf.Err()
}

func imageType(meta string) string {
	switch {
	case strings.Contains(meta, "png"):
		return "PNG"
	case strings.Contains(meta, "gif"):
		return "GIF"
	default:
		return "JPG"
	}
}
