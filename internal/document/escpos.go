package document

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/width"
)

// ESC/POS command bytes
const (
	escESC = 0x1B
	escGS  = 0x1D
	escFS  = 0x1C
	escLF  = 0x0A
)

const (
	alignLeft   = 0
	alignCenter = 1
	alignRight  = 2
)

const (
	fontNormal = 0x00
	fontDouble = 0x11
)

const defaultCharWidth = 32

// ESCPOSFormatter renders for thermal receipt printers. Width is counted in
// half-width columns; wide runes take two.
type ESCPOSFormatter struct {
	charWidth int
	sjis      bool
}

func NewESCPOSFormatter(charWidth int, charset string) *ESCPOSFormatter {
	if charWidth <= 0 {
		charWidth = defaultCharWidth
	}
	return &ESCPOSFormatter{charWidth: charWidth, sjis: charset == "sjis"}
}

func (e *ESCPOSFormatter) Name() string        { return "escpos" }
func (e *ESCPOSFormatter) ContentType() string { return "application/octet-stream" }
func (e *ESCPOSFormatter) Extension() string   { return "bin" }

type escposWriter struct {
	buf   bytes.Buffer
	width int
	enc   *encoding.Encoder
}

func (w *escposWriter) cmd(b ...byte) *escposWriter {
	w.buf.Write(b)
	return w
}

func (w *escposWriter) text(s string) *escposWriter {
	if w.enc != nil {
		if out, err := w.enc.String(s); err == nil {
			s = out
		}
	}
	w.buf.WriteString(s)
	w.buf.WriteByte(escLF)
	return w
}

func (w *escposWriter) align(a byte) *escposWriter {
	return w.cmd(escESC, 'a', a)
}

func (w *escposWriter) bold(on bool) *escposWriter {
	b := byte(0)
	if on {
		b = 1
	}
	return w.cmd(escESC, 'E', b)
}

func (w *escposWriter) size(s byte) *escposWriter {
	return w.cmd(escGS, '!', s)
}

func (w *escposWriter) separator(char string) *escposWriter {
	return w.text(strings.Repeat(char, w.width))
}

// keyValue prints key on the left and value flush right.
func (w *escposWriter) keyValue(key, value string) *escposWriter {
	spaces := w.width - DisplayWidth(key) - DisplayWidth(value)
	if spaces < 1 {
		spaces = 1
	}
	return w.text(key + strings.Repeat(" ", spaces) + value)
}

func (w *escposWriter) feed(n int) *escposWriter {
	for i := 0; i < n; i++ {
		w.buf.WriteByte(escLF)
	}
	return w
}

func (w *escposWriter) partialCut() *escposWriter {
	return w.cmd(escGS, 'V', 0x01)
}

// DisplayWidth counts columns on a fixed-pitch printer.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func (e *ESCPOSFormatter) Format(doc *Document) ([]byte, error) {
	w := &escposWriter{width: e.charWidth}
	w.cmd(escESC, '@')
	if e.sjis {
		w.enc = encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
		// Kanji mode, Shift_JIS code system
		w.cmd(escFS, 'C', 1).cmd(escFS, '&')
	}

	w.align(alignCenter).size(fontDouble).text(doc.Header.Title).size(fontNormal)
	w.text("№ " + doc.Header.Number).text(doc.Header.Date)
	w.separator("-")

	w.bold(true).text(doc.Party.CustomerName).bold(false)
	w.feed(1)
	w.size(fontDouble).text("¥" + Yen(doc.Amount.Total) + "-").size(fontNormal)
	w.separator("-")

	w.align(alignLeft).text("但　" + doc.Note.Description)
	w.align(alignCenter).text(doc.Note.Acknowledgement)
	w.separator("-")

	w.align(alignLeft).text(doc.Breakdown.Title)
	for _, l := range doc.Breakdown.Lines {
		w.keyValue(l.Label, l.Value())
	}
	w.text(strings.Join(doc.Stamp.Lines, ""))
	w.separator("-")

	w.align(alignRight).bold(true).text(doc.Issuer.Name).bold(false)
	if doc.Issuer.PostalCode != "" {
		w.text("〒" + doc.Issuer.PostalCode)
	}
	for _, a := range doc.Issuer.Address {
		w.text(a)
	}
	if doc.Issuer.Phone != "" {
		w.text("TEL：" + doc.Issuer.Phone)
	}
	w.text("登録番号：" + doc.Issuer.InvoiceNumber)

	w.align(alignLeft).feed(3).partialCut()
	return w.buf.Bytes(), nil
}
