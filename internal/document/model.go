package document

// Document is the rendering-neutral receipt. Formatters only lay it out;
// every label and value is decided by Build.
type Document struct {
	Header    Header
	Party     Party
	Amount    AmountBlock
	Note      Note
	Stamp     StampBlock
	Breakdown Breakdown
	Issuer    IssuerBlock
}

type Header struct {
	Title  string
	Number string
	Date   string
}

type Party struct {
	CustomerName string
}

type AmountBlock struct {
	Total int64
}

type Note struct {
	Description     string
	Acknowledgement string
}

// StampBlock is the revenue stamp box. Lines are printed top to bottom
// inside it.
type StampBlock struct {
	Electronic bool
	Duty       int64
	Lines      []string
}

type Breakdown struct {
	Title string
	Lines []Line
}

// Line is one breakdown row. Text, when set, is printed instead of Amount.
type Line struct {
	Label  string
	Amount int64
	Text   string
	Suffix string
}

type IssuerBlock struct {
	Name          string
	PostalCode    string
	Address       []string
	Phone         string
	InvoiceNumber string
	HankoImage    string
}
