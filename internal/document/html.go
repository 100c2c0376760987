package document

import (
	"bytes"
	"embed"
	"html/template"
	"regexp"
	"strings"
)

//go:embed templates/receipt.html.tmpl
var templates embed.FS

var safeImageURI = regexp.MustCompile(`^data:image/(png|jpeg|jpg|gif|webp);base64,[A-Za-z0-9+/=\s]+$`)

type HTMLFormatter struct {
	tmpl *template.Template
}

func NewHTMLFormatter() (*HTMLFormatter, error) {
	tmpl, err := template.New("receipt.html.tmpl").Funcs(template.FuncMap{
		"yen":      Yen,
		"imageSrc": imageSrc,
	}).ParseFS(templates, "templates/receipt.html.tmpl")
	if err != nil {
		return nil, err
	}
	return &HTMLFormatter{tmpl: tmpl}, nil
}

func (h *HTMLFormatter) Name() string        { return "html" }
func (h *HTMLFormatter) ContentType() string { return "text/html; charset=utf-8" }
func (h *HTMLFormatter) Extension() string   { return "html" }

func (h *HTMLFormatter) Format(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// imageSrc lets through base64 image data URIs and scheme-less relative
// paths. Anything else is dropped.
func imageSrc(src string) template.URL {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "data:"):
		if safeImageURI.MatchString(src) {
			return template.URL(src)
		}
		return ""
	case strings.Contains(src, ":"), strings.HasPrefix(src, "//"):
		return ""
	default:
		return template.URL(src)
	}
}
