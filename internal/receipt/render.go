package receipt

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/report"
	"github.com/odyssey-erp/shopledger/web"
)

const templateName = "receipt.html"

// PDFConverter turns HTML into a PDF document.
type PDFConverter interface {
	RenderHTML(ctx context.Context, html string, paper report.Paper) ([]byte, error)
}

// Renderer renders receipts as HTML and, when a converter is configured, PDF.
type Renderer struct {
	tpl *template.Template
	pdf PDFConverter
}

// NewRenderer parses the embedded receipt template. pdf may be nil, in which
// case PDF rendering reports ErrPDFUnavailable.
func NewRenderer(pdf PDFConverter) (*Renderer, error) {
	funcMap := template.FuncMap{
		"rupees": money.Format,
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatDatePtr": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
	}
	tpl, err := template.New(templateName).Funcs(funcMap).ParseFS(web.Templates, "templates/receipts/receipt.html")
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	return &Renderer{tpl: tpl, pdf: pdf}, nil
}

// HTML renders r.
func (rd *Renderer) HTML(r Receipt) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := rd.tpl.ExecuteTemplate(buf, templateName, r); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", r.Number, err)
	}
	return buf.Bytes(), nil
}

// PDF renders r through the converter.
func (rd *Renderer) PDF(ctx context.Context, r Receipt) ([]byte, error) {
	if rd.pdf == nil {
		return nil, ErrPDFUnavailable
	}
	html, err := rd.HTML(r)
	if err != nil {
		return nil, err
	}
	pdf, err := rd.pdf.RenderHTML(ctx, string(html), report.ReceiptPaper)
	if err != nil {
		return nil, fmt.Errorf("receipt %s pdf: %w", r.Number, err)
	}
	return pdf, nil
}
