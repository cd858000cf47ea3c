// Package render produces invoice and certificate documents.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const contentTypeHTML = "text/html; charset=utf-8"

// Document is a rendered artifact ready to be sent as a file.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

type InvoiceData struct {
	Number      int
	Date        time.Time
	Issuer      string
	CompanyName string
	OrgAddress  string
	WorkType    string
	Quantity    int
	UnitAmount  float64
	Total       float64
}

type CertificateData struct {
	FullName string
	Tests    []string
	IssuedAt time.Time
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// InvoiceName is the document name for an invoice number; 0 names the preview.
func InvoiceName(number int) string {
	if number == 0 {
		return "invoice_preview.html"
	}
	return fmt.Sprintf("invoice_%d.html", number)
}

func Invoice(d InvoiceData) (Document, error) {
	view := struct {
		Number      int
		Date        string
		Issuer      string
		CompanyName string
		OrgAddress  string
		WorkType    string
		Quantity    int
		UnitAmount  string
		Total       string
	}{
		Number:      d.Number,
		Date:        d.Date.Format("02.01.2006"),
		Issuer:      d.Issuer,
		CompanyName: d.CompanyName,
		OrgAddress:  d.OrgAddress,
		WorkType:    d.WorkType,
		Quantity:    d.Quantity,
		UnitAmount:  money(d.UnitAmount),
		Total:       money(d.Total),
	}
	return execute("invoice.html", InvoiceName(d.Number), view)
}

func Certificate(d CertificateData) (Document, error) {
	view := struct {
		FullName string
		Tests    []string
		IssuedAt string
	}{
		FullName: d.FullName,
		Tests:    d.Tests,
		IssuedAt: d.IssuedAt.Format("02.01.2006"),
	}
	return execute("certificate.html", "certificate.html", view)
}

func execute(tmpl, name string, view interface{}) (Document, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tmpl, view); err != nil {
		return Document{}, fmt.Errorf("failed to render %s: %w", tmpl, err)
	}
	return Document{Name: name, ContentType: contentTypeHTML, Data: buf.Bytes()}, nil
}
