package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/render"
)

const (
	invoiceIssuer = "ООО «Партнеркин»"

	maxInvoiceQuantity   = 1_000_000
	maxInvoiceUnitAmount = 100_000_000
)

type InvoiceService struct{ *deps }

type InvoiceDraft struct {
	CompanyName string
	OrgAddress  string
	WorkType    string
	Quantity    int
	UnitAmount  float64
}

// Total is rounded to kopecks.
func (d InvoiceDraft) Total() float64 {
	return math.Round(float64(d.Quantity)*d.UnitAmount*100) / 100
}

func (s *InvoiceService) ParseQuantity(raw string) (int, error) {
	n, err := ParseInt("quantity", raw, 1, maxInvoiceQuantity)
	return int(n), err
}

func (s *InvoiceService) ParseUnitAmount(raw string) (float64, error) {
	return ParsePositiveFloat("unit_amount", raw, maxInvoiceUnitAmount)
}

func (s *InvoiceService) validate(d InvoiceDraft) error {
	if strings.TrimSpace(d.CompanyName) == "" {
		return invalid("org_name", "Укажи название организации")
	}
	if d.Quantity <= 0 || d.Quantity > maxInvoiceQuantity {
		return invalid("quantity", "Количество должно быть от 1 до 1000000")
	}
	if math.IsNaN(d.UnitAmount) || math.IsInf(d.UnitAmount, 0) || d.UnitAmount <= 0 || d.UnitAmount > maxInvoiceUnitAmount {
		return invalid("unit_amount", "Сумма должна быть больше нуля")
	}
	return nil
}

func (s *InvoiceService) data(d InvoiceDraft, number int) render.InvoiceData {
	return render.InvoiceData{
		Number:      number,
		Date:        s.now(),
		Issuer:      invoiceIssuer,
		CompanyName: d.CompanyName,
		OrgAddress:  d.OrgAddress,
		WorkType:    d.WorkType,
		Quantity:    d.Quantity,
		UnitAmount:  d.UnitAmount,
		Total:       d.Total(),
	}
}

// Preview renders the draft without a number or a row.
func (s *InvoiceService) Preview(d InvoiceDraft) (render.Document, error) {
	if err := s.validate(d); err != nil {
		return render.Document{}, err
	}
	return render.Invoice(s.data(d, 0))
}

// Issue inserts the invoice, which assigns its number and document name, then renders it.
func (s *InvoiceService) Issue(ctx context.Context, creatorID int64, d InvoiceDraft) (*models.Invoice, render.Document, error) {
	if err := s.validate(d); err != nil {
		return nil, render.Document{}, err
	}
	now := s.now()
	inv := &models.Invoice{
		CreatorID:   creatorID,
		CompanyName: strings.TrimSpace(d.CompanyName),
		OrgAddress:  d.OrgAddress,
		WorkType:    d.WorkType,
		Quantity:    d.Quantity,
		UnitAmount:  d.UnitAmount,
		Total:       d.Total(),
		InvoiceDate: now,
		CreatedAt:   now,
	}
	if err := s.store.CreateInvoice(ctx, inv, render.InvoiceName); err != nil {
		return nil, render.Document{}, fmt.Errorf("failed to create invoice: %w", err)
	}
	doc, err := render.Invoice(s.data(d, inv.InvoiceNumber))
	if err != nil {
		return inv, render.Document{}, err
	}
	return inv, doc, nil
}
