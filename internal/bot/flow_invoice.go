package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/session"
)

var invoiceFields = map[string]string{
	stepOrgName:    "org_name",
	stepOrgAddress: "org_address",
	stepWorkType:   "work_type",
}

func (b *Bot) startInvoice(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgInvoice, stepOrgName, nil)
}

func (b *Bot) handleInvoiceText(cur, nextStep string) handlerFunc {
	return func(ctx context.Context, r *Request) error {
		text, skipped := input(r)
		if skipped {
			text = ""
		}
		if cur == stepOrgName && text == "" {
			return &services.ValidationError{Field: "org_name", Message: "Укажи название организации"}
		}
		r.Dialogue.Set(invoiceFields[cur], text)
		return b.next(ctx, r, nextStep)
	}
}

func (b *Bot) handleInvoiceQuantity(ctx context.Context, r *Request) error {
	n, err := b.svc.Invoices.ParseQuantity(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("quantity", strconv.Itoa(n))
	return b.next(ctx, r, stepUnitAmount)
}

func (b *Bot) handleInvoiceAmount(ctx context.Context, r *Request) error {
	v, err := b.svc.Invoices.ParseUnitAmount(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("unit_amount", strconv.FormatFloat(v, 'f', 2, 64))
	return b.next(ctx, r, stepConfirm)
}

func invoiceDraft(d *session.Dialogue) services.InvoiceDraft {
	qty, _ := strconv.Atoi(d.Get("quantity"))
	amount, _ := strconv.ParseFloat(d.Get("unit_amount"), 64)
	return services.InvoiceDraft{
		CompanyName: d.Get("org_name"),
		OrgAddress:  d.Get("org_address"),
		WorkType:    d.Get("work_type"),
		Quantity:    qty,
		UnitAmount:  amount,
	}
}

// promptInvoiceConfirm renders an unnumbered preview and asks to issue it.
func (b *Bot) promptInvoiceConfirm(ctx context.Context, r *Request) error {
	draft := invoiceDraft(r.Dialogue)
	doc, err := b.svc.Invoices.Preview(draft)
	if err != nil {
		return err
	}
	if err := b.out.SendDocument(ctx, r.ChatID, doc, "👀 Предпросмотр счета"); err != nil {
		return err
	}
	text := fmt.Sprintf("🧾 %s\nКоличество: %d\nЗа единицу: %.2f ₽\nИтого: %.2f ₽\n\nВыставить счет?",
		draft.CompanyName, draft.Quantity, draft.UnitAmount, draft.Total())
	return b.reply(ctx, r, text, yesNo())
}

func (b *Bot) handleInvoiceConfirm(ctx context.Context, r *Request) error {
	switch strings.TrimSpace(r.Text) {
	case LabelYes:
		return b.issueInvoice(ctx, r)
	case LabelNo:
		return b.complete(ctx, r, "Счет не выставлен.")
	default:
		return &services.ValidationError{Field: "confirm", Message: "Ответь кнопкой «Да» или «Нет»"}
	}
}

func (b *Bot) issueInvoice(ctx context.Context, r *Request) error {
	inv, doc, err := b.svc.Invoices.Issue(ctx, r.UserID, invoiceDraft(r.Dialogue))
	if err != nil {
		return err
	}
	if err := b.out.SendDocument(ctx, r.ChatID, doc, fmt.Sprintf("🧾 Счет №%d", inv.InvoiceNumber)); err != nil {
		return err
	}
	return b.complete(ctx, r, fmt.Sprintf("✅ Счет №%d выставлен на %.2f ₽.", inv.InvoiceNumber, inv.Total))
}
