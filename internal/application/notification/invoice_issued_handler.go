package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/billing"
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<p>Dear {{.To}},</p>
<p>{{.From}} has issued invoice <strong>{{.InvoiceNo}}</strong> for {{.Amount}}.</p>
<table>
<tr><td>Invoice</td><td>{{.InvoiceNo}}</td></tr>
<tr><td>Type</td><td>{{.Kind}}</td></tr>
<tr><td>Amount</td><td>{{.Amount}}</td></tr>
</table>
`))

type invoiceView struct {
	From      string
	To        string
	InvoiceNo string
	Kind      string
	Amount    string
}

// InvoiceIssuedHandler emails the billed company when an invoice is issued
type InvoiceIssuedHandler struct {
	companies   partner.CompanyRepository
	notifier    Notifier
	fromAddress string
	logger      *zap.Logger
}

// NewInvoiceIssuedHandler creates a new InvoiceIssuedHandler
func NewInvoiceIssuedHandler(companies partner.CompanyRepository, notifier Notifier, fromAddress string, logger *zap.Logger) *InvoiceIssuedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceIssuedHandler{
		companies:   companies,
		notifier:    notifier,
		fromAddress: fromAddress,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceIssuedHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoiceIssued}
}

// Handle processes an InvoiceIssuedEvent. A company without an email address
// is skipped; a send failure is returned so the event is redelivered.
func (h *InvoiceIssuedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	issued, ok := event.(*billing.InvoiceIssuedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			billing.EventTypeInvoiceIssued, event.EventType())
	}

	parties, err := h.companies.FindByIDs(ctx, []uuid.UUID{issued.FromCompanyID, issued.ToCompanyID})
	if err != nil {
		return err
	}
	from, to := parties[issued.FromCompanyID], parties[issued.ToCompanyID]
	if from == nil || to == nil {
		h.logger.Warn("Invoice party not found, notification skipped", zap.String("invoice_no", issued.InvoiceNo))
		return nil
	}
	if to.Email == "" {
		h.logger.Warn("Billed company has no email, notification skipped",
			zap.String("invoice_no", issued.InvoiceNo),
			zap.String("company", to.Name),
		)
		return nil
	}

	var body bytes.Buffer
	if err := invoiceTemplate.Execute(&body, invoiceView{
		From:      from.Name,
		To:        to.Name,
		InvoiceNo: issued.InvoiceNo,
		Kind:      issued.Kind,
		Amount:    issued.Amount.StringFixed(2),
	}); err != nil {
		return fmt.Errorf("render invoice %s: %w", issued.InvoiceNo, err)
	}

	msg := Message{
		From:    h.fromAddress,
		To:      to.Email,
		Subject: fmt.Sprintf("Invoice %s from %s", issued.InvoiceNo, from.Name),
		HTML:    body.String(),
	}
	if err := h.notifier.Send(ctx, msg); err != nil {
		h.logger.Error("Failed to send invoice notification",
			zap.String("invoice_no", issued.InvoiceNo),
			zap.Error(err),
		)
		return err
	}
	h.logger.Info("Invoice notification sent",
		zap.String("invoice_no", issued.InvoiceNo),
		zap.String("to", to.Email),
	)
	return nil
}

var _ shared.EventHandler = (*InvoiceIssuedHandler)(nil)
