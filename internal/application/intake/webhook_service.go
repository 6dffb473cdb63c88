// Package intake runs inbound purchase order webhooks through validation,
// extraction, deduplication and purchase order creation.
package intake

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	tradeapp "github.com/printchain/backend/internal/application/trade"
	"github.com/printchain/backend/internal/domain/intake"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/shared/valueobject"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/printchain/backend/internal/infrastructure/scheduler"
	"github.com/printchain/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const stalledBatchSize = 100

// TaskRunner runs fn on a worker pool and waits for it
type TaskRunner interface {
	Do(ctx context.Context, typ scheduler.TaskType, fn scheduler.TaskFunc) error
}

// DocumentArchive keeps a copy of every inbound document for review
type DocumentArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// WebhookConfig holds pipeline settings
type WebhookConfig struct {
	Intake config.IntakeConfig
	// MaxAttempts bounds extractor calls per event
	MaxAttempts     int
	Timeout         time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// WebhookConfigFrom combines the intake and extractor sections
func WebhookConfigFrom(in config.IntakeConfig, ext config.ExtractorConfig) WebhookConfig {
	return WebhookConfig{
		Intake:          in,
		MaxAttempts:     ext.MaxAttempts,
		Timeout:         ext.Timeout,
		InitialInterval: ext.InitialInterval,
		MaxInterval:     ext.MaxInterval,
	}
}

type source struct {
	config.IntakeSource
	allow          intake.AllowList
	intermediaryID uuid.UUID
	receivingID    uuid.UUID
}

// WebhookServiceDeps groups the collaborators of the pipeline
type WebhookServiceDeps struct {
	Events    intake.InboundEventRepository
	Orders    trade.PurchaseOrderRepository
	Jobs      job.JobRepository
	Companies partner.CompanyRepository
	Extractor intake.Extractor
	// Archive is optional
	Archive DocumentArchive
	// Runner is optional; without it events are processed on the caller's goroutine
	Runner TaskRunner
}

// WebhookService is the ingestion pipeline. Each step is persisted before the
// next starts, so an event interrupted mid-way is resumed where it stopped.
type WebhookService struct {
	deps    WebhookServiceDeps
	config  WebhookConfig
	sources map[string]*source
	metrics *telemetry.SupplyChainMetrics
	logger  *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(deps WebhookServiceDeps, cfg WebhookConfig, logger *zap.Logger) (*WebhookService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	sources := make(map[string]*source, len(cfg.Intake.Sources))
	for _, sc := range cfg.Intake.Sources {
		src := &source{IntakeSource: sc, allow: intake.NewAllowList(sc.AllowedSenders)}
		var err error
		if src.intermediaryID, err = optionalUUID(sc.IntermediaryID); err != nil {
			return nil, fmt.Errorf("intake source %s: intermediary_id: %w", sc.Name, err)
		}
		if src.receivingID, err = optionalUUID(sc.ReceivingCompanyID); err != nil {
			return nil, fmt.Errorf("intake source %s: receiving_company_id: %w", sc.Name, err)
		}
		sources[strings.ToLower(sc.Name)] = src
	}

	return &WebhookService{
		deps:    deps,
		config:  cfg,
		sources: sources,
		logger:  logger,
	}, nil
}

func optionalUUID(s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(strings.TrimSpace(s))
}

// SetMetrics sets the metrics collector
func (s *WebhookService) SetMetrics(m *telemetry.SupplyChainMetrics) {
	s.metrics = m
}

func (s *WebhookService) source(name string) (*source, error) {
	if name == "" {
		name = s.config.Intake.DefaultSource
	}
	src, ok := s.sources[strings.ToLower(name)]
	if !ok {
		return nil, intake.ErrUnknownSource.WithMessage(fmt.Sprintf("unknown webhook source %q", name))
	}
	return src, nil
}

// ReceiveEmail records an inbound email and runs it through the pipeline
func (s *WebhookService) ReceiveEmail(ctx context.Context, msg EmailMessage) (*WebhookResponse, error) {
	src, err := s.source(msg.Source)
	if err != nil {
		return nil, err
	}
	attachments := make([]intake.Attachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		if limit := s.config.Intake.MaxAttachment; limit > 0 && int64(len(a.Content)) > limit {
			return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("attachment %s exceeds %d bytes", a.Filename, limit))
		}
		attachments = append(attachments, intake.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Content:     a.Content,
		})
	}

	e := intake.NewEmailEvent(src.Name, msg.From, msg.Subject, msg.Text, attachments)
	if err := s.deps.Events.Create(ctx, e); err != nil {
		return nil, err
	}
	return s.run(ctx, e)
}

// ReceiveStructured records a structured purchase order posted by a source
// system. A bad token rejects the event without processing it.
func (s *WebhookService) ReceiveStructured(ctx context.Context, sourceName, token string, payload StructuredPayload) (*WebhookResponse, error) {
	src, err := s.source(sourceName)
	if err != nil {
		return nil, err
	}
	po := intake.ExtractedPO{
		CustomerCode: strings.TrimSpace(payload.CustomerCode),
		PONumber:     strings.TrimSpace(payload.EstimateNumber),
		Amount:       payload.Amount,
		CustomerID:   strings.TrimSpace(payload.CustomerID),
		JobNo:        strings.TrimSpace(payload.JobNo),
		ComponentID:  strings.TrimSpace(payload.ComponentID),
	}
	e := intake.NewStructuredEvent(src.Name, "source:"+strings.ToLower(src.Name), po)

	if !tokenMatches(src.Token, token) {
		s.logger.Warn("Webhook token rejected",
			zap.String("category", "security"),
			zap.String("source", src.Name),
			zap.String("event_id", e.ID.String()),
		)
		if err := e.Reject(intake.RejectInvalidSender); err != nil {
			return nil, err
		}
		if err := s.deps.Events.Create(ctx, e); err != nil {
			return nil, err
		}
		s.recordOutcome(ctx, e)
		return s.response(ctx, e, nil)
	}

	if err := s.deps.Events.Create(ctx, e); err != nil {
		return nil, err
	}
	return s.run(ctx, e)
}

func tokenMatches(want, got string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func (s *WebhookService) run(ctx context.Context, e *intake.InboundEvent) (*WebhookResponse, error) {
	var po *trade.PurchaseOrder
	process := func(ctx context.Context) error {
		var err error
		po, err = s.Process(ctx, e)
		return err
	}
	var err error
	if s.deps.Runner != nil {
		err = s.deps.Runner.Do(ctx, scheduler.TaskWebhook, process)
	} else {
		err = process(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.response(ctx, e, po)
}

func (s *WebhookService) response(ctx context.Context, e *intake.InboundEvent, po *trade.PurchaseOrder) (*WebhookResponse, error) {
	resp := &WebhookResponse{EventID: e.ID, State: string(e.State), Reason: string(e.RejectReason)}
	if e.State == intake.StateNeedsReview || e.State == intake.StateFailed {
		resp.Reason = e.LastError
	}
	if po == nil && e.PurchaseOrderID != nil {
		var err error
		if po, err = s.deps.Orders.FindByID(ctx, *e.PurchaseOrderID); err != nil {
			return nil, err
		}
	}
	if po != nil {
		out := tradeapp.ToPurchaseOrderResponse(po)
		resp.PurchaseOrder = &out
	}
	return resp, nil
}

// Process advances e from its current state until it settles. It returns the
// purchase order the event created or matched, if any.
func (s *WebhookService) Process(ctx context.Context, e *intake.InboundEvent) (*trade.PurchaseOrder, error) {
	src, err := s.source(e.Source)
	if err != nil {
		return nil, err
	}

	for !e.State.IsTerminal() {
		if e.State == intake.StateDedupChecked {
			po, err := s.complete(ctx, src, e)
			if err != nil {
				return nil, err
			}
			s.recordOutcome(ctx, e)
			return po, nil
		}

		switch e.State {
		case intake.StateReceived:
			err = s.validate(src, e)
		case intake.StateValidated:
			err = s.parse(ctx, src, e)
		case intake.StateParsed:
			err = s.dedup(src, e)
		default:
			err = fmt.Errorf("inbound event %s in unexpected state %s", e.ID, e.State)
		}
		if err != nil {
			return nil, err
		}
		if err := s.deps.Events.Save(ctx, e); err != nil {
			return nil, err
		}
	}

	s.recordOutcome(ctx, e)
	return nil, nil
}

// validate checks the sender and the subject
func (s *WebhookService) validate(src *source, e *intake.InboundEvent) error {
	if e.Channel == intake.ChannelEmail && !src.allow.Allows(e.Sender) {
		s.logger.Warn("Webhook sender not on allow-list",
			zap.String("category", "security"),
			zap.String("source", src.Name),
			zap.String("sender", intake.NormalizeSender(e.Sender)),
			zap.String("event_id", e.ID.String()),
		)
		return e.Reject(intake.RejectInvalidSender)
	}

	code, ok := intake.MatchCustomerCode(e.Subject, src.CustomerCodes)
	if !ok && e.Channel == intake.ChannelStructured && e.Subject == "" && e.Structured != nil && e.Structured.JobNo != "" {
		// the job names the customer
		ok = true
	}
	if !ok {
		s.logger.Info("Webhook subject has no customer code",
			zap.String("source", src.Name),
			zap.String("subject", e.Subject),
			zap.String("event_id", e.ID.String()),
		)
		return e.Reject(intake.RejectNoCustomerCode)
	}
	return e.Validated(code)
}

// parse extracts the purchase order and checks it resolves. Validation
// failures park the event for review; exhausted retries fail it.
func (s *WebhookService) parse(ctx context.Context, src *source, e *intake.InboundEvent) error {
	var extracted intake.ExtractedPO
	switch e.Channel {
	case intake.ChannelStructured:
		if e.Structured == nil {
			return e.NeedsReview(nil, intake.ErrParseValidationFailed.WithMessage("structured payload missing"))
		}
		extracted = *e.Structured
	default:
		if e.Attachment == nil {
			return e.NeedsReview(nil, intake.ErrParseValidationFailed.WithMessage("email has no PDF attachment"))
		}
		s.archive(ctx, src, e)
		po, err := s.extract(ctx, e)
		switch {
		case errors.Is(err, intake.ErrParseValidationFailed):
			return e.NeedsReview(nil, err)
		case err != nil:
			s.logger.Error("Extraction failed",
				zap.String("event_id", e.ID.String()),
				zap.Int("attempts", e.Attempts),
				zap.Error(err),
			)
			return e.Fail(intake.ErrExtractionFailed.WithMessage(err.Error()))
		}
		extracted = *po
	}

	if extracted.CustomerCode == "" && extracted.CustomerID == "" {
		extracted.CustomerCode = e.CustomerCode
	}
	res, err := s.resolve(ctx, src, e, &extracted)
	if err != nil {
		if errors.Is(err, intake.ErrParseValidationFailed) {
			s.logger.Info("Inbound purchase order needs review",
				zap.String("event_id", e.ID.String()),
				zap.Error(err),
			)
			return e.NeedsReview(&extracted, err)
		}
		return err
	}
	if extracted.CustomerCode == "" {
		extracted.CustomerCode = res.customer.Code
	}
	return e.Parsed(extracted)
}

func (s *WebhookService) archive(ctx context.Context, src *source, e *intake.InboundEvent) {
	if s.deps.Archive == nil || e.Attachment.StorageKey != "" {
		return
	}
	name := path.Base(strings.ReplaceAll(e.Attachment.Filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "document.pdf"
	}
	key := path.Join(strings.ToLower(src.Name), e.ReceivedAt.UTC().Format("2006/01/02"), e.ID.String(), name)
	if err := s.deps.Archive.Put(ctx, key, e.Attachment.Content, "application/pdf"); err != nil {
		// the content is still on the event row
		s.logger.Warn("Failed to archive inbound document", zap.String("key", key), zap.Error(err))
		return
	}
	e.Attachment.StorageKey = key
}

func (s *WebhookService) extract(ctx context.Context, e *intake.InboundEvent) (*intake.ExtractedPO, error) {
	if s.deps.Extractor == nil {
		return nil, errors.New("no document extractor configured")
	}
	doc := intake.Document{
		Filename:    e.Attachment.Filename,
		ContentType: e.Attachment.ContentType,
		Content:     e.Attachment.Content,
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.InitialInterval
	b.MaxInterval = s.config.MaxInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.config.MaxAttempts-1)), ctx)

	var result *intake.ExtractedPO
	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()

		start := time.Now()
		po, err := s.deps.Extractor.Extract(attemptCtx, doc)
		e.RecordAttempt(err)
		s.recordExtraction(ctx, time.Since(start), err)
		if err != nil {
			if errors.Is(err, intake.ErrParseValidationFailed) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = po
		return nil
	}
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return result, nil
}

// resolution is what an extracted purchase order points at
type resolution struct {
	customer       *partner.Company
	job            *job.Job
	intermediaryID uuid.UUID
	receivingID    uuid.UUID
}

// resolve looks up the customer, the optional job and both parties of the
// inbound order. Anything that does not resolve is ErrParseValidationFailed.
func (s *WebhookService) resolve(ctx context.Context, src *source, e *intake.InboundEvent, po *intake.ExtractedPO) (*resolution, error) {
	res := &resolution{intermediaryID: src.intermediaryID, receivingID: src.receivingID}

	if po.JobNo != "" {
		j, err := s.deps.Jobs.FindByJobNo(ctx, po.JobNo)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, intake.ErrParseValidationFailed.WithMessage(fmt.Sprintf("job %s not found", po.JobNo))
		}
		if err != nil {
			return nil, err
		}
		res.job = j
		if po.CustomerCode == "" && po.CustomerID == "" {
			po.CustomerID = j.CustomerID.String()
		}
	}
	if err := po.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.findCustomer(ctx, po)
	if err != nil {
		return nil, err
	}
	if customer.Role != partner.RoleCustomer {
		return nil, intake.ErrParseValidationFailed.WithMessage(fmt.Sprintf("company %s is not a customer", customer.Name))
	}
	if e.CustomerCode != "" && customer.Code != "" && customer.Code != partner.NormalizeCode(e.CustomerCode) {
		return nil, intake.ErrParseValidationFailed.WithMessage(
			fmt.Sprintf("document customer %s does not match subject code %s", customer.Code, e.CustomerCode))
	}
	if res.job != nil && res.job.CustomerID != customer.ID {
		return nil, intake.ErrParseValidationFailed.WithMessage(
			fmt.Sprintf("job %s belongs to another customer", res.job.JobNo))
	}
	res.customer = customer

	if res.intermediaryID == uuid.Nil {
		c, err := s.deps.Companies.FindByCode(ctx, src.IntermediaryCode)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, intake.ErrParseValidationFailed.WithMessage(fmt.Sprintf("intermediary %s not found", src.IntermediaryCode))
		}
		if err != nil {
			return nil, err
		}
		res.intermediaryID = c.ID
	}
	if res.job != nil {
		if res.job.IntermediaryID != res.intermediaryID {
			return nil, intake.ErrParseValidationFailed.WithMessage(
				fmt.Sprintf("job %s is not placed through intermediary %s", res.job.JobNo, src.IntermediaryCode))
		}
		res.receivingID = res.job.ManufacturerID
	}
	if res.receivingID == uuid.Nil {
		return nil, intake.ErrParseValidationFailed.WithMessage("no receiving company: configure one on the source or name a job")
	}
	return res, nil
}

func (s *WebhookService) findCustomer(ctx context.Context, po *intake.ExtractedPO) (*partner.Company, error) {
	var (
		c   *partner.Company
		err error
	)
	if po.CustomerID != "" {
		id, perr := uuid.Parse(po.CustomerID)
		if perr != nil {
			return nil, intake.ErrParseValidationFailed.WithMessage(fmt.Sprintf("customer id %q is not a uuid", po.CustomerID))
		}
		c, err = s.deps.Companies.FindByID(ctx, id)
	} else {
		c, err = s.deps.Companies.FindByCode(ctx, po.CustomerCode)
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil, intake.ErrParseValidationFailed.WithMessage("customer not found")
	}
	return c, err
}

func (s *WebhookService) dedup(src *source, e *intake.InboundEvent) error {
	code := e.Extracted.CustomerCode
	if code == "" {
		code = e.CustomerCode
	}
	return e.DedupChecked(intake.DedupKey(src.IntermediaryCode, code, e.Extracted.PONumber, e.ReceivedAt))
}

// complete creates the purchase order and settles the event in one
// transaction. An equivalent existing order marks the event DUPLICATE.
func (s *WebhookService) complete(ctx context.Context, src *source, e *intake.InboundEvent) (*trade.PurchaseOrder, error) {
	extracted := *e.Extracted
	res, err := s.resolve(ctx, src, e, &extracted)
	if err != nil {
		return nil, err
	}

	po, err := s.inboundOrder(res, e, extracted)
	if err != nil {
		return nil, err
	}

	stored, created, err := s.deps.Events.CompleteWithPurchaseOrder(ctx, e, po)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("Inbound purchase order created",
			zap.String("po_number", stored.PONumber),
			zap.String("dedup_key", e.DedupKey),
			zap.String("amount", stored.VendorAmount.String()),
		)
		if s.metrics != nil {
			s.metrics.RecordPurchaseOrderCreated(ctx, string(trade.SourceWebhook))
		}
	} else {
		s.logger.Info("Duplicate inbound purchase order",
			zap.String("dedup_key", e.DedupKey),
			zap.String("existing_po", stored.PONumber),
		)
	}
	return stored, nil
}

// inboundOrder builds the order an event settles into. An order naming a job
// is that job's manufacturer leg, priced from the job rather than the document.
func (s *WebhookService) inboundOrder(res *resolution, e *intake.InboundEvent, extracted intake.ExtractedPO) (*trade.PurchaseOrder, error) {
	if res.job != nil {
		po, err := trade.InboundManufacturerLeg(res.job, e.DedupKey)
		if err != nil {
			return nil, err
		}
		if !valueobject.WithinTolerance(extracted.Amount, po.VendorAmount, valueobject.CentTolerance) {
			s.logger.Warn("Inbound amount differs from job financials",
				zap.String("job_no", res.job.JobNo),
				zap.String("document_amount", extracted.Amount.String()),
				zap.String("leg_amount", po.VendorAmount.String()),
				zap.String("event_id", e.ID.String()),
			)
		}
		return po, nil
	}

	poNumber := extracted.PONumber
	if poNumber == "" {
		poNumber = e.DedupKey
	}
	return trade.NewPurchaseOrder(trade.NewPurchaseOrderParams{
		PONumber:        poNumber,
		Leg:             trade.LegInbound,
		Source:          trade.SourceWebhook,
		OriginCompanyID: res.intermediaryID,
		TargetCompanyID: res.receivingID,
		OriginalAmount:  extracted.Amount,
		VendorAmount:    extracted.Amount,
		ExternalRef:     e.DedupKey,
	})
}

// Reprocess sends a NEEDS_REVIEW or FAILED event through the pipeline again
func (s *WebhookService) Reprocess(ctx context.Context, eventID uuid.UUID) (*WebhookResponse, error) {
	e, err := s.deps.Events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := e.Restart(); err != nil {
		return nil, err
	}
	if err := s.deps.Events.Save(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("Reprocessing inbound event", zap.String("event_id", e.ID.String()))
	return s.run(ctx, e)
}

// ResumeStalled re-runs events that have sat in a non-terminal state for
// longer than olderThan. It returns how many settled.
func (s *WebhookService) ResumeStalled(ctx context.Context, olderThan time.Duration) (int, error) {
	events, err := s.deps.Events.FindStalled(ctx, time.Now().Add(-olderThan), stalledBatchSize)
	if err != nil {
		return 0, err
	}
	resumed := 0
	for i := range events {
		e := &events[i]
		if _, err := s.Process(ctx, e); err != nil {
			s.logger.Warn("Stalled inbound event still failing",
				zap.String("event_id", e.ID.String()),
				zap.String("state", string(e.State)),
				zap.Error(err),
			)
			continue
		}
		resumed++
	}
	return resumed, nil
}

// GetEvent returns an inbound event by id
func (s *WebhookService) GetEvent(ctx context.Context, id uuid.UUID) (*InboundEventResponse, error) {
	e, err := s.deps.Events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInboundEventResponse(e)
	return &resp, nil
}

// ListEvents lists inbound events, newest first
func (s *WebhookService) ListEvents(ctx context.Context, filter InboundEventListFilter) (shared.Paginated[InboundEventResponse], error) {
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	f := intake.InboundEventFilter{Source: filter.Source, Page: page, PageSize: size}
	if filter.State != "" {
		f.States = []intake.State{intake.State(filter.State)}
	}
	events, total, err := s.deps.Events.List(ctx, f)
	if err != nil {
		return shared.Paginated[InboundEventResponse]{}, err
	}
	items := make([]InboundEventResponse, len(events))
	for i := range events {
		items[i] = ToInboundEventResponse(&events[i])
	}
	return shared.NewPaginated(items, total, page, size), nil
}

func (s *WebhookService) recordOutcome(ctx context.Context, e *intake.InboundEvent) {
	if s.metrics != nil {
		s.metrics.RecordInboundEvent(ctx, e.Source, string(e.Channel), string(e.State))
	}
}

func (s *WebhookService) recordExtraction(ctx context.Context, d time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, intake.ErrParseValidationFailed):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	}
	s.metrics.RecordExtraction(ctx, d, outcome)
}
