// Package event exposes operator actions on the transactional outbox: inspecting
// events whose handlers kept failing (a cascade that could not run, an invoice
// notice that could not be sent) and putting them back in line.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const deadLetterBatch = 100

// OutboxService manages dead-lettered outbox entries
type OutboxService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

// NewOutboxService creates a new outbox service
func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxService{repo: repo, logger: logger}
}

// OutboxEntryDTO is the operator view of an outbox entry. The payload is omitted.
type OutboxEntryDTO struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// OutboxStatsDTO counts entries per status
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// DeadLetters pages through entries that exhausted their retries
func (s *OutboxService) DeadLetters(ctx context.Context, page, pageSize int) (shared.Paginated[OutboxEntryDTO], error) {
	filter := shared.Filter{Page: page, PageSize: pageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	entries, total, err := s.repo.FindDead(ctx, filter.Page, filter.Limit())
	if err != nil {
		return shared.Paginated[OutboxEntryDTO]{}, fmt.Errorf("find dead letters: %w", err)
	}
	items := make([]OutboxEntryDTO, len(entries))
	for i, e := range entries {
		items[i] = toOutboxEntryDTO(e)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit()), nil
}

// Entry returns one outbox entry
func (s *OutboxService) Entry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// Retry puts one dead entry back to PENDING so the processor delivers it again
func (s *OutboxService) Retry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.ResetForRetry(); err != nil {
		return nil, shared.ErrInvalidState.WithMessage(err.Error())
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update outbox entry %s: %w", id, err)
	}
	s.logger.Info("Dead letter requeued",
		zap.String("entry_id", id.String()),
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_id", entry.AggregateID.String()),
	)
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryAll requeues every dead entry and returns how many were reset.
// Requeued entries leave the dead set, so the first page is read until empty.
func (s *OutboxService) RetryAll(ctx context.Context) (int64, error) {
	var count int64
	for {
		entries, _, err := s.repo.FindDead(ctx, 1, deadLetterBatch)
		if err != nil {
			return count, fmt.Errorf("find dead letters: %w", err)
		}
		progressed := false
		for _, entry := range entries {
			if err := entry.ResetForRetry(); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Error("Failed to requeue dead letter", zap.String("entry_id", entry.ID.String()), zap.Error(err))
				continue
			}
			progressed = true
			count++
		}
		if len(entries) < deadLetterBatch || !progressed {
			break
		}
	}
	s.logger.Info("Dead letters requeued", zap.Int64("count", count))
	return count, nil
}

// Stats counts entries by status
func (s *OutboxService) Stats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count outbox entries: %w", err)
	}
	stats := &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *OutboxService) find(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("outbox entry %s not found", id))
	}
	return entry, nil
}

func toOutboxEntryDTO(e *shared.OutboxEntry) OutboxEntryDTO {
	return OutboxEntryDTO{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
	}
}
