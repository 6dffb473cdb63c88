package reconciliation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
)

// Trigger names what caused a correction
type Trigger string

const (
	TriggerPOUpdate       Trigger = "PO_UPDATE"
	TriggerManualAudit    Trigger = "MANUAL_AUDIT"
	TriggerScheduledAudit Trigger = "SCHEDULED_AUDIT"
)

// IsValid checks if the trigger is valid
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerPOUpdate, TriggerManualAudit, TriggerScheduledAudit:
		return true
	}
	return false
}

// SyncLog is one recorded correction. Rows are append-only.
type SyncLog struct {
	ID          uuid.UUID
	Trigger     Trigger
	SubjectType string
	SubjectID   uuid.UUID
	Field       string
	OldValue    string
	NewValue    string
	ChangedBy   string
	Notes       string
	Timestamp   time.Time
}

// NewSyncLog creates a log row for a field change on a subject
func NewSyncLog(trigger Trigger, subjectType string, subjectID uuid.UUID, field, oldValue, newValue, changedBy, notes string) (*SyncLog, error) {
	if !trigger.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRIGGER", "Unknown sync trigger")
	}
	if subjectID == uuid.Nil || field == "" {
		return nil, shared.ErrInvalidInput.WithMessage("sync log requires a subject and field")
	}
	if strings.TrimSpace(changedBy) == "" {
		changedBy = "system"
	}
	return &SyncLog{
		ID:          uuid.New(),
		Trigger:     trigger,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Field:       field,
		OldValue:    oldValue,
		NewValue:    newValue,
		ChangedBy:   changedBy,
		Notes:       notes,
		Timestamp:   time.Now(),
	}, nil
}

// SyncLogFilter narrows List
type SyncLogFilter struct {
	SubjectID *uuid.UUID
	Trigger   Trigger
	Since     *time.Time
	Page      int
	PageSize  int
}

// SyncLogRepository stores correction history. It has no update or delete.
type SyncLogRepository interface {
	Append(ctx context.Context, log *SyncLog) error
	List(ctx context.Context, filter SyncLogFilter) ([]SyncLog, int64, error)
	CountBySubject(ctx context.Context, subjectID uuid.UUID) (int64, error)
}
