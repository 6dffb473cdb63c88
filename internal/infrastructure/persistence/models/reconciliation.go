package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/reconciliation"
)

// SyncLogModel is an append-only correction record
type SyncLogModel struct {
	ID          uuid.UUID              `gorm:"type:uuid;primaryKey"`
	Trigger     reconciliation.Trigger `gorm:"column:trigger_type;type:varchar(20);not null"`
	SubjectType string                 `gorm:"type:varchar(40);not null"`
	SubjectID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	Field       string                 `gorm:"type:varchar(50);not null"`
	OldValue    string                 `gorm:"type:varchar(100)"`
	NewValue    string                 `gorm:"type:varchar(100)"`
	ChangedBy   string                 `gorm:"type:varchar(100);not null"`
	Notes       string                 `gorm:"type:text"`
	Timestamp   time.Time              `gorm:"column:logged_at;not null;index"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the model to a sync log entry
func (m *SyncLogModel) ToDomain() reconciliation.SyncLog {
	return reconciliation.SyncLog{
		ID:          m.ID,
		Trigger:     m.Trigger,
		SubjectType: m.SubjectType,
		SubjectID:   m.SubjectID,
		Field:       m.Field,
		OldValue:    m.OldValue,
		NewValue:    m.NewValue,
		ChangedBy:   m.ChangedBy,
		Notes:       m.Notes,
		Timestamp:   m.Timestamp,
	}
}

// SyncLogModelFromDomain builds a model from a sync log entry
func SyncLogModelFromDomain(l *reconciliation.SyncLog) *SyncLogModel {
	return &SyncLogModel{
		ID:          l.ID,
		Trigger:     l.Trigger,
		SubjectType: l.SubjectType,
		SubjectID:   l.SubjectID,
		Field:       l.Field,
		OldValue:    l.OldValue,
		NewValue:    l.NewValue,
		ChangedBy:   l.ChangedBy,
		Notes:       l.Notes,
		Timestamp:   l.Timestamp,
	}
}
