package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const jobSequence = "job"

// GormJobRepository implements job.JobRepository using GORM
type GormJobRepository struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormJobRepository creates a new GormJobRepository. Pending domain events
// are written to outbox in the same transaction as the job.
func NewGormJobRepository(db *gorm.DB, outbox shared.OutboxEventSaver) *GormJobRepository {
	return &GormJobRepository{db: db, outbox: outbox}
}

// FindByID finds a job by its ID
func (r *GormJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	var m models.JobModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "job")
	}
	return m.ToDomain(), nil
}

// FindByJobNo finds a job by its job number
func (r *GormJobRepository) FindByJobNo(ctx context.Context, jobNo string) (*job.Job, error) {
	var m models.JobModel
	if err := r.db.WithContext(ctx).Where("job_no = ?", jobNo).First(&m).Error; err != nil {
		return nil, notFound(err, "job "+jobNo)
	}
	return m.ToDomain(), nil
}

// JobNumbers maps job ids to job numbers
func (r *GormJobRepository) JobNumbers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID    uuid.UUID
		JobNo string
	}
	if err := r.db.WithContext(ctx).Model(&models.JobModel{}).
		Select("id, job_no").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	for _, row := range rows {
		out[row.ID] = row.JobNo
	}
	return out, nil
}

// FindAll lists jobs. Supported filters: approval_status, customer_id, allocation_mode.
func (r *GormJobRepository) FindAll(ctx context.Context, filter shared.Filter) ([]job.Job, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.JobModel{})
	for _, key := range []string{"approval_status", "customer_id", "allocation_mode"} {
		if v, ok := filter.Filters[key]; ok && v != "" {
			q = q.Where(key+" = ?", v)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err)
	}

	var rows []models.JobModel
	if err := applyOrder(q, "jobs", filter).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, wrapErr(err)
	}

	jobs := make([]job.Job, len(rows))
	for i := range rows {
		jobs[i] = *rows[i].ToDomain()
	}
	return jobs, total, nil
}

// NextJobNo reserves the next generated job number
func (r *GormJobRepository) NextJobNo(ctx context.Context) (string, error) {
	var seq int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		seq, err = nextSequence(tx, jobSequence)
		return err
	})
	if err != nil {
		return "", wrapErr(err)
	}
	return fmt.Sprintf("J-%06d", seq), nil
}

// Create inserts a new job with its events
func (r *GormJobRepository) Create(ctx context.Context, j *job.Job) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.JobModelFromDomain(j)).Error; err != nil {
			return err
		}
		return flushEvents(ctx, tx, r.outbox, j)
	})
	if err != nil {
		if isDuplicate(err) {
			return shared.ErrAlreadyExists.WithMessage(fmt.Sprintf("job %s already exists", j.JobNo))
		}
		return wrapErr(err)
	}
	j.ClearDomainEvents()
	return nil
}

// Save writes a modified job. The aggregate's version must be exactly one
// ahead of the stored row, which is what every job mutation produces.
func (r *GormJobRepository) Save(ctx context.Context, j *job.Job) error {
	m := models.JobModelFromDomain(j)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.JobModel{}).
			Where("id = ? AND version = ?", j.ID, j.Version-1).
			Select("*").
			Omit("id", "created_at", "job_no").
			Updates(m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflict("job " + j.JobNo)
		}
		return flushEvents(ctx, tx, r.outbox, j)
	})
	if err != nil {
		return wrapErr(err)
	}
	j.ClearDomainEvents()
	return nil
}

var _ job.JobRepository = (*GormJobRepository)(nil)
