package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanyRepository implements partner.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Company, error) {
	var m models.CompanyModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "company")
	}
	return m.ToDomain(), nil
}

// FindByCode finds a company by its short code, case-insensitively
func (r *GormCompanyRepository) FindByCode(ctx context.Context, code string) (*partner.Company, error) {
	var m models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", partner.NormalizeCode(code)).
		Order("created_at").
		First(&m).Error; err != nil {
		return nil, notFound(err, "company "+code)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads companies by ID; missing IDs are simply absent from the map
func (r *GormCompanyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*partner.Company, error) {
	out := make(map[uuid.UUID]*partner.Company, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.CompanyModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// Save inserts or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, c *partner.Company) error {
	return wrapErr(r.db.WithContext(ctx).Save(models.CompanyModelFromDomain(c)).Error)
}
