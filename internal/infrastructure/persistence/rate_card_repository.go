package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRateCardRepository implements pricing.RateCardRepository using GORM
type GormRateCardRepository struct {
	db *gorm.DB
}

// NewGormRateCardRepository creates a new GormRateCardRepository
func NewGormRateCardRepository(db *gorm.DB) *GormRateCardRepository {
	return &GormRateCardRepository{db: db}
}

// Lookup finds the entry for a size key; unknown sizes yield pricing.ErrUnknownSize
func (r *GormRateCardRepository) Lookup(ctx context.Context, sizeKey string) (*pricing.RateCardEntry, error) {
	key := pricing.NormalizeSizeKey(sizeKey)
	var m models.RateCardEntryModel
	if err := r.db.WithContext(ctx).Where("size_key = ?", key).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, pricing.ErrUnknownSize.WithMessage("no rate card entry for size " + key)
		}
		return nil, wrapErr(err)
	}
	return m.ToDomain(), nil
}

// FindByID finds an entry by ID
func (r *GormRateCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.RateCardEntry, error) {
	var m models.RateCardEntryModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "rate card entry")
	}
	return m.ToDomain(), nil
}

// FindAll returns every entry ordered by size key
func (r *GormRateCardRepository) FindAll(ctx context.Context) ([]pricing.RateCardEntry, error) {
	var rows []models.RateCardEntryModel
	if err := r.db.WithContext(ctx).Order("size_key").Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	out := make([]pricing.RateCardEntry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save inserts or updates an entry. A second entry for the same size is rejected.
func (r *GormRateCardRepository) Save(ctx context.Context, entry *pricing.RateCardEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(models.RateCardEntryModelFromDomain(entry)).Error; err != nil {
		if isDuplicate(err) {
			return shared.ErrAlreadyExists.WithMessage("rate card entry for " + entry.SizeKey + " already exists")
		}
		return wrapErr(err)
	}
	return nil
}

// CachedRateCard is a read-through in-process cache in front of a RateCard.
// Rate cards change rarely; Invalidate drops everything after an edit.
type CachedRateCard struct {
	next    pricing.RateCard
	mu      sync.RWMutex
	entries map[string]*pricing.RateCardEntry
}

// NewCachedRateCard wraps next
func NewCachedRateCard(next pricing.RateCard) *CachedRateCard {
	return &CachedRateCard{next: next, entries: make(map[string]*pricing.RateCardEntry)}
}

// Lookup implements pricing.RateCard
func (c *CachedRateCard) Lookup(ctx context.Context, sizeKey string) (*pricing.RateCardEntry, error) {
	key := pricing.NormalizeSizeKey(sizeKey)
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		cp := *e
		return &cp, nil
	}

	e, err := c.next.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	cp := *e
	return &cp, nil
}

// Invalidate empties the cache
func (c *CachedRateCard) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]*pricing.RateCardEntry)
	c.mu.Unlock()
}
