package repository

import (
	"context"
	"errors"
	"time"

	"homologacao/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrStaleVersion = errors.New("stale version")
)

type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	c.Version = 1
	return r.db.WithContext(ctx).Create(c).Error
}

// GetByID loads a case with its documents, signatures and active booking.
func (r *CaseRepository) GetByID(ctx context.Context, id int64) (*domain.Case, error) {
	var c domain.Case
	tx := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("Signatures").
		First(&c, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}

	var b domain.Booking
	err := r.db.WithContext(ctx).
		Where("case_id = ? AND status = ?", id, domain.BookingActive).
		First(&b).Error
	if err == nil {
		c.Booking = &b
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &c, nil
}

func (r *CaseRepository) List(ctx context.Context, status domain.CaseStatus, limit, offset int) ([]domain.Case, error) {
	q := r.db.WithContext(ctx).Model(&domain.Case{}).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var out []domain.Case
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SaveVersioned writes the mutable case fields guarded by the optimistic
// version column. A concurrent writer that got there first leaves zero
// rows affected and the caller sees ErrStaleVersion.
func (r *CaseRepository) SaveVersioned(ctx context.Context, c *domain.Case) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Case{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]any{
			"status":              c.Status,
			"remarks":             c.Remarks,
			"accepted_at":         c.AcceptedAt,
			"meeting_started_at":  c.MeetingStartedAt,
			"meeting_finished_at": c.MeetingFinishedAt,
			"version":             c.Version + 1,
			"updated_at":          time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}
	c.Version++
	return nil
}
