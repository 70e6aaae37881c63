package repository

import (
	"context"
	"errors"
	"time"

	"homologacao/internal/domain"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	tx := r.db.WithContext(ctx).Where("id = ?", id).First(&d)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return &d, nil
}

// GetCurrentByCaseAndType returns the one non-rejected document for the
// pair, or ErrNotFound when the type is missing or only rejected rows
// remain.
func (r *DocumentRepository) GetCurrentByCaseAndType(ctx context.Context, caseID int64, t domain.DocumentType) (*domain.Document, error) {
	var d domain.Document
	tx := r.db.WithContext(ctx).
		Where("case_id = ? AND type = ? AND status <> ?", caseID, t, domain.DocumentRejected).
		First(&d)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return &d, nil
}

func (r *DocumentRepository) ListByCase(ctx context.Context, caseID int64) ([]domain.Document, error) {
	var out []domain.Document
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetReview writes a review verdict guarded by the expected current
// status, so two reviewers racing on the same document cannot silently
// overwrite each other: the loser matches zero rows and gets
// ErrStaleVersion.
func (r *DocumentRepository) SetReview(ctx context.Context, id string, status domain.DocumentStatus, reason string, reviewerID int64, from ...domain.DocumentStatus) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":           status,
			"rejection_reason": reason,
			"reviewed_by":      reviewerID,
			"reviewed_at":      time.Now().UTC(),
			"updated_at":       time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		var cnt int64
		if err := r.db.WithContext(ctx).
			Model(&domain.Document{}).
			Where("id = ?", id).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return ErrNotFound
		}
		return ErrStaleVersion
	}
	return nil
}
