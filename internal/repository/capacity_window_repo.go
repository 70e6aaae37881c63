package repository

import (
	"context"
	"errors"

	"homologacao/internal/domain"

	"gorm.io/gorm"
)

type CapacityWindowRepository struct {
	db *gorm.DB
}

func NewCapacityWindowRepository(db *gorm.DB) *CapacityWindowRepository {
	return &CapacityWindowRepository{db: db}
}

func (r *CapacityWindowRepository) Create(ctx context.Context, w *domain.CapacityWindow) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *CapacityWindowRepository) GetByID(ctx context.Context, id int64) (*domain.CapacityWindow, error) {
	var w domain.CapacityWindow
	tx := r.db.WithContext(ctx).First(&w, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return &w, nil
}

func (r *CapacityWindowRepository) ListByUnion(ctx context.Context, unionID int64) ([]domain.CapacityWindow, error) {
	var out []domain.CapacityWindow
	err := r.db.WithContext(ctx).
		Where("union_id = ?", unionID).
		Order("weekday ASC, start_time ASC, responsible_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CapacityWindowRepository) ListByUnionAndWeekday(ctx context.Context, unionID int64, weekday int) ([]domain.CapacityWindow, error) {
	var out []domain.CapacityWindow
	err := r.db.WithContext(ctx).
		Where("union_id = ? AND weekday = ?", unionID, weekday).
		Order("start_time ASC, responsible_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CapacityWindowRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.CapacityWindow{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
