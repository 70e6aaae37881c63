package repository

import (
	"context"
	"errors"
	"strings"

	"homologacao/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateSignature is returned when the unique (case_id, party)
// index rejects a second signature row.
var ErrDuplicateSignature = errors.New("signature already exists")

type SignatureRepository struct {
	db *gorm.DB
}

func NewSignatureRepository(db *gorm.DB) *SignatureRepository {
	return &SignatureRepository{db: db}
}

func (r *SignatureRepository) Create(ctx context.Context, s *domain.Signature) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSignature
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite reports unique violations by message only
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

func (r *SignatureRepository) ListByCase(ctx context.Context, caseID int64) ([]domain.Signature, error) {
	var out []domain.Signature
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("signed_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SignatureRepository) ExistsByCaseAndParty(ctx context.Context, caseID int64, party domain.Party) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.Signature{}).
		Where("case_id = ? AND party = ?", caseID, party).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}
