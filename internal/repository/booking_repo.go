package repository

import (
	"context"
	"errors"
	"time"

	"homologacao/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrBookingConflict is returned when a write would give one responsible
// two overlapping active bookings.
var ErrBookingConflict = errors.New("booking conflict")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	tx := r.db.WithContext(ctx).First(&b, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return &b, nil
}

func (r *BookingRepository) GetActiveByCase(ctx context.Context, caseID int64) (*domain.Booking, error) {
	var b domain.Booking
	tx := r.db.WithContext(ctx).
		Where("case_id = ? AND status = ?", caseID, domain.BookingActive).
		First(&b)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return &b, nil
}

func (r *BookingRepository) ListActiveByResponsibleAndDate(ctx context.Context, responsibleID int64, date string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("responsible_id = ? AND date = ? AND status = ?", responsibleID, date, domain.BookingActive).
		Order("start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountOverlapping counts active bookings for a responsible whose
// [start,end) intersects the given range, excluding one booking id
// (pass 0 to exclude nothing).
func (r *BookingRepository) CountOverlapping(ctx context.Context, responsibleID int64, start, end time.Time, excludeID int64) (int64, error) {
	var cnt int64
	q := `
SELECT COUNT(1)
FROM bookings
WHERE responsible_id = ?
  AND status = 'active'
  AND id <> ?
  AND start_time < ?
  AND end_time > ?
`
	tx := r.db.WithContext(ctx).Raw(q, responsibleID, excludeID, end, start).Scan(&cnt)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return cnt, nil
}

// CreateIfFree re-checks the overlap inside the insert transaction so two
// concurrent writers for the same responsible cannot both commit. On
// Postgres the idx_no_overbooking exclusion constraint (created by
// database.Migrate) is the last line of defence and its violation maps to
// ErrBookingConflict as well.
func (r *BookingRepository) CreateIfFree(ctx context.Context, b *domain.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		q := `
SELECT COUNT(1)
FROM bookings
WHERE responsible_id = ?
  AND status = 'active'
  AND start_time < ?
  AND end_time > ?
`
		if err := tx.Raw(q, b.ResponsibleID, b.EndTime, b.StartTime).Scan(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrBookingConflict
		}
		return tx.Create(b).Error
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23P01") {
			return ErrBookingConflict
		}
		return err
	}
	return nil
}

// UpdateResponsible rewrites the responsible on an existing booking after
// re-checking that the new responsible has no overlapping booking, all in
// one transaction.
func (r *BookingRepository) UpdateResponsible(ctx context.Context, bookingID, newResponsibleID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Booking
		if err := tx.First(&b, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var cnt int64
		q := `
SELECT COUNT(1)
FROM bookings
WHERE responsible_id = ?
  AND status = 'active'
  AND id <> ?
  AND start_time < ?
  AND end_time > ?
`
		if err := tx.Raw(q, newResponsibleID, b.ID, b.EndTime, b.StartTime).Scan(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrBookingConflict
		}

		return tx.Model(&domain.Booking{}).
			Where("id = ?", b.ID).
			Updates(map[string]any{
				"responsible_id": newResponsibleID,
				"updated_at":     time.Now().UTC(),
			}).Error
	})
}

func (r *BookingRepository) Cancel(ctx context.Context, bookingID int64) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", bookingID, domain.BookingActive).
		Updates(map[string]any{
			"status":     domain.BookingCancelled,
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookingRepository) SetMeetingLink(ctx context.Context, bookingID int64, link string) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{
			"meeting_link": link,
			"updated_at":   time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
