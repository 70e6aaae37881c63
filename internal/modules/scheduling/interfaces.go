package scheduling

import (
	"context"
	"time"

	"homologacao/internal/domain"
)

// WindowRepository provides the recurring capacity rules.
type WindowRepository interface {
	Create(ctx context.Context, w *domain.CapacityWindow) error
	GetByID(ctx context.Context, id int64) (*domain.CapacityWindow, error)
	ListByUnion(ctx context.Context, unionID int64) ([]domain.CapacityWindow, error)
	ListByUnionAndWeekday(ctx context.Context, unionID int64, weekday int) ([]domain.CapacityWindow, error)
	Delete(ctx context.Context, id int64) error
}

// BookingRepository persists bookings; the writes that could double-book
// a responsible re-check overlap inside their own transaction.
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetActiveByCase(ctx context.Context, caseID int64) (*domain.Booking, error)
	ListActiveByResponsibleAndDate(ctx context.Context, responsibleID int64, date string) ([]domain.Booking, error)
	CountOverlapping(ctx context.Context, responsibleID int64, start, end time.Time, excludeID int64) (int64, error)
	CreateIfFree(ctx context.Context, b *domain.Booking) error
	UpdateResponsible(ctx context.Context, bookingID, newResponsibleID int64) error
	Cancel(ctx context.Context, bookingID int64) error
	SetMeetingLink(ctx context.Context, bookingID int64, link string) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListUnionMembers(ctx context.Context, unionID int64) ([]domain.User, error)
}
