package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homologacao/internal/domain"
	"homologacao/internal/pkg/lock"
	"homologacao/internal/repository"
)

const bookingLockTTL = 10 * time.Second

// Coordinator exclusively assigns a case to one slot/responsible pair.
// The per-(responsible, date) lock covers the whole check-then-write
// window; a caller that loses the race gets ErrSlotUnavailable and is
// expected to re-query ListSlots.
type Coordinator struct {
	availability *Availability
	bookings     BookingRepository
	users        UserRepository
	locker       lock.Locker
}

func NewCoordinator(availability *Availability, bookings BookingRepository, users UserRepository, locker lock.Locker) *Coordinator {
	return &Coordinator{
		availability: availability,
		bookings:     bookings,
		users:        users,
		locker:       locker,
	}
}

// SlotRequest identifies the slot a caller picked from ListSlots.
type SlotRequest struct {
	ResponsibleID int64
	Start         time.Time
	End           time.Time
}

func bookingLockKey(responsibleID int64, date string) string {
	return fmt.Sprintf("booking:%d:%s", responsibleID, date)
}

// Book re-validates the chosen slot against the current listing under
// the lock and only then writes the booking. The insert itself re-checks
// overlap in its transaction, so even a lost lock cannot double-book.
func (c *Coordinator) Book(ctx context.Context, cs *domain.Case, req SlotRequest) (*domain.Booking, error) {
	if req.ResponsibleID == 0 || !req.End.After(req.Start) {
		return nil, ErrValidation
	}

	start := req.Start.UTC()
	end := req.End.UTC()
	date := start.Format("2006-01-02")
	if end.Format("2006-01-02") != date {
		return nil, ErrValidation
	}

	key := bookingLockKey(req.ResponsibleID, date)
	ok, err := c.locker.Lock(ctx, key, bookingLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSlotUnavailable
	}
	defer func() { _ = c.locker.Unlock(ctx, key) }()

	free, err := c.availability.ListSlots(ctx, cs.UnionID, date)
	if err != nil {
		return nil, err
	}
	if !containsSlot(free, req.ResponsibleID, start, end) {
		return nil, ErrSlotUnavailable
	}

	b := &domain.Booking{
		CaseID:        cs.ID,
		UnionID:       cs.UnionID,
		ResponsibleID: req.ResponsibleID,
		Date:          date,
		StartTime:     start,
		EndTime:       end,
		Status:        domain.BookingActive,
	}

	if err := c.bookings.CreateIfFree(ctx, b); err != nil {
		if errors.Is(err, repository.ErrBookingConflict) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	return b, nil
}

func containsSlot(slots []domain.Slot, responsibleID int64, start, end time.Time) bool {
	for _, s := range slots {
		if s.ResponsibleID == responsibleID && s.Start.Equal(start) && s.End.Equal(end) {
			return true
		}
	}
	return false
}

func (c *Coordinator) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := c.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// AvailableResponsibles returns the union members free for the booking's
// exact time range. The booking's own slot does not count against its
// current responsible.
func (c *Coordinator) AvailableResponsibles(ctx context.Context, bookingID int64) ([]domain.User, error) {
	b, err := c.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	members, err := c.users.ListUnionMembers(ctx, b.UnionID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.User, 0, len(members))
	for _, u := range members {
		cnt, err := c.bookings.CountOverlapping(ctx, u.ID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return nil, err
		}
		if cnt == 0 {
			out = append(out, u)
		}
	}
	return out, nil
}

// Reassign moves an existing booking to another responsible without
// touching its time range.
func (c *Coordinator) Reassign(ctx context.Context, bookingID, newResponsibleID int64) (*domain.Booking, error) {
	b, err := c.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingActive {
		return nil, ErrValidation
	}

	u, err := c.users.GetByID(ctx, newResponsibleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnavailableResponsible
		}
		return nil, err
	}
	if u.Role != domain.RoleUnion || u.UnionID != b.UnionID {
		return nil, ErrUnavailableResponsible
	}

	key := bookingLockKey(newResponsibleID, b.Date)
	ok, err := c.locker.Lock(ctx, key, bookingLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnavailableResponsible
	}
	defer func() { _ = c.locker.Unlock(ctx, key) }()

	if err := c.bookings.UpdateResponsible(ctx, bookingID, newResponsibleID); err != nil {
		if errors.Is(err, repository.ErrBookingConflict) {
			return nil, ErrUnavailableResponsible
		}
		return nil, err
	}

	return c.GetBooking(ctx, bookingID)
}

// CancelForCase releases a case's active booking. The case transition
// that goes with it belongs to the state machine, not here.
func (c *Coordinator) CancelForCase(ctx context.Context, caseID int64) error {
	b, err := c.bookings.GetActiveByCase(ctx, caseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return c.bookings.Cancel(ctx, b.ID)
}

func (c *Coordinator) SetMeetingLink(ctx context.Context, bookingID int64, link string) (*domain.Booking, error) {
	if link == "" {
		return nil, ErrValidation
	}
	if err := c.bookings.SetMeetingLink(ctx, bookingID, link); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c.GetBooking(ctx, bookingID)
}
