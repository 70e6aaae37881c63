package scheduling

import (
	"context"
	"errors"
	"sort"
	"time"

	"homologacao/internal/domain"
	"homologacao/internal/repository"
)

// Availability expands capacity windows into bookable slots and manages
// the windows themselves.
type Availability struct {
	windows  WindowRepository
	bookings BookingRepository
}

func NewAvailability(windows WindowRepository, bookings BookingRepository) *Availability {
	return &Availability{windows: windows, bookings: bookings}
}

// ListSlots returns the free slots of a union for one date, ordered by
// start time then responsible id. Overlapping windows for the same
// responsible are expanded independently and may produce duplicate
// slots; booking either one hides everything it overlaps, so the
// duplicates cannot cause a double booking.
func (a *Availability) ListSlots(ctx context.Context, unionID int64, dateStr string) ([]domain.Slot, error) {
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrValidation
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	windows, err := a.windows.ListByUnionAndWeekday(ctx, unionID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}

	slots := make([]domain.Slot, 0)
	booked := make(map[int64][]domain.Booking)
	for _, w := range windows {
		expanded, err := expandWindow(w, day)
		if err != nil {
			return nil, err
		}
		if len(expanded) == 0 {
			continue
		}

		if _, ok := booked[w.ResponsibleID]; !ok {
			bs, err := a.bookings.ListActiveByResponsibleAndDate(ctx, w.ResponsibleID, dateStr)
			if err != nil {
				return nil, err
			}
			booked[w.ResponsibleID] = bs
		}

		for _, s := range expanded {
			if !overlapsAny(s, booked[w.ResponsibleID]) {
				slots = append(slots, s)
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].ResponsibleID < slots[j].ResponsibleID
	})

	return slots, nil
}

// expandWindow chunks one window into duration-length slots for the day.
// A slot that would run into the break restarts at the break end, and the
// window end is pushed out by the break length so the break displaces the
// grid instead of shrinking it.
func expandWindow(w domain.CapacityWindow, day time.Time) ([]domain.Slot, error) {
	start, err := atClock(day, w.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := atClock(day, w.EndTime)
	if err != nil {
		return nil, err
	}
	if w.SlotDurationMin <= 0 || !end.After(start) {
		return nil, nil
	}

	dur := time.Duration(w.SlotDurationMin) * time.Minute

	var breakStart, breakEnd time.Time
	var breakDur time.Duration
	if w.BreakStart != "" && w.BreakEnd != "" {
		breakStart, err = atClock(day, w.BreakStart)
		if err != nil {
			return nil, err
		}
		breakEnd, err = atClock(day, w.BreakEnd)
		if err != nil {
			return nil, err
		}
		breakDur = breakEnd.Sub(breakStart)
		if breakDur < 0 {
			breakDur = 0
		}
	}

	limit := end.Add(breakDur)
	out := make([]domain.Slot, 0)
	for s := start; !s.Add(dur).After(limit); {
		if breakDur > 0 && s.Before(breakEnd) && s.Add(dur).After(breakStart) {
			s = breakEnd
			continue
		}
		out = append(out, domain.Slot{
			ResponsibleID: w.ResponsibleID,
			Start:         s,
			End:           s.Add(dur),
		})
		s = s.Add(dur)
	}
	return out, nil
}

func overlapsAny(s domain.Slot, bookings []domain.Booking) bool {
	for _, b := range bookings {
		if s.Start.Before(b.EndTime) && s.End.After(b.StartTime) {
			return true
		}
	}
	return false
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, ErrValidation
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// CreateWindow validates and stores a recurring capacity rule.
func (a *Availability) CreateWindow(ctx context.Context, w *domain.CapacityWindow) error {
	if w.UnionID == 0 || w.ResponsibleID == 0 {
		return ErrValidation
	}
	if w.Weekday < 0 || w.Weekday > 6 {
		return ErrValidation
	}
	if w.SlotDurationMin <= 0 {
		return ErrValidation
	}

	start, err := time.Parse("15:04", w.StartTime)
	if err != nil {
		return ErrValidation
	}
	end, err := time.Parse("15:04", w.EndTime)
	if err != nil {
		return ErrValidation
	}
	if !end.After(start) {
		return ErrValidation
	}

	if (w.BreakStart == "") != (w.BreakEnd == "") {
		return ErrValidation
	}
	if w.BreakStart != "" {
		bs, err := time.Parse("15:04", w.BreakStart)
		if err != nil {
			return ErrValidation
		}
		be, err := time.Parse("15:04", w.BreakEnd)
		if err != nil {
			return ErrValidation
		}
		if be.Before(bs) {
			return ErrValidation
		}
		// break must lie fully inside [start, end)
		if bs.Before(start) || be.After(end) {
			return ErrValidation
		}
	}

	return a.windows.Create(ctx, w)
}

func (a *Availability) ListWindows(ctx context.Context, unionID int64) ([]domain.CapacityWindow, error) {
	return a.windows.ListByUnion(ctx, unionID)
}

func (a *Availability) DeleteWindow(ctx context.Context, unionID, windowID int64) error {
	w, err := a.windows.GetByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if w.UnionID != unionID {
		return ErrNotFound
	}
	return a.windows.Delete(ctx, windowID)
}
