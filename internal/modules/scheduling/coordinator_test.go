package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"homologacao/internal/domain"
	"homologacao/internal/pkg/lock"
	"homologacao/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type coordinatorFixture struct {
	db          *gorm.DB
	users       *repository.UserRepository
	windows     *repository.CapacityWindowRepository
	bookings    *repository.BookingRepository
	coordinator *Coordinator
}

func setupCoordinator(t *testing.T) *coordinatorFixture {
	t.Helper()
	db := setupSchedulingDB(t)

	users := repository.NewUserRepository(db)
	windows := repository.NewCapacityWindowRepository(db)
	bookings := repository.NewBookingRepository(db)
	availability := NewAvailability(windows, bookings)

	return &coordinatorFixture{
		db:          db,
		users:       users,
		windows:     windows,
		bookings:    bookings,
		coordinator: NewCoordinator(availability, bookings, users, lock.NewMemoryLock()),
	}
}

func (f *coordinatorFixture) seedUnionMember(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{Email: name + "@sindicato.local", Name: name, Role: domain.RoleUnion, UnionID: 1}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *coordinatorFixture) seedMorningWindow(t *testing.T, responsibleID int64) {
	t.Helper()
	require.NoError(t, f.windows.Create(context.Background(), &domain.CapacityWindow{
		UnionID:         1,
		ResponsibleID:   responsibleID,
		Weekday:         1,
		StartTime:       "08:00",
		EndTime:         "12:00",
		SlotDurationMin: 30,
	}))
}

func TestBook_Success(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	f.seedMorningWindow(t, ana.ID)

	cs := &domain.Case{ID: 1, UnionID: 1}
	b, err := f.coordinator.Book(ctx, cs, SlotRequest{
		ResponsibleID: ana.ID,
		Start:         mondayAt(9, 0),
		End:           mondayAt(9, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingActive, b.Status)
	assert.Equal(t, "2026-08-31", b.Date)
	assert.Equal(t, ana.ID, b.ResponsibleID)
	assert.NotZero(t, b.ID)
}

func TestBook_SlotNotInListing(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	f.seedMorningWindow(t, ana.ID)

	cs := &domain.Case{ID: 1, UnionID: 1}

	// off-grid start
	_, err := f.coordinator.Book(ctx, cs, SlotRequest{ResponsibleID: ana.ID, Start: mondayAt(9, 10), End: mondayAt(9, 40)})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// outside the window
	_, err = f.coordinator.Book(ctx, cs, SlotRequest{ResponsibleID: ana.ID, Start: mondayAt(13, 0), End: mondayAt(13, 30)})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBook_TakenSlot(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	f.seedMorningWindow(t, ana.ID)

	req := SlotRequest{ResponsibleID: ana.ID, Start: mondayAt(8, 0), End: mondayAt(8, 30)}

	_, err := f.coordinator.Book(ctx, &domain.Case{ID: 1, UnionID: 1}, req)
	require.NoError(t, err)

	_, err = f.coordinator.Book(ctx, &domain.Case{ID: 2, UnionID: 1}, req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBook_ConcurrentSingleWinner(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	f.seedMorningWindow(t, ana.ID)

	req := SlotRequest{ResponsibleID: ana.ID, Start: mondayAt(10, 0), End: mondayAt(10, 30)}

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coordinator.Book(ctx, &domain.Case{ID: int64(i + 1), UnionID: 1}, req)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotUnavailable)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestBook_Validation(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()
	cs := &domain.Case{ID: 1, UnionID: 1}

	_, err := f.coordinator.Book(ctx, cs, SlotRequest{ResponsibleID: 0, Start: mondayAt(8, 0), End: mondayAt(8, 30)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.coordinator.Book(ctx, cs, SlotRequest{ResponsibleID: 1, Start: mondayAt(8, 30), End: mondayAt(8, 0)})
	assert.ErrorIs(t, err, ErrValidation)

	// spans midnight
	_, err = f.coordinator.Book(ctx, cs, SlotRequest{ResponsibleID: 1, Start: mondayAt(23, 45), End: mondayAt(23, 45).Add(30 * time.Minute)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReassign(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	bruno := f.seedUnionMember(t, "bruno")
	f.seedMorningWindow(t, ana.ID)
	f.seedMorningWindow(t, bruno.ID)

	b, err := f.coordinator.Book(ctx, &domain.Case{ID: 1, UnionID: 1}, SlotRequest{
		ResponsibleID: ana.ID, Start: mondayAt(8, 0), End: mondayAt(8, 30),
	})
	require.NoError(t, err)

	moved, err := f.coordinator.Reassign(ctx, b.ID, bruno.ID)
	require.NoError(t, err)
	assert.Equal(t, bruno.ID, moved.ResponsibleID)
	assert.True(t, moved.StartTime.Equal(b.StartTime))
}

func TestReassign_OutsiderRejected(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	f.seedMorningWindow(t, ana.ID)

	other := &domain.User{Email: "x@outro.local", Name: "Outro", Role: domain.RoleUnion, UnionID: 2}
	require.NoError(t, f.users.Create(ctx, other))

	b, err := f.coordinator.Book(ctx, &domain.Case{ID: 1, UnionID: 1}, SlotRequest{
		ResponsibleID: ana.ID, Start: mondayAt(8, 0), End: mondayAt(8, 30),
	})
	require.NoError(t, err)

	_, err = f.coordinator.Reassign(ctx, b.ID, other.ID)
	assert.ErrorIs(t, err, ErrUnavailableResponsible)

	_, err = f.coordinator.Reassign(ctx, b.ID, 9999)
	assert.ErrorIs(t, err, ErrUnavailableResponsible)
}

func TestReassign_BusyResponsibleRejected(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	bruno := f.seedUnionMember(t, "bruno")
	f.seedMorningWindow(t, ana.ID)
	f.seedMorningWindow(t, bruno.ID)

	// bruno is already meeting someone at 08:00
	_, err := f.coordinator.Book(ctx, &domain.Case{ID: 1, UnionID: 1}, SlotRequest{
		ResponsibleID: bruno.ID, Start: mondayAt(8, 0), End: mondayAt(8, 30),
	})
	require.NoError(t, err)

	b, err := f.coordinator.Book(ctx, &domain.Case{ID: 2, UnionID: 1}, SlotRequest{
		ResponsibleID: ana.ID, Start: mondayAt(8, 0), End: mondayAt(8, 30),
	})
	require.NoError(t, err)

	_, err = f.coordinator.Reassign(ctx, b.ID, bruno.ID)
	assert.ErrorIs(t, err, ErrUnavailableResponsible)
}

func TestAvailableResponsibles(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	bruno := f.seedUnionMember(t, "bruno")
	carla := f.seedUnionMember(t, "carla")
	f.seedMorningWindow(t, ana.ID)
	f.seedMorningWindow(t, bruno.ID)

	b, err := f.coordinator.Book(ctx, &domain.Case{ID: 1, UnionID: 1}, SlotRequest{
		ResponsibleID: ana.ID, Start: mondayAt(8, 0), End: mondayAt(8, 30),
	})
	require.NoError(t, err)

	// bruno collides with the booking's range
	_, err = f.coordinator.Book(ctx, &domain.Case{ID: 2, UnionID: 1}, SlotRequest{
		ResponsibleID: bruno.ID, Start: mondayAt(8, 0), End: mondayAt(8, 30),
	})
	require.NoError(t, err)

	free, err := f.coordinator.AvailableResponsibles(ctx, b.ID)
	require.NoError(t, err)

	ids := make([]int64, 0, len(free))
	for _, u := range free {
		ids = append(ids, u.ID)
	}
	// the booking's own slot does not count against ana
	assert.Equal(t, []int64{ana.ID, carla.ID}, ids)
}

func TestCancelForCase(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	f.seedMorningWindow(t, ana.ID)

	req := SlotRequest{ResponsibleID: ana.ID, Start: mondayAt(8, 0), End: mondayAt(8, 30)}
	_, err := f.coordinator.Book(ctx, &domain.Case{ID: 1, UnionID: 1}, req)
	require.NoError(t, err)

	require.NoError(t, f.coordinator.CancelForCase(ctx, 1))

	// the slot is bookable again
	_, err = f.coordinator.Book(ctx, &domain.Case{ID: 2, UnionID: 1}, req)
	require.NoError(t, err)

	assert.ErrorIs(t, f.coordinator.CancelForCase(ctx, 999), ErrNotFound)
}

func TestSetMeetingLink(t *testing.T) {
	f := setupCoordinator(t)
	ctx := context.Background()

	ana := f.seedUnionMember(t, "ana")
	f.seedMorningWindow(t, ana.ID)

	b, err := f.coordinator.Book(ctx, &domain.Case{ID: 1, UnionID: 1}, SlotRequest{
		ResponsibleID: ana.ID, Start: mondayAt(8, 0), End: mondayAt(8, 30),
	})
	require.NoError(t, err)

	updated, err := f.coordinator.SetMeetingLink(ctx, b.ID, "https://meet.example/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://meet.example/abc", updated.MeetingLink)

	_, err = f.coordinator.SetMeetingLink(ctx, b.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
}
