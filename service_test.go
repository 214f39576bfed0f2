package salon_test

import (
	"context"
	"errors"
	"testing"

	salon "github.com/phbpx/salon-reservations"
	"github.com/phbpx/salon-reservations/salontest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }
func intPtr(v int) *int { return &v }

func booking(stylist, date, tod, phone string) salon.NewReservation {
	return salon.NewReservation{
		CustomerName: strPtr("Ann"),
		PhoneNumber:  &phone,
		Date:         &date,
		Time:         &tod,
		StylistName:  &stylist,
		ServiceMenu:  strPtr("cut"),
	}
}

func newService() (*salon.ReservationService, *salontest.Store) {
	store := salontest.NewStore()
	return salon.NewReservationService(store), store
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	r, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "09:00:00", r.Time)
	assert.Equal(t, 60, r.DurationMinutes)
	assert.Equal(t, salon.StatusScheduled, r.Status)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestCreate_InvalidNeverReachesStore(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()
	store.FailWith(errors.New("store must not be called"))

	in := booking("Kim", "2025-06-01", "9:00", "555")
	in.DurationMinutes = salon.Minutes(0)

	_, err := svc.Create(ctx, in)
	assert.True(t, errors.Is(err, salon.ErrValidation))
}

func TestCreate_ConflictUntilCancelled(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	first, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, booking("Kim", "2025-06-01", "09:00:00", "777"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, salon.ErrSlotTaken))
	assert.Equal(t, "Stylist 'Kim' is already booked for 2025-06-01 at 09:00", err.Error())

	// Same time with another stylist is fine.
	_, err = svc.Create(ctx, booking("Lee", "2025-06-01", "9:00", "777"))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, salon.StatusCancelled, cancelled.Status)

	_, err = svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "777"))
	assert.NoError(t, err)
}

func TestCreate_StoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()
	store.FailWith(errors.New("connection refused"))

	_, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, salon.ErrSlotTaken))
	assert.False(t, errors.Is(err, salon.ErrValidation))
	assert.Contains(t, err.Error(), "checking availability: connection refused")
}

func TestModify(t *testing.T) {
	ctx := context.Background()

	t.Run("own slot", func(t *testing.T) {
		svc, _ := newService()
		r, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
		require.NoError(t, err)

		got, err := svc.Modify(ctx, r.ID, salon.Patch{
			Time:        strPtr("9:00"),
			StylistName: strPtr("Kim"),
			Notes:       strPtr("bring photos"),
		})
		require.NoError(t, err)
		assert.Equal(t, "09:00:00", got.Time)
		assert.Equal(t, "bring photos", *got.Notes)
		assert.Equal(t, "Ann", got.CustomerName)
	})

	t.Run("into taken slot", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Create(ctx, booking("Kim", "2025-06-01", "10:00", "555"))
		require.NoError(t, err)
		r, err := svc.Create(ctx, booking("Kim", "2025-06-01", "11:00", "777"))
		require.NoError(t, err)

		_, err = svc.Modify(ctx, r.ID, salon.Patch{Time: strPtr("10:00")})
		assert.True(t, errors.Is(err, salon.ErrSlotTaken))
	})

	t.Run("into slot freed by cancel", func(t *testing.T) {
		svc, _ := newService()
		other, err := svc.Create(ctx, booking("Kim", "2025-06-01", "10:00", "555"))
		require.NoError(t, err)
		r, err := svc.Create(ctx, booking("Kim", "2025-06-01", "11:00", "777"))
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, other.ID)
		require.NoError(t, err)

		got, err := svc.Modify(ctx, r.ID, salon.Patch{Time: strPtr("10:00"), DurationMinutes: intPtr(90)})
		require.NoError(t, err)
		assert.Equal(t, "10:00:00", got.Time)
		assert.Equal(t, 90, got.DurationMinutes)
	})

	t.Run("empty stylist only conflicts with empty stylist", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Create(ctx, booking("Kim", "2025-06-01", "10:00", "555"))
		require.NoError(t, err)
		r, err := svc.Create(ctx, booking("Lee", "2025-06-01", "11:00", "777"))
		require.NoError(t, err)

		got, err := svc.Modify(ctx, r.ID, salon.Patch{StylistName: strPtr(""), Time: strPtr("10:00")})
		require.NoError(t, err)
		assert.Equal(t, "", got.StylistName)
		assert.Equal(t, "10:00:00", got.Time)

		other, err := svc.Create(ctx, booking("Lee", "2025-06-01", "12:00", "888"))
		require.NoError(t, err)
		_, err = svc.Modify(ctx, other.ID, salon.Patch{StylistName: strPtr(""), Time: strPtr("10:00")})
		assert.True(t, errors.Is(err, salon.ErrSlotTaken))
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Modify(ctx, "0b6b3c1e-1a7e-4c1d-9d55-6c9c3c2f1a10", salon.Patch{})
		assert.True(t, errors.Is(err, salon.ErrReservationNotFound))
	})

	t.Run("non-positive duration", func(t *testing.T) {
		svc, _ := newService()
		r, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
		require.NoError(t, err)

		_, err = svc.Modify(ctx, r.ID, salon.Patch{DurationMinutes: intPtr(-30)})
		assert.True(t, errors.Is(err, salon.ErrValidation))

		rs, err := svc.Lookup(ctx, "555")
		require.NoError(t, err)
		assert.Equal(t, 60, rs[0].DurationMinutes)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Cancel(ctx, "0b6b3c1e-1a7e-4c1d-9d55-6c9c3c2f1a10")
	assert.True(t, errors.Is(err, salon.ErrReservationNotFound))

	r, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := svc.Cancel(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, salon.StatusCancelled, got.Status)
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Lookup(ctx, "555")
	assert.True(t, errors.Is(err, salon.ErrNoReservations))

	late, err := svc.Create(ctx, booking("Kim", "2025-06-02", "9:00", "555"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, booking("Kim", "2025-06-01", "14:00", "555"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, booking("Lee", "2025-06-01", "10:00", "555"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, booking("Lee", "2025-06-01", "11:00", "777"))
	require.NoError(t, err)

	rs, err := svc.Lookup(ctx, "555")
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, "2025-06-01", rs[0].Date)
	assert.Equal(t, "10:00:00", rs[0].Time)
	assert.Equal(t, "14:00:00", rs[1].Time)
	assert.Equal(t, late.ID, rs[2].ID)
}

func TestLookup_OnlyCancelled(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	r, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, r.ID)
	require.NoError(t, err)

	_, err = svc.Lookup(ctx, "555")
	assert.True(t, errors.Is(err, salon.ErrNoReservations))
}

func TestAvailability(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
	require.NoError(t, err)
	r, err := svc.Create(ctx, booking("Kim", "2025-06-01", "13:00", "555"))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, r.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, booking("Lee", "2025-06-01", "10:00", "777"))
	require.NoError(t, err)

	av, err := svc.Availability(ctx, "2025-06-01", "Kim")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00:00"}, av.BookedSlots)
	assert.Equal(t, []string{
		"10:00:00", "11:00:00", "12:00:00",
		"13:00:00", "14:00:00", "15:00:00", "16:00:00",
	}, av.AvailableSlots)
}

func TestAvailability_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Availability(ctx, "June 1st", "Kim")

	var verr *salon.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields(), 1)
	assert.Equal(t, "reservation_date", verr.Fields()[0].Field)
}

func TestAvailability_EmptyStylist(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, booking("", "2025-06-01", "15:00", "777"))
	require.NoError(t, err)

	av, err := svc.Availability(ctx, "2025-06-01", "")
	require.NoError(t, err)
	assert.Equal(t, "", av.StylistName)
	assert.Equal(t, []string{"15:00:00"}, av.BookedSlots)
}

func TestHasConflict_ExcludesSelf(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	r, err := svc.Create(ctx, booking("Kim", "2025-06-01", "9:00", "555"))
	require.NoError(t, err)

	taken, err := svc.HasConflict(ctx, "Kim", "2025-06-01", "09:00:00", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = svc.HasConflict(ctx, "Kim", "2025-06-01", "09:00:00", r.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}
