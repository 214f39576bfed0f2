package salon

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/phbpx/salon-reservations")

// ReservationService runs every reservation operation against a single
// injected store.
//
// The conflict check and the write that follows it are separate round trips.
// Two requests for the same slot can both pass the check and both be stored.
// Making the slot exclusive requires the store to enforce it, for example a
// partial unique index on (stylist_name, reservation_date, reservation_time)
// WHERE status = 'scheduled'.
type ReservationService struct {
	store ReservationStore
}

func NewReservationService(store ReservationStore) *ReservationService {
	return &ReservationService{
		store: store,
	}
}

// HasConflict reports whether a scheduled reservation other than excludeID
// already holds stylist/date/tod. tod must already be normalized.
func (s *ReservationService) HasConflict(ctx context.Context, stylist, date, tod, excludeID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "salon.HasConflict")
	span.SetAttributes(
		attribute.String("stylist", stylist),
		attribute.String("date", date),
		attribute.String("time", tod),
	)
	defer span.End()

	matches, err := s.store.Find(ctx, Filter{
		StylistName: &stylist,
		Date:        &date,
		Time:        &tod,
		Status:      StatusScheduled,
		ExcludeID:   excludeID,
	})
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("checking availability: %w", err)
	}
	return len(matches) > 0, nil
}

func (s *ReservationService) Create(ctx context.Context, in NewReservation) (Reservation, error) {
	r, err := in.Validate()
	if err != nil {
		return Reservation{}, err
	}

	taken, err := s.HasConflict(ctx, r.StylistName, r.Date, r.Time, "")
	if err != nil {
		return Reservation{}, err
	}
	if taken {
		return Reservation{}, &ConflictError{StylistName: r.StylistName, Date: r.Date, Time: r.Time}
	}

	created, err := s.store.Insert(ctx, r)
	if err != nil {
		return Reservation{}, fmt.Errorf("creating reservation: %w", err)
	}
	return created, nil
}

// Lookup returns the scheduled reservations booked under phone.
func (s *ReservationService) Lookup(ctx context.Context, phone string) ([]Reservation, error) {
	rs, err := s.store.Find(ctx, Filter{PhoneNumber: &phone, Status: StatusScheduled})
	if err != nil {
		return nil, fmt.Errorf("looking up reservations: %w", err)
	}
	if len(rs) == 0 {
		return nil, fmt.Errorf("%w for phone number: %s", ErrNoReservations, phone)
	}
	return rs, nil
}

func (s *ReservationService) Modify(ctx context.Context, id string, p Patch) (Reservation, error) {
	p, err := p.Validate()
	if err != nil {
		return Reservation{}, err
	}

	existing, err := s.get(ctx, id)
	if err != nil {
		return Reservation{}, err
	}

	// The target slot is re-checked even when the patch leaves it unchanged;
	// excluding id lets a reservation be saved over its own slot.
	next := p.Apply(existing)
	taken, err := s.HasConflict(ctx, next.StylistName, next.Date, next.Time, id)
	if err != nil {
		return Reservation{}, err
	}
	if taken {
		return Reservation{}, &ConflictError{StylistName: next.StylistName, Date: next.Date, Time: next.Time}
	}

	updated, err := s.store.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return Reservation{}, fmt.Errorf("%w: %s", ErrReservationNotFound, id)
		}
		return Reservation{}, fmt.Errorf("modifying reservation: %w", err)
	}
	return updated, nil
}

// Cancel moves a reservation to StatusCancelled. Cancelling twice is a no-op
// that still returns the record.
func (s *ReservationService) Cancel(ctx context.Context, id string) (Reservation, error) {
	if _, err := s.get(ctx, id); err != nil {
		return Reservation{}, err
	}

	r, err := s.store.SetStatus(ctx, id, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return Reservation{}, fmt.Errorf("%w: %s", ErrReservationNotFound, id)
		}
		return Reservation{}, fmt.Errorf("cancelling reservation: %w", err)
	}
	return r, nil
}

// Availability reports the free hourly slots of stylist on date. An empty
// stylist name is matched literally.
func (s *ReservationService) Availability(ctx context.Context, date, stylist string) (Availability, error) {
	date, err := ParseDate(date)
	if err != nil {
		return Availability{}, asValidationError(err)
	}

	scheduled, err := s.store.Find(ctx, Filter{StylistName: &stylist, Date: &date, Status: StatusScheduled})
	if err != nil {
		return Availability{}, fmt.Errorf("checking availability: %w", err)
	}
	return ComputeAvailability(date, stylist, scheduled), nil
}

func (s *ReservationService) get(ctx context.Context, id string) (Reservation, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return Reservation{}, fmt.Errorf("%w: %s", ErrReservationNotFound, id)
		}
		return Reservation{}, fmt.Errorf("fetching reservation: %w", err)
	}
	return r, nil
}
