// Package salon books, moves and cancels salon appointments and answers
// which hourly slots a stylist still has free.
package salon

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultDurationMinutes is applied when a new reservation omits its duration.
const DefaultDurationMinutes = 60

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNoReservations      = errors.New("no scheduled reservations found")
	ErrSlotTaken           = errors.New("slot already booked")
	ErrValidation          = errors.New("invalid reservation")
)

// Status is the closed set of reservation states. StatusCompleted is part of
// the set but no operation transitions into it.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID              string    `json:"reservation_id" db:"reservation_id"`
	CustomerName    string    `json:"customer_name" db:"customer_name"`
	PhoneNumber     string    `json:"phone_number" db:"phone_number"`
	Date            string    `json:"reservation_date" db:"reservation_date"`
	Time            string    `json:"reservation_time" db:"reservation_time"`
	StylistName     string    `json:"stylist_name" db:"stylist_name"`
	ServiceMenu     string    `json:"service_menu" db:"service_menu"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Status          Status    `json:"status" db:"status"`
	Notes           *string   `json:"notes" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Patch holds the mutable fields of a reservation. Nil means "leave as is".
// Customer name has no field, so it never changes after creation.
type Patch struct {
	Date            *string `json:"reservation_date"`
	Time            *string `json:"reservation_time"`
	StylistName     *string `json:"stylist_name"`
	ServiceMenu     *string `json:"service_menu"`
	DurationMinutes *int    `json:"duration_minutes"`
	Notes           *string `json:"notes"`
}

// Apply returns a copy of r with every non-nil field of p written over it.
func (p Patch) Apply(r Reservation) Reservation {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.StylistName != nil {
		r.StylistName = *p.StylistName
	}
	if p.ServiceMenu != nil {
		r.ServiceMenu = *p.ServiceMenu
	}
	if p.DurationMinutes != nil {
		r.DurationMinutes = *p.DurationMinutes
	}
	if p.Notes != nil {
		notes := *p.Notes
		r.Notes = &notes
	}
	return r
}

// Filter selects reservations by equality on every non-nil field. A pointer to
// "" matches only the empty value. An empty Status matches any status and
// ExcludeID drops a single reservation from the match set.
type Filter struct {
	PhoneNumber *string
	StylistName *string
	Date        *string
	Time        *string
	Status      Status
	ExcludeID   string
}

// ReservationStore is the persistence boundary. Implementations give no
// multi-statement transactional guarantees; callers must not rely on them.
type ReservationStore interface {
	Insert(ctx context.Context, r Reservation) (Reservation, error)
	GetByID(ctx context.Context, id string) (Reservation, error)
	Update(ctx context.Context, id string, p Patch) (Reservation, error)
	SetStatus(ctx context.Context, id string, status Status) (Reservation, error)
	// Find returns matches ordered by date, then time.
	Find(ctx context.Context, f Filter) ([]Reservation, error)
}

// ConflictError reports the slot that is already taken.
type ConflictError struct {
	StylistName string
	Date        string
	Time        string
}

func (e *ConflictError) Error() string {
	hhmm := e.Time
	if len(hhmm) >= 5 {
		hhmm = hhmm[:5]
	}
	return fmt.Sprintf("Stylist '%s' is already booked for %s at %s", e.StylistName, e.Date, hhmm)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSlotTaken
}
