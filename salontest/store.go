// Package salontest provides an in-memory salon.ReservationStore for tests.
package salontest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	salon "github.com/phbpx/salon-reservations"
)

type Store struct {
	mu   sync.Mutex
	rows map[string]salon.Reservation
	err  error
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		rows: make(map[string]salon.Reservation),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// FailWith makes every subsequent call return err. A nil err clears it.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) Insert(_ context.Context, r salon.Reservation) (salon.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return salon.Reservation{}, s.err
	}

	now := s.now()
	r.ID = uuid.NewString()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.rows[r.ID] = r
	return r, nil
}

func (s *Store) GetByID(_ context.Context, id string) (salon.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return salon.Reservation{}, s.err
	}

	r, ok := s.rows[id]
	if !ok {
		return salon.Reservation{}, salon.ErrReservationNotFound
	}
	return r, nil
}

func (s *Store) Update(_ context.Context, id string, p salon.Patch) (salon.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return salon.Reservation{}, s.err
	}

	r, ok := s.rows[id]
	if !ok {
		return salon.Reservation{}, salon.ErrReservationNotFound
	}
	r = p.Apply(r)
	r.UpdatedAt = s.now()
	s.rows[id] = r
	return r, nil
}

func (s *Store) SetStatus(_ context.Context, id string, status salon.Status) (salon.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return salon.Reservation{}, s.err
	}

	r, ok := s.rows[id]
	if !ok {
		return salon.Reservation{}, salon.ErrReservationNotFound
	}
	r.Status = status
	r.UpdatedAt = s.now()
	s.rows[id] = r
	return r, nil
}

func (s *Store) Find(_ context.Context, f salon.Filter) ([]salon.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	var out []salon.Reservation
	for _, r := range s.rows {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func matches(r salon.Reservation, f salon.Filter) bool {
	switch {
	case f.ExcludeID != "" && r.ID == f.ExcludeID:
		return false
	case f.PhoneNumber != nil && r.PhoneNumber != *f.PhoneNumber:
		return false
	case f.StylistName != nil && r.StylistName != *f.StylistName:
		return false
	case f.Date != nil && r.Date != *f.Date:
		return false
	case f.Time != nil && r.Time != *f.Time:
		return false
	case f.Status != "" && r.Status != f.Status:
		return false
	}
	return true
}

var _ salon.ReservationStore = (*Store)(nil)
