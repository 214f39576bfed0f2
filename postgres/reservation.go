package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	salon "github.com/phbpx/salon-reservations"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const (
	checkViolation            = "23514"
	invalidTextRepresentation = "22P02"
	invalidDatetimeFormat     = "22007"
)

// Date and time come back as text so they keep the exact layouts the API
// speaks, whatever the driver would otherwise decode them into.
const selectColumns = `
	reservation_id,
	customer_name,
	phone_number,
	to_char(reservation_date, 'YYYY-MM-DD') AS reservation_date,
	to_char(reservation_time, 'HH24:MI:SS') AS reservation_time,
	stylist_name,
	service_menu,
	duration_minutes,
	status,
	notes,
	created_at,
	updated_at`

type ReservationStore struct {
	db *sqlx.DB
}

func NewReservationStore(db *sqlx.DB) salon.ReservationStore {
	return &ReservationStore{
		db: db,
	}
}

func (rs ReservationStore) Insert(ctx context.Context, r salon.Reservation) (salon.Reservation, error) {
	query := `
	INSERT INTO salon_reservations (
		customer_name, phone_number, reservation_date, reservation_time,
		stylist_name, service_menu, duration_minutes, status, notes
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9
	)
	RETURNING` + selectColumns

	var out salon.Reservation
	err := rs.db.GetContext(ctx, &out, query,
		r.CustomerName,
		r.PhoneNumber,
		r.Date,
		r.Time,
		r.StylistName,
		r.ServiceMenu,
		r.DurationMinutes,
		string(r.Status),
		r.Notes,
	)
	if err != nil {
		return salon.Reservation{}, classify(err)
	}
	return out, nil
}

func (rs ReservationStore) GetByID(ctx context.Context, id string) (salon.Reservation, error) {
	query := `
	SELECT` + selectColumns + `
	FROM salon_reservations
	WHERE reservation_id = $1`

	var out salon.Reservation
	if err := rs.db.GetContext(ctx, &out, query, id); err != nil {
		return salon.Reservation{}, classify(err)
	}
	return out, nil
}

func (rs ReservationStore) Update(ctx context.Context, id string, p salon.Patch) (salon.Reservation, error) {
	sets := []string{"updated_at = now()"}
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Date != nil {
		set("reservation_date", *p.Date)
	}
	if p.Time != nil {
		set("reservation_time", *p.Time)
	}
	if p.StylistName != nil {
		set("stylist_name", *p.StylistName)
	}
	if p.ServiceMenu != nil {
		set("service_menu", *p.ServiceMenu)
	}
	if p.DurationMinutes != nil {
		set("duration_minutes", *p.DurationMinutes)
	}
	if p.Notes != nil {
		set("notes", *p.Notes)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
	UPDATE salon_reservations
	SET %s
	WHERE reservation_id = $%d
	RETURNING`, strings.Join(sets, ", "), len(args)) + selectColumns

	var out salon.Reservation
	if err := rs.db.GetContext(ctx, &out, query, args...); err != nil {
		return salon.Reservation{}, classify(err)
	}
	return out, nil
}

func (rs ReservationStore) SetStatus(ctx context.Context, id string, status salon.Status) (salon.Reservation, error) {
	if !status.Valid() {
		return salon.Reservation{}, fmt.Errorf("%w: unknown status %q", salon.ErrValidation, status)
	}

	query := `
	UPDATE salon_reservations
	SET status = $1, updated_at = now()
	WHERE reservation_id = $2
	RETURNING` + selectColumns

	var out salon.Reservation
	if err := rs.db.GetContext(ctx, &out, query, string(status), id); err != nil {
		return salon.Reservation{}, classify(err)
	}
	return out, nil
}

func (rs ReservationStore) Find(ctx context.Context, f salon.Filter) ([]salon.Reservation, error) {
	var (
		where []string
		args  []interface{}
	)
	cond := func(column, op, value string) {
		args = append(args, value)
		where = append(where, fmt.Sprintf("r.%s %s $%d", column, op, len(args)))
	}
	eq := func(column string, value *string) {
		if value != nil {
			cond(column, "=", *value)
		}
	}

	eq("phone_number", f.PhoneNumber)
	eq("stylist_name", f.StylistName)
	eq("reservation_date", f.Date)
	eq("reservation_time", f.Time)
	if f.Status != "" {
		cond("status", "=", string(f.Status))
	}
	if f.ExcludeID != "" {
		cond("reservation_id", "<>", f.ExcludeID)
	}

	query := `
	SELECT` + selectColumns + `
	FROM salon_reservations r`
	if len(where) > 0 {
		query += `
	WHERE ` + strings.Join(where, " AND ")
	}
	query += `
	ORDER BY r.reservation_date, r.reservation_time`

	out := []salon.Reservation{}
	if err := rs.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// classify maps driver errors onto the domain errors the service understands.
// A malformed id can never match a row, so it reads as not found.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return salon.ErrReservationNotFound
	}

	var pqerr *pq.Error
	if errors.As(err, &pqerr) {
		switch pqerr.Code {
		case invalidTextRepresentation:
			return salon.ErrReservationNotFound
		case checkViolation, invalidDatetimeFormat:
			return fmt.Errorf("%w: %s", salon.ErrValidation, pqerr.Message)
		}
	}
	return err
}
