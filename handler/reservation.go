package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	salon "github.com/phbpx/salon-reservations"
	"github.com/phbpx/salon-reservations/metrics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

type ReservationHandler struct {
	service *salon.ReservationService
	log     *otelzap.SugaredLogger
	metrics *metrics.ReservationMetrics
}

func NewReservationHandler(service *salon.ReservationService, log *otelzap.SugaredLogger, m *metrics.ReservationMetrics) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
		metrics: m,
	}
}

// Routes mounts the reservation endpoints on r.
func (rh ReservationHandler) Routes(r chi.Router) {
	r.Post("/add", rh.Add)
	r.Get("/lookup/{phone_number}", rh.Lookup)
	r.Put("/modify/{reservation_id}", rh.Modify)
	r.Delete("/cancel/{reservation_id}", rh.Cancel)
	r.Get("/availability", rh.Availability)
}

type createResponse struct {
	Message       string            `json:"message"`
	ReservationID string            `json:"reservation_id"`
	Reservation   salon.Reservation `json:"reservation"`
}

func (rh ReservationHandler) Add(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var in salon.NewReservation
	if err := decode(r, &in); err != nil {
		rh.fail(ctx, rw, "add", start, fmt.Errorf("%w: %v", salon.ErrValidation, err))
		return
	}

	res, err := rh.service.Create(ctx, in)
	if err != nil {
		rh.fail(ctx, rw, "add", start, err)
		return
	}

	rh.succeed(ctx, rw, "add", start, http.StatusCreated, createResponse{
		Message:       "Reservation created successfully for " + res.CustomerName,
		ReservationID: res.ID,
		Reservation:   res,
	})
}

func (rh ReservationHandler) Lookup(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	phone, err := phoneNumber(r)
	if err != nil {
		rh.fail(ctx, rw, "lookup", start, err)
		return
	}

	rs, err := rh.service.Lookup(ctx, phone)
	if err != nil {
		rh.fail(ctx, rw, "lookup", start, err)
		return
	}

	rh.succeed(ctx, rw, "lookup", start, http.StatusOK, rs)
}

func (rh ReservationHandler) Modify(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	id, err := reservationID(r)
	if err != nil {
		rh.fail(ctx, rw, "modify", start, err)
		return
	}

	var p salon.Patch
	if err := decode(r, &p); err != nil {
		rh.fail(ctx, rw, "modify", start, fmt.Errorf("%w: %v", salon.ErrValidation, err))
		return
	}

	res, err := rh.service.Modify(ctx, id, p)
	if err != nil {
		rh.fail(ctx, rw, "modify", start, err)
		return
	}

	rh.succeed(ctx, rw, "modify", start, http.StatusOK, res)
}

func (rh ReservationHandler) Cancel(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	id, err := reservationID(r)
	if err != nil {
		rh.fail(ctx, rw, "cancel", start, err)
		return
	}

	res, err := rh.service.Cancel(ctx, id)
	if err != nil {
		rh.fail(ctx, rw, "cancel", start, err)
		return
	}

	rh.succeed(ctx, rw, "cancel", start, http.StatusOK, res)
}

func (rh ReservationHandler) Availability(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	q := r.URL.Query()
	if !q.Has("stylist") {
		rh.fail(ctx, rw, "availability", start, fmt.Errorf("%w: stylist: field required", salon.ErrValidation))
		return
	}

	av, err := rh.service.Availability(ctx, q.Get("reservation_date"), q.Get("stylist"))
	if err != nil {
		rh.fail(ctx, rw, "availability", start, err)
		return
	}

	rh.succeed(ctx, rw, "availability", start, http.StatusOK, av)
}

// phoneNumber returns the decoded phone path segment. chi matches on RawPath
// when the request has one, and only then is the captured value still escaped.
func phoneNumber(r *http.Request) (string, error) {
	phone := chi.URLParam(r, "phone_number")
	if r.URL.RawPath == "" {
		return phone, nil
	}

	phone, err := url.PathUnescape(phone)
	if err != nil {
		return "", fmt.Errorf("%w: phone_number: %v", salon.ErrNoReservations, err)
	}
	return phone, nil
}

func reservationID(r *http.Request) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, "reservation_id"))
	if err != nil {
		return "", fmt.Errorf("%w: reservation_id is not a valid UUID", salon.ErrValidation)
	}
	return id.String(), nil
}

func (rh ReservationHandler) succeed(ctx context.Context, rw http.ResponseWriter, op string, start time.Time, status int, data interface{}) {
	rh.metrics.Observe(op, status, time.Since(start).Seconds())
	respond(ctx, rw, status, data)
}

func (rh ReservationHandler) fail(ctx context.Context, rw http.ResponseWriter, op string, start time.Time, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		rh.log.ErrorwContext(ctx, op, "error", err.Error())
	} else {
		rh.log.InfowContext(ctx, op, "status", status, "error", err.Error())
	}
	rh.metrics.Observe(op, status, time.Since(start).Seconds())
	respondErr(ctx, rw, status, err)
}
