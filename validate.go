package salon

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewReservation is the input accepted when booking a slot. Required strings
// are pointers so that an absent key is rejected while "" is kept as a value.
type NewReservation struct {
	CustomerName    *string  `json:"customer_name" validate:"required"`
	PhoneNumber     *string  `json:"phone_number" validate:"required"`
	Date            *string  `json:"reservation_date" validate:"required"`
	Time            *string  `json:"reservation_time" validate:"required"`
	StylistName     *string  `json:"stylist_name" validate:"required"`
	ServiceMenu     *string  `json:"service_menu" validate:"required"`
	DurationMinutes Duration `json:"duration_minutes"`
	Notes           *string  `json:"notes"`
}

// Duration is an optional duration_minutes that remembers whether the key was
// present. An omitted duration takes the default; an explicit null does not.
type Duration struct {
	Minutes int
	Set     bool
	Null    bool
}

// Minutes returns a Duration set to m.
func Minutes(m int) Duration {
	return Duration{Minutes: m, Set: true}
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	d.Set = true
	if string(b) == "null" {
		d.Null = true
		return nil
	}
	return json.Unmarshal(b, &d.Minutes)
}

// FieldError is a single rejected input field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates every FieldError found in one request.
type ValidationError struct {
	errs error
}

func (e *ValidationError) Error() string {
	return e.errs.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Fields() []FieldError {
	var out []FieldError
	for _, err := range multierr.Errors(e.errs) {
		var fe FieldError
		if errors.As(err, &fe) {
			out = append(out, fe)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fieldErr(field, msg string) error {
	return FieldError{Field: field, Message: msg}
}

func asValidationError(errs error) error {
	if errs == nil {
		return nil
	}
	return &ValidationError{errs: errs}
}

// NormalizeTime rewrites H:MM, HH:MM, H:MM:SS and HH:MM:SS into HH:MM:SS.
// Any other shape is returned unchanged and left for ParseTime to reject.
func NormalizeTime(s string) string {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		return padHour(parts[0]) + ":" + parts[1] + ":00"
	case 3:
		return padHour(parts[0]) + ":" + parts[1] + ":" + parts[2]
	}
	return s
}

func padHour(h string) string {
	if len(h) >= 2 {
		return h
	}
	return strings.Repeat("0", 2-len(h)) + h
}

// ParseTime normalizes s and returns it in TimeLayout.
func ParseTime(s string) (string, error) {
	t, err := time.Parse(TimeLayout, NormalizeTime(s))
	if err != nil {
		return "", fieldErr("reservation_time", "expected time as HH:MM or HH:MM:SS")
	}
	return t.Format(TimeLayout), nil
}

// ParseDate returns s in DateLayout.
func ParseDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fieldErr("reservation_date", "expected date as YYYY-MM-DD")
	}
	return d.Format(DateLayout), nil
}

func ValidateDuration(minutes int) error {
	if minutes <= 0 {
		return fieldErr("duration_minutes", "duration must be positive")
	}
	return nil
}

// Validate checks n and returns the scheduled reservation it describes.
func (n NewReservation) Validate() (Reservation, error) {
	var errs error

	if err := validate.Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Reservation{}, err
		}
		for _, fe := range verrs {
			errs = multierr.Append(errs, fieldErr(fe.Field(), "field required"))
		}
	}

	r := Reservation{
		CustomerName:    deref(n.CustomerName),
		PhoneNumber:     deref(n.PhoneNumber),
		StylistName:     deref(n.StylistName),
		ServiceMenu:     deref(n.ServiceMenu),
		DurationMinutes: DefaultDurationMinutes,
		Status:          StatusScheduled,
		Notes:           n.Notes,
	}

	if n.Date != nil {
		date, err := ParseDate(*n.Date)
		errs = multierr.Append(errs, err)
		r.Date = date
	}
	if n.Time != nil {
		tod, err := ParseTime(*n.Time)
		errs = multierr.Append(errs, err)
		r.Time = tod
	}
	switch d := n.DurationMinutes; {
	case d.Null:
		errs = multierr.Append(errs, fieldErr("duration_minutes", "must be an integer"))
	case d.Set:
		errs = multierr.Append(errs, ValidateDuration(d.Minutes))
		r.DurationMinutes = d.Minutes
	}

	if errs != nil {
		return Reservation{}, asValidationError(errs)
	}
	return r, nil
}

// Validate returns p with its date and time normalized. Empty strings are
// values, not omissions, and are validated like any other.
func (p Patch) Validate() (Patch, error) {
	var errs error

	if p.Date != nil {
		date, err := ParseDate(*p.Date)
		errs = multierr.Append(errs, err)
		p.Date = &date
	}
	if p.Time != nil {
		tod, err := ParseTime(*p.Time)
		errs = multierr.Append(errs, err)
		p.Time = &tod
	}
	if p.DurationMinutes != nil {
		errs = multierr.Append(errs, ValidateDuration(*p.DurationMinutes))
	}

	if errs != nil {
		return Patch{}, asValidationError(errs)
	}
	return p, nil
}
