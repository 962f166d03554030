package booking

import (
	"errors"
	"fmt"

	"github.com/clinicbook/clinicbook/internal/domain/doctor"
)

var (
	// ErrDoctorNotFound aliases the doctor package sentinel so callers can
	// match either.
	ErrDoctorNotFound = doctor.ErrNotFound

	ErrSlotUnavailable     = errors.New("slot is not open for booking")
	ErrPastTime            = errors.New("appointment time must be in the future")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrUnauthorized        = errors.New("appointment belongs to another patient")
)

// StorageError wraps persistence or lock failures so handlers can map them
// to a server-side failure instead of a validation rejection.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
