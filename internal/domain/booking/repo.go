package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the appointment store. FindByDoctorAndRange uses a half-open
// [from, to) interval.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteAllByDoctor(ctx context.Context, doctorID uuid.UUID) error
	FindByDoctorAndRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	UpdateStartTime(ctx context.Context, id uuid.UUID, start time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Time, patientName string, limit, offset int) ([]*AppointmentDetail, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, status, doctorName string, limit, offset int) ([]*AppointmentDetail, int, error)
}
