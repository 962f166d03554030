package booking

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Completion is driven by clinic staff after the
// visit; everything else in this package only ever sees "scheduled".
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
)

// Appointment maps to the appointment table. StartTime is the slot start
// instant in UTC and doubles as the slot's identity for a doctor.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentDetail is an appointment joined with the participant names,
// used by the doctor day view and the patient history listing.
type AppointmentDetail struct {
	Appointment
	DoctorName  string `db:"doctor_name" json:"doctor_name"`
	PatientName string `db:"patient_name" json:"patient_name"`
}

// Slot is a template window instantiated on a concrete date, half-open
// [Start, End).
type Slot struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Window string    `json:"window"`
}

// AvailabilityResult is the set of open slots for one doctor on one date.
// It is recomputed on every query; a slot listed here is a snapshot, not a
// reservation.
type AvailabilityResult struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	OpenSlots []Slot    `json:"open_slots"`
}
