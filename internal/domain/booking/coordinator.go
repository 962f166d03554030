package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/clinicbook/internal/platform/lock"
)

// ErrAlreadyCompleted rejects mutations on appointments that have already
// taken place.
var ErrAlreadyCompleted = errors.New("appointment already completed")

// DoctorStore extends the directory with the delete used by the doctor
// purge.
type DoctorStore interface {
	DoctorDirectory
	Delete(ctx context.Context, id uuid.UUID) error
}

// TxRunner runs fn atomically. Wired to db.WithTx in production; tests pass
// a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Coordinator is the only component that mutates booking state. Every
// mutation for a doctor runs under that doctor's exclusive lock, so
// validate-then-commit is atomic with respect to competing bookings.
type Coordinator struct {
	store     Repository
	doctors   DoctorStore
	validator *Validator
	locker    lock.DoctorLocker
	runTx     TxRunner
	log       zerolog.Logger
}

func NewCoordinator(store Repository, doctors DoctorStore, validator *Validator, locker lock.DoctorLocker, runTx TxRunner, log zerolog.Logger) *Coordinator {
	if runTx == nil {
		runTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Coordinator{
		store:     store,
		doctors:   doctors,
		validator: validator,
		locker:    locker,
		runTx:     runTx,
		log:       log,
	}
}

// Book validates the appointment while holding the doctor's lock and
// persists it if the slot is still open. Any validation a caller did before
// calling Book is advisory only.
func (c *Coordinator) Book(ctx context.Context, a *Appointment) (*Appointment, error) {
	a.StartTime = a.StartTime.UTC()
	a.Status = StatusScheduled

	release, err := c.locker.Acquire(ctx, a.DoctorID.String())
	if err != nil {
		return nil, storageErr("acquiring doctor lock", err)
	}
	defer release()

	if err := c.validator.Validate(ctx, a); err != nil {
		return nil, err
	}

	if err := c.store.Create(ctx, a); err != nil {
		return nil, storageErr("saving appointment", err)
	}

	c.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("doctor_id", a.DoctorID.String()).
		Time("start_time", a.StartTime).
		Msg("appointment booked")
	return a, nil
}

// Cancel deletes the appointment. Only the booking patient may cancel.
func (c *Coordinator) Cancel(ctx context.Context, id, requesterID uuid.UUID) error {
	a, err := c.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.PatientID != requesterID {
		return ErrUnauthorized
	}

	release, err := c.locker.Acquire(ctx, a.DoctorID.String())
	if err != nil {
		return storageErr("acquiring doctor lock", err)
	}
	defer release()

	if err := c.store.DeleteByID(ctx, id); err != nil {
		return storageErr("deleting appointment", err)
	}

	c.log.Info().
		Str("appointment_id", id.String()).
		Str("doctor_id", a.DoctorID.String()).
		Msg("appointment cancelled")
	return nil
}

// Reschedule moves a scheduled appointment to a new slot, validating the
// target slot under the doctor's lock.
func (c *Coordinator) Reschedule(ctx context.Context, id, requesterID uuid.UUID, newStart time.Time) (*Appointment, error) {
	a, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PatientID != requesterID {
		return nil, ErrUnauthorized
	}
	if a.Status != StatusScheduled {
		return nil, ErrAlreadyCompleted
	}

	newStart = newStart.UTC()
	if newStart.Equal(a.StartTime) {
		return a, nil
	}

	release, err := c.locker.Acquire(ctx, a.DoctorID.String())
	if err != nil {
		return nil, storageErr("acquiring doctor lock", err)
	}
	defer release()

	candidate := &Appointment{DoctorID: a.DoctorID, PatientID: a.PatientID, StartTime: newStart}
	if err := c.validator.Validate(ctx, candidate); err != nil {
		return nil, err
	}

	if err := c.store.UpdateStartTime(ctx, id, newStart); err != nil {
		return nil, storageErr("moving appointment", err)
	}
	a.StartTime = newStart

	c.log.Info().
		Str("appointment_id", id.String()).
		Time("start_time", newStart).
		Msg("appointment rescheduled")
	return a, nil
}

// MarkCompleted records that the visit took place.
func (c *Coordinator) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	a, err := c.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == StatusCompleted {
		return nil
	}
	if err := c.store.UpdateStatus(ctx, id, StatusCompleted); err != nil {
		return storageErr("completing appointment", err)
	}
	return nil
}

// PurgeDoctor removes every appointment held by the doctor and then the
// doctor record itself, atomically and under the doctor's lock, so no
// appointment is left referencing a missing doctor.
func (c *Coordinator) PurgeDoctor(ctx context.Context, doctorID uuid.UUID) error {
	release, err := c.locker.Acquire(ctx, doctorID.String())
	if err != nil {
		return storageErr("acquiring doctor lock", err)
	}
	defer release()

	err = c.runTx(ctx, func(ctx context.Context) error {
		if err := c.store.DeleteAllByDoctor(ctx, doctorID); err != nil {
			return err
		}
		return c.doctors.Delete(ctx, doctorID)
	})
	if err != nil {
		return storageErr("purging doctor", err)
	}

	c.log.Info().Str("doctor_id", doctorID.String()).Msg("doctor and appointments purged")
	return nil
}

// DayView lists a doctor's appointments for one day, optionally filtered by
// a partial patient name match.
func (c *Coordinator) DayView(ctx context.Context, doctorID uuid.UUID, day time.Time, patientName string, limit, offset int) ([]*AppointmentDetail, int, error) {
	if _, err := c.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, 0, err
	}
	return c.store.ListByDoctorAndDay(ctx, doctorID, day, patientName, limit, offset)
}

// History lists a patient's appointments, optionally filtered by status and
// a partial doctor name match.
func (c *Coordinator) History(ctx context.Context, patientID uuid.UUID, status, doctorName string, limit, offset int) ([]*AppointmentDetail, int, error) {
	return c.store.ListByPatient(ctx, patientID, status, doctorName, limit, offset)
}
