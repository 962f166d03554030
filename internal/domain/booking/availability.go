package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/doctor"
)

// DoctorDirectory is the narrow slice of the doctor store the booking engine
// needs. Satisfied by the doctor repository.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

// Calculator computes a doctor's open slots for a date: the expanded
// template minus the booked start times. Exact start-instant match only; a
// booked slot removes the one candidate sharing its start.
type Calculator struct {
	doctors DoctorDirectory
	ledger  *Ledger
}

func NewCalculator(doctors DoctorDirectory, ledger *Ledger) *Calculator {
	return &Calculator{doctors: doctors, ledger: ledger}
}

// Availability is read-only and safe to call without synchronization. The
// result is a snapshot: a listed slot may already be taken by the time the
// caller tries to book it.
func (c *Calculator) Availability(ctx context.Context, doctorID uuid.UUID, date time.Time) (*AvailabilityResult, error) {
	d, err := c.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	template, err := d.Template()
	if err != nil {
		return nil, err
	}

	candidates, err := ExpandTemplate(template, date)
	if err != nil {
		return nil, err
	}

	booked, err := c.ledger.BookedStarts(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	open := make([]Slot, 0, len(candidates))
	for _, s := range candidates {
		if !booked[s.Start.UTC()] {
			open = append(open, s)
		}
	}

	return &AvailabilityResult{
		DoctorID:  doctorID,
		Date:      date.UTC().Format("2006-01-02"),
		OpenSlots: open,
	}, nil
}
