package booking

import (
	"context"
	"time"
)

// Validator checks a proposed appointment against the live availability
// snapshot. Checks run in a fixed order and stop at the first failure:
// doctor exists, start is strictly in the future, slot is open.
type Validator struct {
	calc *Calculator
	now  func() time.Time
}

func NewValidator(calc *Calculator) *Validator {
	return &Validator{calc: calc, now: time.Now}
}

func (v *Validator) Validate(ctx context.Context, a *Appointment) error {
	if _, err := v.calc.doctors.GetByID(ctx, a.DoctorID); err != nil {
		return err
	}

	if !a.StartTime.After(v.now()) {
		return ErrPastTime
	}

	result, err := v.calc.Availability(ctx, a.DoctorID, a.StartTime.UTC())
	if err != nil {
		return err
	}
	for _, s := range result.OpenSlots {
		if s.Start.Equal(a.StartTime) {
			return nil
		}
	}
	return ErrSlotUnavailable
}
