package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ledger is the authoritative read path over persisted appointments. It
// never caches between calls because booked state can change concurrently.
type Ledger struct {
	store Repository
}

func NewLedger(store Repository) *Ledger {
	return &Ledger{store: store}
}

// BookedStarts returns the start instants of every scheduled appointment for
// the doctor on the given calendar day. A doctor with no appointments yields
// an empty set, not an error.
func (l *Ledger) BookedStarts(ctx context.Context, doctorID uuid.UUID, date time.Time) (map[time.Time]bool, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	appts, err := l.store.FindByDoctorAndRange(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, storageErr("reading booked slots", err)
	}

	booked := make(map[time.Time]bool, len(appts))
	for _, a := range appts {
		if a.Status != StatusScheduled {
			continue
		}
		booked[a.StartTime.UTC()] = true
	}
	return booked, nil
}
