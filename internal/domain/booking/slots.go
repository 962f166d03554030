package booking

import (
	"fmt"
	"sort"
	"time"

	"github.com/clinicbook/clinicbook/internal/domain/doctor"
)

// ExpandTemplate instantiates a doctor's daily template on a calendar date,
// returning the candidate slots sorted by start time. Windows with
// start >= end are rejected rather than producing negative-duration slots.
func ExpandTemplate(template []doctor.SlotWindow, date time.Time) ([]Slot, error) {
	slots := make([]Slot, 0, len(template))
	for _, w := range template {
		if w.Start >= w.End {
			return nil, fmt.Errorf("%w: window %s", doctor.ErrInvalidTemplate, w)
		}
		slots = append(slots, Slot{
			Start:  w.Start.At(date),
			End:    w.End.At(date),
			Window: w.String(),
		})
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})
	return slots, nil
}
