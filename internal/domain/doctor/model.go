package doctor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTemplate reports a malformed availability window string or a
// window whose start is not strictly before its end.
var ErrInvalidTemplate = errors.New("invalid availability template")

// TimeOfDay is a clock time expressed as minutes from midnight.
type TimeOfDay int

// ParseTimeOfDay parses a "HH:MM" string in 24-hour notation.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: bad time %q", ErrInvalidTemplate, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidTemplate, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidTemplate, s)
	}
	return TimeOfDay(hour*60 + minute), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// IsAM reports whether the time falls before noon.
func (t TimeOfDay) IsAM() bool { return t < 12*60 }

// At anchors the time of day on the given calendar date in UTC.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, time.UTC)
}

// SlotWindow is a single bookable window within a day, half-open [Start, End).
type SlotWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// ParseSlotWindow parses a "HH:MM-HH:MM" window string.
func ParseSlotWindow(s string) (SlotWindow, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return SlotWindow{}, fmt.Errorf("%w: bad window %q", ErrInvalidTemplate, s)
	}
	start, err := ParseTimeOfDay(strings.TrimSpace(parts[0]))
	if err != nil {
		return SlotWindow{}, err
	}
	end, err := ParseTimeOfDay(strings.TrimSpace(parts[1]))
	if err != nil {
		return SlotWindow{}, err
	}
	if start >= end {
		return SlotWindow{}, fmt.Errorf("%w: window %q start must precede end", ErrInvalidTemplate, s)
	}
	return SlotWindow{Start: start, End: end}, nil
}

func (w SlotWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Shift filter values for doctor searches.
const (
	ShiftAM = "am"
	ShiftPM = "pm"
)

// Doctor maps to the doctor table. AvailableTimes holds the daily
// availability template as "HH:MM-HH:MM" window strings.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Specialty      string    `db:"specialty" json:"specialty"`
	Email          string    `db:"email" json:"email"`
	AvailableTimes []string  `db:"available_times" json:"available_times"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Template parses the availability window strings. Window order is
// preserved as stored.
func (d *Doctor) Template() ([]SlotWindow, error) {
	windows := make([]SlotWindow, 0, len(d.AvailableTimes))
	for _, s := range d.AvailableTimes {
		w, err := ParseSlotWindow(s)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// WorksShift reports whether any availability window starts in the given
// shift ("am" or "pm"). Malformed windows are ignored here; template
// validation happens on write.
func (d *Doctor) WorksShift(shift string) bool {
	for _, s := range d.AvailableTimes {
		w, err := ParseSlotWindow(s)
		if err != nil {
			continue
		}
		if shift == ShiftAM && w.Start.IsAM() {
			return true
		}
		if shift == ShiftPM && !w.Start.IsAM() {
			return true
		}
	}
	return false
}
