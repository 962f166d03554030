package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("doctor not found")
	ErrDuplicateEmail = errors.New("doctor email already registered")
	ErrInvalidInput   = errors.New("invalid doctor")
)

// AppointmentPurger removes every appointment held by a doctor before the
// doctor record itself is deleted. Implemented by the booking coordinator so
// the purge runs under the same per-doctor lock as bookings.
type AppointmentPurger interface {
	PurgeDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type Service struct {
	repo   Repository
	purger AppointmentPurger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetPurger wires the booking-side purge. Set once at startup.
func (s *Service) SetPurger(p AppointmentPurger) { s.purger = p }

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if err := validate(d); err != nil {
		return err
	}
	if existing, err := s.repo.GetByEmail(ctx, d.Email); err == nil && existing != nil {
		return ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if err := validate(d); err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(current.Email, d.Email) {
		if existing, err := s.repo.GetByEmail(ctx, d.Email); err == nil && existing != nil {
			return ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return s.repo.Update(ctx, d)
}

// Delete removes a doctor and every appointment booked with them. The purge
// runs first so no appointment is ever left pointing at a missing doctor.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if s.purger != nil {
		return s.purger.PurgeDoctor(ctx, id)
	}
	return s.repo.Delete(ctx, id)
}

// Filter narrows doctor searches. Shift is "am", "pm" or empty.
type Filter struct {
	Name      string
	Specialty string
	Shift     string
}

// Search lists doctors matching the filter. The shift filter is applied in
// memory because it depends on the parsed availability template.
func (s *Service) Search(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	params := map[string]string{}
	if f.Name != "" {
		params["name"] = f.Name
	}
	if f.Specialty != "" {
		params["specialty"] = f.Specialty
	}

	if f.Shift == "" {
		return s.repo.Search(ctx, params, limit, offset)
	}
	if f.Shift != ShiftAM && f.Shift != ShiftPM {
		return nil, 0, fmt.Errorf("%w: shift filter must be am or pm", ErrInvalidInput)
	}

	// Fetch the whole name/specialty match set, then page the shift matches.
	all, _, err := s.repo.Search(ctx, params, 10000, 0)
	if err != nil {
		return nil, 0, err
	}
	var matched []*Doctor
	for _, d := range all {
		if d.WorksShift(f.Shift) {
			matched = append(matched, d)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func validate(d *Doctor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := d.Template(); err != nil {
		return err
	}
	return nil
}
