package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockRepo() *mockRepo {
	return &mockRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Doctor, error) {
	for _, d := range m.doctors {
		if strings.EqualFold(d.Email, email) {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.doctors, id)
	return nil
}

func (m *mockRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		if name, ok := params["name"]; ok && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			continue
		}
		if spec, ok := params["specialty"]; ok && !strings.EqualFold(d.Specialty, spec) {
			continue
		}
		result = append(result, d)
	}
	return result, len(result), nil
}

type mockPurger struct {
	purged []uuid.UUID
}

func (m *mockPurger) PurgeDoctor(_ context.Context, doctorID uuid.UUID) error {
	m.purged = append(m.purged, doctorID)
	return nil
}

func validDoctor() *Doctor {
	return &Doctor{
		Name:           "Alice Chen",
		Specialty:      "cardiology",
		Email:          "alice@clinic.test",
		AvailableTimes: []string{"09:00-10:00", "10:00-11:00"},
	}
}

// -- Tests --

func TestCreateDoctor(t *testing.T) {
	svc := NewService(newMockRepo())

	d := validDoctor()
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected an ID to be assigned")
	}
}

func TestCreateDoctor_RequiresName(t *testing.T) {
	svc := NewService(newMockRepo())

	d := validDoctor()
	d.Name = "  "
	if err := svc.Create(context.Background(), d); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateDoctor_RejectsBadTemplate(t *testing.T) {
	svc := NewService(newMockRepo())

	d := validDoctor()
	d.AvailableTimes = []string{"10:00-09:00"}
	if err := svc.Create(context.Background(), d); !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("expected ErrInvalidTemplate, got %v", err)
	}
}

func TestCreateDoctor_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.Create(context.Background(), validDoctor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := validDoctor()
	dup.Email = "ALICE@clinic.test"
	if err := svc.Create(context.Background(), dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUpdateDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d := validDoctor()
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d.Specialty = "neurology"
	d.AvailableTimes = []string{"13:00-14:00"}
	if err := svc.Update(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Get(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Specialty != "neurology" {
		t.Errorf("expected updated specialty, got %s", got.Specialty)
	}
}

func TestUpdateDoctor_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	d := validDoctor()
	d.ID = uuid.New()
	if err := svc.Update(context.Background(), d); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDoctor_RoutesThroughPurger(t *testing.T) {
	repo := newMockRepo()
	purger := &mockPurger{}
	svc := NewService(repo)
	svc.SetPurger(purger)

	d := validDoctor()
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(purger.purged) != 1 || purger.purged[0] != d.ID {
		t.Errorf("expected purge for %s, got %v", d.ID, purger.purged)
	}
}

func TestDeleteDoctor_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchDoctors_ByShift(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	am := validDoctor()
	if err := svc.Create(context.Background(), am); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pm := validDoctor()
	pm.Email = "bob@clinic.test"
	pm.Name = "Bob Diaz"
	pm.AvailableTimes = []string{"14:00-15:00"}
	if err := svc.Create(context.Background(), pm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := svc.Search(context.Background(), Filter{Shift: ShiftPM}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Name != "Bob Diaz" {
		t.Errorf("expected only the afternoon doctor, got %d items", len(items))
	}
}

func TestSearchDoctors_InvalidShift(t *testing.T) {
	svc := NewService(newMockRepo())

	_, _, err := svc.Search(context.Background(), Filter{Shift: "night"}, 20, 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSearchDoctors_ByNameAndSpecialty(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.Create(context.Background(), validDoctor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := validDoctor()
	other.Email = "bob@clinic.test"
	other.Name = "Bob Diaz"
	other.Specialty = "dermatology"
	if err := svc.Create(context.Background(), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, _, err := svc.Search(context.Background(), Filter{Name: "ali"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Alice Chen" {
		t.Errorf("partial name match failed, got %d items", len(items))
	}

	items, _, err = svc.Search(context.Background(), Filter{Specialty: "dermatology"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Bob Diaz" {
		t.Errorf("specialty match failed, got %d items", len(items))
	}
}
