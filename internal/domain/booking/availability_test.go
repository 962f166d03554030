package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAvailability_FullTemplateWhenUnbooked(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00", "10:00-11:00", "14:00-15:00")

	result, err := f.calc.Availability(context.Background(), docID, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.OpenSlots) != 3 {
		t.Fatalf("expected 3 open slots, got %d", len(result.OpenSlots))
	}
	if result.Date != "2025-03-10" {
		t.Errorf("expected date 2025-03-10, got %s", result.Date)
	}
	if result.DoctorID != docID {
		t.Errorf("unexpected doctor id %s", result.DoctorID)
	}
}

func TestAvailability_DoctorNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.calc.Availability(context.Background(), uuid.New(), testDate)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestAvailability_ExcludesBookedStart(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00", "10:00-11:00")

	if _, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: uuid.New(), StartTime: at(9),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := f.calc.Availability(context.Background(), docID, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.OpenSlots) != 1 {
		t.Fatalf("expected 1 open slot, got %d", len(result.OpenSlots))
	}
	if !result.OpenSlots[0].Start.Equal(at(10)) {
		t.Errorf("expected 10:00 to remain open, got %v", result.OpenSlots[0].Start)
	}
}

func TestAvailability_SubsetOfTemplate(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00", "10:00-11:00", "14:00-15:00")

	if _, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: uuid.New(), StartTime: at(10),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := f.calc.Availability(context.Background(), docID, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	templateStarts := map[time.Time]bool{at(9): true, at(10): true, at(14): true}
	for _, s := range result.OpenSlots {
		if !templateStarts[s.Start] {
			t.Errorf("open slot %v is not part of the template", s.Start)
		}
	}
}

func TestAvailability_OtherDayUnaffected(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")

	if _, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: uuid.New(), StartTime: at(9),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nextDay := testDate.Add(24 * time.Hour)
	result, err := f.calc.Availability(context.Background(), docID, nextDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.OpenSlots) != 1 {
		t.Errorf("booking on one day should not affect another, got %+v", result.OpenSlots)
	}
}

func TestBookedStarts_EmptyWithoutAppointments(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")

	ledger := NewLedger(f.repo)
	booked, err := ledger.BookedStarts(context.Background(), docID, testDate)
	if err != nil {
		t.Fatalf("no appointments must not be an error: %v", err)
	}
	if len(booked) != 0 {
		t.Errorf("expected empty set, got %v", booked)
	}
}

func TestBookedStarts_IgnoresCompleted(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")

	a, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: uuid.New(), StartTime: at(9),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.coord.MarkCompleted(context.Background(), a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ledger := NewLedger(f.repo)
	booked, err := ledger.BookedStarts(context.Background(), docID, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(booked) != 0 {
		t.Errorf("completed appointments should not count as booked, got %v", booked)
	}
}
