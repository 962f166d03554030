package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/platform/auth"
)

func newTestHandler(f *fixture) *Handler {
	return NewHandler(f.coord, f.calc)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func asUser(c echo.Context, userID uuid.UUID, roles ...string) {
	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestGetAvailability(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00", "10:00-11:00")
	h := newTestHandler(f)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?date=2025-03-10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(docID.String())

	if err := h.GetAvailability(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result AvailabilityResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(result.OpenSlots) != 2 {
		t.Errorf("expected 2 open slots, got %d", len(result.OpenSlots))
	}
}

func TestGetAvailability_BadDate(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")
	h := newTestHandler(f)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?date=tomorrow", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(docID.String())

	err := h.GetAvailability(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGetAvailability_UnknownDoctor(t *testing.T) {
	f := newFixture()
	h := newTestHandler(f)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?date=2025-03-10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetAvailability(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestBookHandler_Created(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")
	h := newTestHandler(f)
	patientID := uuid.New()

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"start_time":"2025-03-10T09:00:00Z"}`, docID, patientID)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/appointments", body), rec)
	asUser(c, patientID, "patient")

	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected status scheduled, got %s", a.Status)
	}
}

func TestBookHandler_Conflict(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")
	h := newTestHandler(f)

	if _, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: uuid.New(), StartTime: at(9),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"start_time":"2025-03-10T09:00:00Z"}`, docID, uuid.New())
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/appointments", body), rec)
	asUser(c, uuid.New(), "patient")

	err := h.Book(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestBookHandler_PastTime(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")
	h := newTestHandler(f)

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"start_time":"2025-02-01T09:00:00Z"}`, docID, uuid.New())
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/appointments", body), rec)
	asUser(c, uuid.New(), "patient")

	err := h.Book(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestBookHandler_MissingFields(t *testing.T) {
	f := newFixture()
	h := newTestHandler(f)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/appointments", `{}`), rec)
	asUser(c, uuid.New(), "patient")

	err := h.Book(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCancelHandler_OwnerSucceeds(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")
	h := newTestHandler(f)
	patientID := uuid.New()

	a, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: patientID, StartTime: at(9),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	asUser(c, patientID, "patient")

	if err := h.Cancel(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestCancelHandler_WrongPatientForbidden(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")
	h := newTestHandler(f)

	a, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: uuid.New(), StartTime: at(9),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	asUser(c, uuid.New(), "patient")

	err = h.Cancel(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestCancelHandler_AdminOverride(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")
	h := newTestHandler(f)
	patientID := uuid.New()

	a, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: patientID, StartTime: at(9),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/?requester_id="+patientID.String(), nil)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	asUser(c, uuid.New(), "admin")

	if err := h.Cancel(c); err != nil {
		t.Fatalf("admin acting for the patient should succeed: %v", err)
	}
}

func TestRescheduleHandler(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00", "10:00-11:00")
	h := newTestHandler(f)
	patientID := uuid.New()

	a, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: patientID, StartTime: at(9),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/", `{"start_time":"2025-03-10T10:00:00Z"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	asUser(c, patientID, "patient")

	if err := h.Reschedule(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var moved Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &moved); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !moved.StartTime.Equal(at(10)) {
		t.Errorf("expected start 10:00, got %v", moved.StartTime)
	}
}

func TestUpdateStatusHandler_RejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	h := newTestHandler(f)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/", `{"status":"noshow"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.UpdateStatus(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestDoctorDayHandler(t *testing.T) {
	f := newFixture()
	docID := f.doctors.add("09:00-10:00")
	h := newTestHandler(f)
	patientID := uuid.New()
	f.repo.names[patientID] = "Dana Wells"

	if _, err := f.coord.Book(context.Background(), &Appointment{
		DoctorID: docID, PatientID: patientID, StartTime: at(9),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?date=2025-03-10", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(docID.String())

	if err := h.DoctorDay(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Dana Wells") {
		t.Error("expected patient name in day view")
	}
}

func TestPatientHistoryHandler_BadStatus(t *testing.T) {
	f := newFixture()
	h := newTestHandler(f)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?status=noshow", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.PatientHistory(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
