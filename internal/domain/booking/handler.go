package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/domain/doctor"
	"github.com/clinicbook/clinicbook/internal/platform/auth"
	"github.com/clinicbook/clinicbook/pkg/pagination"
)

type Handler struct {
	coord *Coordinator
	calc  *Calculator
}

func NewHandler(coord *Coordinator, calc *Calculator) *Handler {
	return &Handler{coord: coord, calc: calc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "patient"))
	readGroup.GET("/doctors/:id/availability", h.GetAvailability)

	patientGroup := api.Group("", auth.RequireRole("admin", "patient"))
	patientGroup.POST("/appointments", h.Book)
	patientGroup.DELETE("/appointments/:id", h.Cancel)
	patientGroup.PUT("/appointments/:id", h.Reschedule)
	patientGroup.GET("/patients/:id/appointments", h.PatientHistory)

	doctorGroup := api.Group("", auth.RequireRole("admin", "doctor"))
	doctorGroup.GET("/doctors/:id/appointments", h.DoctorDay)
	doctorGroup.PUT("/appointments/:id/status", h.UpdateStatus)
}

func (h *Handler) GetAvailability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	result, err := h.calc.Availability(c.Request().Context(), doctorID, date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type bookRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	StartTime time.Time `json:"start_time"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DoctorID == uuid.Nil || req.PatientID == uuid.Nil || req.StartTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id, patient_id and start_time are required")
	}

	a := &Appointment{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		StartTime: req.StartTime,
	}
	created, err := h.coord.Book(c.Request().Context(), a)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	requester, err := requesterID(c)
	if err != nil {
		return err
	}
	if err := h.coord.Cancel(c.Request().Context(), id, requester); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.StartTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "start_time is required")
	}
	requester, err := requesterID(c)
	if err != nil {
		return err
	}

	a, err := h.coord.Reschedule(c.Request().Context(), id, requester, req.StartTime)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Status != StatusCompleted {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be completed")
	}
	if err := h.coord.MarkCompleted(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DoctorDay(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	day, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	pg := pagination.FromContext(c)

	items, total, err := h.coord.DayView(c.Request().Context(), doctorID, day, c.QueryParam("patient_name"), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) PatientHistory(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	status := c.QueryParam("status")
	if status != "" && status != StatusScheduled && status != StatusCompleted {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be scheduled or completed")
	}
	pg := pagination.FromContext(c)

	items, total, err := h.coord.History(c.Request().Context(), patientID, status, c.QueryParam("doctor_name"), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// requesterID resolves the patient acting on an appointment. Admins may act
// for a patient by passing requester_id; everyone else is the token subject.
func requesterID(c echo.Context) (uuid.UUID, error) {
	ctx := c.Request().Context()
	if override := c.QueryParam("requester_id"); override != "" {
		for _, role := range auth.RolesFromContext(ctx) {
			if role == "admin" {
				id, err := uuid.Parse(override)
				if err != nil {
					return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid requester_id")
				}
				return id, nil
			}
		}
	}
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "requester identity unknown")
	}
	return id, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	case errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrAlreadyCompleted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrPastTime), errors.Is(err, doctor.ErrInvalidTemplate):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	}
}
