package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/service"
)

type DoctorHandlers struct {
	availability *service.AvailabilityService
	absences     *service.AbsenceService
	schedule     *service.ScheduleService
	logger       *zap.Logger
}

func NewDoctorHandlers(
	availability *service.AvailabilityService,
	absences *service.AbsenceService,
	schedule *service.ScheduleService,
	logger *zap.Logger,
) *DoctorHandlers {
	return &DoctorHandlers{
		availability: availability,
		absences:     absences,
		schedule:     schedule,
		logger:       logger,
	}
}

type addAvailabilityRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *DoctorHandlers) AddAvailability(c echo.Context) error {
	var req addAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	startMin, err := model.MinutesFromClock(req.StartTime)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	endMin, err := model.MinutesFromClock(req.EndTime)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	principal := principalFrom(c)
	created, err := h.availability.AddDay(c.Request().Context(), principal.ID, date, startMin, endMin)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, map[string]int{"created": created})
}

type timeRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type addRecurringRequest struct {
	StartDate  string             `json:"start_date"`
	EndDate    string             `json:"end_date"`
	WeekDays   []int              `json:"week_days"`
	TimeRanges []timeRangeRequest `json:"time_ranges"`
}

func (h *DoctorHandlers) AddRecurringAvailability(c echo.Context) error {
	var req addRecurringRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	weekDays := make([]time.Weekday, 0, len(req.WeekDays))
	for _, d := range req.WeekDays {
		if d < 0 || d > 6 {
			return respondError(c, h.logger, clinicerr.ErrValidation)
		}
		weekDays = append(weekDays, time.Weekday(d))
	}

	ranges := make([]model.TimeRange, 0, len(req.TimeRanges))
	for _, r := range req.TimeRanges {
		startMin, err := model.MinutesFromClock(r.Start)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		endMin, err := model.MinutesFromClock(r.End)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		ranges = append(ranges, model.TimeRange{StartMin: startMin, EndMin: endMin})
	}

	principal := principalFrom(c)
	created, err := h.availability.AddRecurring(c.Request().Context(), principal.ID, startDate, endDate, weekDays, ranges)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, map[string]int{"created": created})
}

type addAbsenceRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

func (h *DoctorHandlers) AddAbsence(c echo.Context) error {
	var req addAbsenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	principal := principalFrom(c)
	cancelled, err := h.absences.Register(c.Request().Context(), principal.ID, date, req.Reason)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, map[string]int{"cancelled": cancelled})
}

func (h *DoctorHandlers) ListAbsences(c echo.Context) error {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	absences, err := h.absences.ListByDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, absences)
}

// Schedule returns a doctor's slots with role-dependent visibility. Patients
// and other doctors receive sanitized rows; the owning doctor sees everything.
func (h *DoctorHandlers) Schedule(c echo.Context) error {
	doctorID, err := strconv.ParseInt(c.QueryParam("doctor_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
	}

	var from, to time.Time
	if v := c.QueryParam("from"); v != "" {
		if from, err = parseDate(v); err != nil {
			return respondError(c, h.logger, err)
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if to, err = parseDate(v); err != nil {
			return respondError(c, h.logger, err)
		}
	}

	principal := principalFrom(c)
	slots, err := h.schedule.Get(c.Request().Context(), doctorID, principal, from, to)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, slots)
}

func (h *DoctorHandlers) MyAppointments(c echo.Context) error {
	principal := principalFrom(c)
	appointments, err := h.schedule.DoctorAppointments(c.Request().Context(), principal.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, appointments)
}
