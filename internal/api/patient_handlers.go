package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/service"
	"github.com/medvisit/scheduler/internal/storage"
)

type PatientHandlers struct {
	cart        *service.CartService
	checkout    *service.CheckoutService
	schedule    *service.ScheduleService
	ratings     *service.RatingService
	attachments storage.AttachmentStore
	logger      *zap.Logger
}

func NewPatientHandlers(
	cart *service.CartService,
	checkout *service.CheckoutService,
	schedule *service.ScheduleService,
	ratings *service.RatingService,
	attachments storage.AttachmentStore,
	logger *zap.Logger,
) *PatientHandlers {
	return &PatientHandlers{
		cart:        cart,
		checkout:    checkout,
		schedule:    schedule,
		ratings:     ratings,
		attachments: attachments,
		logger:      logger,
	}
}

// AddToCart accepts multipart form data: start_slot_id, duration, a details
// JSON object and an optional attachment file. The file is persisted before
// the hold is taken; if the hold fails the orphaned blob is removed.
func (h *PatientHandlers) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()

	startSlotID, err := strconv.ParseInt(c.FormValue("start_slot_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_slot_id")
	}
	duration, err := strconv.Atoi(c.FormValue("duration"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid duration")
	}

	var details model.VisitDetails
	if raw := c.FormValue("details"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &details); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid details")
		}
	}

	var attachmentRef *string
	if file, err := c.FormFile("attachment"); err == nil {
		src, err := file.Open()
		if err != nil {
			return respondError(c, h.logger, err)
		}
		ref, err := h.attachments.Save(ctx, file.Filename, src)
		src.Close()
		if err != nil {
			return respondError(c, h.logger, err)
		}
		attachmentRef = &ref
	}

	principal := principalFrom(c)
	heldIDs, err := h.cart.Add(ctx, principal.ID, startSlotID, duration, details, attachmentRef)
	if err != nil {
		if attachmentRef != nil {
			if delErr := h.attachments.Delete(ctx, *attachmentRef); delErr != nil {
				h.logger.Warn("Orphaned attachment not removed",
					zap.String("ref", *attachmentRef), zap.Error(delErr))
			}
		}
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, map[string][]int64{"held_slot_ids": heldIDs})
}

func (h *PatientHandlers) GetCart(c echo.Context) error {
	principal := principalFrom(c)
	entries, err := h.cart.Items(c.Request().Context(), principal.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, entries)
}

func (h *PatientHandlers) RemoveFromCart(c echo.Context) error {
	slotID, err := strconv.ParseInt(c.Param("slotId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}

	principal := principalFrom(c)
	if err := h.cart.Remove(c.Request().Context(), principal.ID, slotID); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PatientHandlers) Checkout(c echo.Context) error {
	principal := principalFrom(c)
	bookedIDs, err := h.checkout.Commit(c.Request().Context(), principal.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string][]int64{"booked_slot_ids": bookedIDs})
}

func (h *PatientHandlers) MyAppointments(c echo.Context) error {
	principal := principalFrom(c)
	appointments, err := h.schedule.PatientAppointments(c.Request().Context(), principal.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, appointments)
}

func (h *PatientHandlers) CancelAppointment(c echo.Context) error {
	slotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}

	principal := principalFrom(c)
	if err := h.schedule.CancelAppointment(c.Request().Context(), principal.ID, slotID); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

type addRatingRequest struct {
	DoctorID int64  `json:"doctor_id"`
	Stars    int    `json:"stars"`
	Comment  string `json:"comment"`
}

func (h *PatientHandlers) AddRating(c echo.Context) error {
	var req addRatingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.DoctorID == 0 {
		return respondError(c, h.logger, clinicerr.ErrValidation)
	}

	principal := principalFrom(c)
	rating, err := h.ratings.Add(c.Request().Context(), principal.ID, req.DoctorID, req.Stars, req.Comment)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, rating)
}

func (h *PatientHandlers) MyRatings(c echo.Context) error {
	principal := principalFrom(c)
	ratings, err := h.ratings.MyRatings(c.Request().Context(), principal.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, ratings)
}
