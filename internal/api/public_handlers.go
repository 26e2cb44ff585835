package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/service"
)

type PublicHandlers struct {
	ratings *service.RatingService
	logger  *zap.Logger
}

func NewPublicHandlers(ratings *service.RatingService, logger *zap.Logger) *PublicHandlers {
	return &PublicHandlers{ratings: ratings, logger: logger}
}

func (h *PublicHandlers) ListDoctors(c echo.Context) error {
	doctors, err := h.ratings.Doctors(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, doctors)
}

func (h *PublicHandlers) DoctorRatings(c echo.Context) error {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	ratings, err := h.ratings.DoctorRatings(c.Request().Context(), doctorID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, ratings)
}
