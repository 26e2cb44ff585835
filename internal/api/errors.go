package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/clinicerr"
)

type errorResponse struct {
	Message string `json:"message"`
}

// respondError maps the domain taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error and is not echoed to the
// client.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, clinicerr.ErrValidation), errors.Is(err, clinicerr.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, clinicerr.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Message: err.Error()})
	case errors.Is(err, clinicerr.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, clinicerr.ErrConflict),
		errors.Is(err, clinicerr.ErrDiscontinuity),
		errors.Is(err, clinicerr.ErrSlotGone),
		errors.Is(err, clinicerr.ErrSlotUnavailable),
		errors.Is(err, clinicerr.ErrSlotCancelled),
		errors.Is(err, clinicerr.ErrDoctorAbsent):
		return c.JSON(http.StatusConflict, errorResponse{Message: err.Error()})
	default:
		logger.Error("Internal error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}
