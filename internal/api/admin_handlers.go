package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/service"
)

type AdminHandlers struct {
	admin  *service.AdminService
	logger *zap.Logger
}

func NewAdminHandlers(admin *service.AdminService, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{admin: admin, logger: logger}
}

type createDoctorRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

func (h *AdminHandlers) CreateDoctor(c echo.Context) error {
	var req createDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	doctor, err := h.admin.CreateDoctor(c.Request().Context(), req.Username, req.Password, req.Name, req.Specialization)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, doctor)
}

func (h *AdminHandlers) ListUsers(c echo.Context) error {
	users, err := h.admin.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, users)
}

type setBanRequest struct {
	Banned bool `json:"banned"`
}

func (h *AdminHandlers) SetBan(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req setBanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.admin.SetBan(c.Request().Context(), userID, req.Banned); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandlers) ListRatings(c echo.Context) error {
	ratings, err := h.admin.ListRatings(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, ratings)
}

func (h *AdminHandlers) DeleteRating(c echo.Context) error {
	ratingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid rating id")
	}

	if err := h.admin.DeleteRating(c.Request().Context(), ratingID); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

type setAuthModeRequest struct {
	Mode string `json:"mode"`
}

func (h *AdminHandlers) SetAuthMode(c echo.Context) error {
	var req setAuthModeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.admin.SetAuthMode(c.Request().Context(), req.Mode); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
