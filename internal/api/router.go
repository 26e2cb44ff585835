package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/notify"
	"github.com/medvisit/scheduler/internal/service"
)

// Router binds all HTTP routes onto an echo instance.
type Router struct {
	auth      *AuthHandlers
	doctors   *DoctorHandlers
	patients  *PatientHandlers
	admin     *AdminHandlers
	public    *PublicHandlers
	authSvc   *service.AuthService
	hub       *notify.Hub
	uploadDir string
}

func NewRouter(
	auth *AuthHandlers,
	doctors *DoctorHandlers,
	patients *PatientHandlers,
	admin *AdminHandlers,
	public *PublicHandlers,
	authSvc *service.AuthService,
	hub *notify.Hub,
	uploadDir string,
) *Router {
	return &Router{
		auth:      auth,
		doctors:   doctors,
		patients:  patients,
		admin:     admin,
		public:    public,
		authSvc:   authSvc,
		hub:       hub,
		uploadDir: uploadDir,
	}
}

func (r *Router) Register(e *echo.Echo) {
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/ws", r.hub.Handler)
	e.Static("/uploads", r.uploadDir)

	api := e.Group("/api")

	api.POST("/auth/register", r.auth.Register)
	api.POST("/auth/login", r.auth.Login)
	api.POST("/auth/refresh", r.auth.Refresh)
	api.GET("/auth/settings", r.auth.Settings)

	api.GET("/doctors", r.public.ListDoctors)
	api.GET("/doctors/:id/ratings", r.public.DoctorRatings)
	api.GET("/doctors/:id/absences", r.doctors.ListAbsences)

	authed := api.Group("", Authenticate(r.authSvc))
	authed.POST("/auth/logout", r.auth.Logout)
	authed.GET("/schedule", r.doctors.Schedule)

	doctor := authed.Group("", RequireRole(model.RoleDoctor))
	doctor.POST("/availability", r.doctors.AddAvailability)
	doctor.POST("/availability/cyclical", r.doctors.AddRecurringAvailability)
	doctor.POST("/absences", r.doctors.AddAbsence)
	doctor.GET("/doctor/appointments", r.doctors.MyAppointments)

	patient := authed.Group("", RequireRole(model.RolePatient))
	patient.POST("/cart/add", r.patients.AddToCart)
	patient.GET("/cart", r.patients.GetCart)
	patient.DELETE("/cart/:slotId", r.patients.RemoveFromCart)
	patient.POST("/cart/checkout", r.patients.Checkout)
	patient.GET("/appointments/my", r.patients.MyAppointments)
	patient.POST("/appointments/:id/cancel", r.patients.CancelAppointment)
	patient.POST("/ratings", r.patients.AddRating)
	patient.GET("/ratings/my", r.patients.MyRatings)

	admin := authed.Group("/admin", RequireRole(model.RoleAdmin))
	admin.POST("/doctors", r.admin.CreateDoctor)
	admin.GET("/users", r.admin.ListUsers)
	admin.PUT("/users/:id/ban", r.admin.SetBan)
	admin.GET("/ratings", r.admin.ListRatings)
	admin.DELETE("/ratings/:id", r.admin.DeleteRating)
	admin.PUT("/settings/auth-mode", r.admin.SetAuthMode)
}
