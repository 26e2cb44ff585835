package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/medvisit/scheduler/internal/api"
	"github.com/medvisit/scheduler/internal/config"
	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/notify"
	"github.com/medvisit/scheduler/internal/repository"
	"github.com/medvisit/scheduler/internal/repository/base"
	"github.com/medvisit/scheduler/internal/service"
	"github.com/medvisit/scheduler/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// App owns the assembled server and its shared resources.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	echo   *echo.Echo
}

// New connects to the database, runs migrations, wires repositories,
// services and handlers, and returns a server ready to listen.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrator, err := NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer migrator.Close()
	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	version, err := migrator.Version(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("Migrations applied", zap.Int64("version", version))

	slots := repository.NewSlotRepository(pool)
	absences := repository.NewAbsenceRepository(pool)
	cart := repository.NewCartRepository(pool)
	users := repository.NewUserRepository(pool)
	ratings := repository.NewRatingRepository(pool)
	settings := repository.NewSettingRepository(pool)
	runner := base.NewPoolRunner(pool)

	attachments, err := storage.NewDiskStore(cfg.UploadDir, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	hub := notify.NewHub(logger)

	availabilitySvc := service.NewAvailabilityService(runner, slots, absences, hub, logger)
	absenceSvc := service.NewAbsenceService(runner, slots, absences, hub, logger)
	cartSvc := service.NewCartService(runner, slots, cart, attachments, hub, logger)
	checkoutSvc := service.NewCheckoutService(runner, slots, cart, absences, hub, logger)
	scheduleSvc := service.NewScheduleService(runner, slots, attachments, hub, logger)
	authSvc := service.NewAuthService(users, settings, cfg.JWTSecret, logger)
	adminSvc := service.NewAdminService(users, ratings, settings, logger)
	ratingSvc := service.NewRatingService(users, slots, ratings, logger)

	if err := seedAdmin(ctx, users, cfg, logger); err != nil {
		pool.Close()
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router := api.NewRouter(
		api.NewAuthHandlers(authSvc, logger),
		api.NewDoctorHandlers(availabilitySvc, absenceSvc, scheduleSvc, logger),
		api.NewPatientHandlers(cartSvc, checkoutSvc, scheduleSvc, ratingSvc, attachments, logger),
		api.NewAdminHandlers(adminSvc, logger),
		api.NewPublicHandlers(ratingSvc, logger),
		authSvc,
		hub,
		attachments.Dir(),
	)
	router.Register(e)

	return &App{cfg: cfg, logger: logger, pool: pool, echo: e}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", a.cfg.HTTPAddr))
		if err := a.echo.Start(a.cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	a.logger.Info("HTTP server stopped")
	return nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.pool.Close()
}

// seedAdmin creates the bootstrap admin account on first start. Skipped when
// an admin already exists or no password is configured.
func seedAdmin(ctx context.Context, users *repository.UserRepository, cfg *config.Config, logger *zap.Logger) error {
	exists, err := users.ExistsAdmin(ctx)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil
	}
	if cfg.AdminPassword == "" {
		logger.Warn("No admin account exists and ADMIN_PASSWORD is not set, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.User{
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Name:         "Administrator",
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	logger.Info("Seeded admin account", zap.String("username", cfg.AdminUsername))
	return nil
}
