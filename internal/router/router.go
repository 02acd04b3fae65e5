package router

import (
	"fmt"
	"log/slog"

	"github.com/digitalblog/backoffice/internal/access"
	"github.com/digitalblog/backoffice/internal/admin"
	"github.com/digitalblog/backoffice/internal/audit"
	"github.com/digitalblog/backoffice/internal/handlers"
	"github.com/digitalblog/backoffice/internal/middleware"
	"github.com/digitalblog/backoffice/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Options carry what the routes need beyond the database handle.
type Options struct {
	SecretKey string
	LoginURL  string
	SiteURL   string
	AdminName string
	PageSize  int

	// Recorder journals admin changes; nil disables the journal.
	Recorder audit.Recorder
	// FirebaseAuth verifies Firebase ID tokens; nil disables Firebase callers.
	FirebaseAuth middleware.IDTokenVerifier
}

// SetupRoutes migrates the schema, builds the admin registry and registers
// every route.
func SetupRoutes(e *echo.Echo, db *gorm.DB, opts Options) error {
	if err := repositories.Migrate(db); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	slog.Info("schema migrations completed")

	recorder := opts.Recorder
	if recorder == nil {
		recorder = audit.Nop{}
	}

	// Health check - always accessible
	healthHandler := handlers.NewHealthHandler(db)
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/", handlers.Index)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	counterRepo := repositories.NewPostgresCounterRepository(db)

	registry, err := admin.Register(db, access.AdminOnly, admin.Options{
		Name:     opts.AdminName,
		PageSize: opts.PageSize,
		SiteURL:  opts.SiteURL,
	})
	if err != nil {
		return err
	}
	service := admin.NewService(db, registry, recorder)

	// --- Caller resolution: session tokens first, then Firebase ID tokens ---
	resolvers := []middleware.CallerResolver{middleware.NewJWTResolver(opts.SecretKey, userRepo)}
	if opts.FirebaseAuth != nil {
		resolvers = append(resolvers, middleware.NewFirebaseResolver(opts.FirebaseAuth, userRepo))
		slog.Info("firebase callers enabled")
	}

	// --- Admin routes (administrators only) ---
	adminGroup := e.Group("/admin",
		middleware.ResolveCaller(middleware.ChainResolvers(resolvers...)),
		middleware.AdminGate(registry.Policy, opts.LoginURL),
	)

	maintenanceHandler := handlers.NewMaintenanceHandler(counterRepo, recorder)
	maintenanceHandler.RegisterMaintenanceRoutes(adminGroup)

	adminHandler := handlers.NewAdminHandler(service, notificationRepo)
	adminHandler.RegisterAdminRoutes(adminGroup)

	slog.Info("routes configured", "views", len(registry.Views()))
	return nil
}
