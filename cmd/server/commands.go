package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/digitalblog/backoffice/internal/audit"
	"github.com/digitalblog/backoffice/internal/middleware"
	"github.com/digitalblog/backoffice/internal/models"
	"github.com/digitalblog/backoffice/internal/repositories"
	"github.com/digitalblog/backoffice/internal/router"
	"github.com/digitalblog/backoffice/pkg/config"
	"github.com/digitalblog/backoffice/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var (
	dryRun   bool
	email    string
	roleName string
	tokenTTL time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "DigitalBlog admin back-office",
	Long: `Administrative back-office of the DigitalBlog platform.

Configuration is read from the environment (and a .env file):
  SECRET_KEY, DATABASE_URL          required
  PORT, LOGIN_URL, SITE_URL, ADMIN_NAME, ADMIN_PAGE_SIZE, LOG_LEVEL
  MONGO_URI, MONGO_DATABASE         enable the admin audit journal
  FIREBASE_CREDENTIALS_PATH         accept Firebase ID tokens`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the schema and serve the admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *config.DB) error {
			if err := repositories.Migrate(db.SQL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		})
	},
}

var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Recompute cached counters from the join tables",
	Long: `Recompute post.views_count, post.favourites_count and comment.likes_count
from post_views, post_favourites and comment_likes.

Examples:
  server recount            # rewrite drifted counters
  server recount --dry-run  # only list the drifted rows`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *config.DB) error {
			return runRecount(cmd.Context(), db, cmd.OutOrStdout())
		})
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Set the role of a user",
	Long: `Set the role of the user with the given e-mail address.

Examples:
  server grant --email root@example.com --role admin
  server grant --email troll@example.com --role 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := models.ParseRole(roleName)
		if err != nil {
			return err
		}
		if !role.Valid() {
			return fmt.Errorf("unknown role %d", role)
		}
		return withDatabase(func(db *config.DB) error {
			return runGrant(cmd.Context(), db, email, role, cmd.OutOrStdout())
		})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		config.SetupLogger(cfg)

		db, err := config.InitDB(&config.Config{DatabaseURL: cfg.DatabaseURL})
		if err != nil {
			return err
		}
		defer db.CloseDB()

		user, err := repositories.NewPostgresUserRepository(db.SQL).GetUserByEmail(cmd.Context(), email)
		if err != nil {
			return err
		}
		token, err := middleware.IssueToken(cfg.SecretKey, user, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	recountCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List drifted counters without changing them")

	grantCmd.Flags().StringVar(&email, "email", "", "E-mail address of the user")
	grantCmd.Flags().StringVar(&roleName, "role", "admin", "Role name or number")
	_ = grantCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringVar(&email, "email", "", "E-mail address of the user")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, recountCmd, grantCmd, tokenCmd)
}

// withDatabase runs fn against the configured database only; the secret
// key and the web settings are not needed.
func withDatabase(fn func(db *config.DB) error) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	config.SetupLogger(cfg)

	db, err := config.InitDB(&config.Config{DatabaseURL: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	defer db.CloseDB()
	return fn(db)
}

func runServe(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.SetupLogger(cfg)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB() // Ensure database connections are closed when serve exits

	opts := router.Options{
		SecretKey: cfg.SecretKey,
		LoginURL:  cfg.LoginURL,
		SiteURL:   cfg.SiteURL,
		AdminName: cfg.AdminName,
		PageSize:  cfg.AdminPageSize,
	}

	if db.Mongo != nil {
		recorder := audit.NewMongoRecorder(db.Mongo.Database(cfg.MongoDatabase))
		if err := recorder.EnsureIndexes(ctx); err != nil {
			slog.Warn("audit indexes not created", "error", err)
		}
		opts.Recorder = recorder
	}

	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return err
		}
		opts.FirebaseAuth = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Setup global middleware
	config.SetupMiddleware(e, logger)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db.SQL, opts); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "port", cfg.Port, "env", cfg.Env)
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

func runGrant(ctx context.Context, db *config.DB, email string, role models.Role, out io.Writer) error {
	users := repositories.NewPostgresUserRepository(db.SQL)
	user, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := users.SetRole(ctx, user.ID, role); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is now %s\n", user.Email, role)
	return nil
}

func runRecount(ctx context.Context, db *config.DB, out io.Writer) error {
	counters := repositories.NewPostgresCounterRepository(db.SQL)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if dryRun {
		drifts, err := counters.Drift(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "COUNTER\tID\tSTORED\tACTUAL")
		for _, d := range drifts {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", d.Counter, d.ID, d.Stored, d.Actual)
		}
		return nil
	}

	changed, err := counters.Recount(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(changed))
	for counter := range changed {
		names = append(names, string(counter))
	}
	sort.Strings(names)

	fmt.Fprintln(w, "COUNTER\tROWS UPDATED")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%d\n", name, changed[repositories.Counter(name)])
	}
	return nil
}
