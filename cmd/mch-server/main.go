package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mch/mch/internal/config"
	"github.com/mch/mch/internal/domain/account"
	"github.com/mch/mch/internal/domain/antenatal"
	"github.com/mch/mch/internal/domain/community"
	"github.com/mch/mch/internal/domain/contact"
	"github.com/mch/mch/internal/domain/dashboard"
	"github.com/mch/mch/internal/domain/feedback"
	"github.com/mch/mch/internal/domain/kit"
	"github.com/mch/mch/internal/domain/patient"
	"github.com/mch/mch/internal/domain/referral"
	"github.com/mch/mch/internal/domain/report"
	"github.com/mch/mch/internal/domain/settings"
	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/internal/platform/db"
	"github.com/mch/mch/internal/platform/middleware"
	"github.com/mch/mch/migrations"
	"github.com/mch/mch/pkg/permission"
)

const (
	version        = "0.1.0"
	requestTimeout = 30 * time.Second
	maxBodySize    = "2M"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mch-server",
		Short: "Maternal and child health records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(accountsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// openDB loads the config and connects. The caller closes the pool.
func openDB(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			dir, _ := cmd.Flags().GetString("dir")
			return runServer(migrate, dir)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	cmd.Flags().String("dir", "", "Read migrations from this directory instead of the built-in set")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			to, _ := cmd.Flags().GetInt("to")

			ctx := context.Background()
			cfg, pool, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if _, err := db.EnsureSchema(ctx, pool, cfg.DBSchema, nil); err != nil {
				return err
			}
			migrator := db.NewMigrator(pool, migrationSource(dir))
			fmt.Printf("Running migrations on schema: %s\n", cfg.DBSchema)

			var count int
			if to > 0 {
				count, err = migrator.UpTo(ctx, cfg.DBSchema, to)
			} else {
				count, err = migrator.Up(ctx, cfg.DBSchema)
			}
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Read migrations from this directory instead of the built-in set")
	upCmd.Flags().Int("to", 0, "Stop after this version (0 applies everything)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			cfg, pool, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationSource(dir)).Status(ctx, cfg.DBSchema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", cfg.DBSchema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Read migrations from this directory instead of the built-in set")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}

	communitiesCmd := &cobra.Command{
		Use:   "communities",
		Short: "Import communities from a CSV file (region,district,subdistrict,community)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return fmt.Errorf("--file is required")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			records, err := community.ParseCSV(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			ctx := context.Background()
			cfg, pool, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx, release, err := db.BindSchema(ctx, pool, cfg.DBSchema)
			if err != nil {
				return err
			}
			defer release()

			svc := community.NewService(community.NewRepoPG(pool), cfg.CommunityCacheTTL)
			n, err := svc.Import(ctx, records)
			if err != nil {
				return fmt.Errorf("import communities: %w", err)
			}
			fmt.Printf("Imported %d new communities (%d rows read).\n", n, len(records))
			return nil
		},
	}
	communitiesCmd.Flags().String("file", "", "CSV file to import")
	cmd.AddCommand(communitiesCmd)

	return cmd
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}

	adminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			fullName, _ := cmd.Flags().GetString("full-name")
			password := os.Getenv("MCH_ADMIN_PASSWORD")
			if password == "" {
				return fmt.Errorf("MCH_ADMIN_PASSWORD must be set")
			}

			ctx := context.Background()
			cfg, pool, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx, release, err := db.BindSchema(ctx, pool, cfg.DBSchema)
			if err != nil {
				return err
			}
			defer release()

			locations := community.NewService(community.NewRepoPG(pool), cfg.CommunityCacheTTL)
			svc := account.NewService(account.NewRepoPG(pool), nil, nil, locations)
			a, err := svc.Create(ctx, &account.CreateRequest{
				Username: username,
				Password: password,
				FullName: fullName,
				UserType: permission.Admin,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Printf("Created admin %s (%s).\n", a.Username, a.ID)
			return nil
		},
	}
	adminCmd.Flags().String("username", "admin", "Login name")
	adminCmd.Flags().String("full-name", "Administrator", "Display name")
	cmd.AddCommand(adminCmd)

	return cmd
}

// migrationSource returns the embedded migrations, or dir when set.
func migrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func runServer(migrate bool, migrationsDir string) error {
	logger := newLogger(os.Getenv("ENV"), os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if migrate {
		n, err := db.EnsureSchema(ctx, pool, cfg.DBSchema, migrationSource(migrationsDir), db.WithMigrationLogger(logger))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate")
		}
		logger.Info().Int("applied", n).Str("schema", cfg.DBSchema).Msg("migrations applied")
	}

	e := newServer(cfg, pool, logger)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer builds the echo instance with every route. Nothing here talks
// to the database until a request arrives.
func newServer(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	revocations := auth.NewTokenRevocationStore(cfg.TokenTTL)

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(middleware.RequestTimeout(requestTimeout, "/api/v1/reports/"))
	e.Use(middleware.RateLimit(rateLimitCfg))
	e.Use(auth.JWTMiddleware(auth.JWTConfig{
		Issuer:      cfg.JWTIssuer,
		SigningKey:  []byte(cfg.JWTSigningKey),
		Revocations: revocations,
		Skipper:     auth.AuthSkipper,
	}))
	e.Use(skipWhen(auth.InfraSkipper, db.SchemaMiddleware(pool, cfg.DBSchema)))
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool, cfg.DBSchema))
	e.GET("/metrics", middleware.MetricsHandler())

	apiV1 := e.Group("/api/v1")

	communitySvc := community.NewService(community.NewRepoPG(pool), cfg.CommunityCacheTTL)
	community.NewHandler(communitySvc).RegisterRoutes(apiV1)

	issuer := auth.NewIssuer(cfg.JWTIssuer, []byte(cfg.JWTSigningKey), cfg.TokenTTL)
	accountSvc := account.NewService(account.NewRepoPG(pool), issuer, revocations, communitySvc,
		account.WithLogger(logger))
	account.NewHandler(accountSvc).RegisterRoutes(apiV1)

	patientSvc := patient.NewService(patient.NewRepoPG(pool), communitySvc)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	antenatalSvc := antenatal.NewService(antenatal.NewRegistrationRepoPG(pool), antenatal.NewVisitRepoPG(pool), patientSvc)
	antenatal.NewHandler(antenatalSvc).RegisterRoutes(apiV1)

	kitSvc := kit.NewService(kit.NewRepoPG(pool), patientSvc)
	kit.NewHandler(kitSvc).RegisterRoutes(apiV1)

	contactSvc := contact.NewService(contact.NewRepoPG(pool), communitySvc)
	contact.NewHandler(contactSvc).RegisterRoutes(apiV1)

	referralSvc := referral.NewService(referral.NewRepoPG(pool), patientSvc, communitySvc)
	referral.NewHandler(referralSvc).RegisterRoutes(apiV1)

	feedbackSvc := feedback.NewService(feedback.NewRepoPG(pool), logger)
	feedback.NewHandler(feedbackSvc).RegisterRoutes(apiV1)

	settingsSvc := settings.NewService(settings.NewRepoPG(pool), communitySvc)
	settings.NewHandler(settingsSvc).RegisterRoutes(apiV1)

	reportSvc := report.NewService(report.NewRepoPG(pool))
	report.NewHandler(reportSvc).RegisterRoutes(apiV1)

	dashboardSvc := dashboard.NewService(dashboard.NewRepoPG(pool))
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(apiV1)

	return e
}

// skipWhen runs mw except for requests skip selects.
func skipWhen(skip func(echo.Context) bool, mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		wrapped := mw(next)
		return func(c echo.Context) error {
			if skip(c) {
				return next(c)
			}
			return wrapped(c)
		}
	}
}
