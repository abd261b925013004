package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hrm/api"
	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/auth"
	authPostgres "github.com/frahmantamala/hrm/internal/auth/postgres"
	"github.com/frahmantamala/hrm/internal/core/events"
	"github.com/frahmantamala/hrm/internal/employee"
	employeePostgres "github.com/frahmantamala/hrm/internal/employee/postgres"
	"github.com/frahmantamala/hrm/internal/infrastructure/redisstore"
	"github.com/frahmantamala/hrm/internal/mail"
	"github.com/frahmantamala/hrm/internal/observability"
	"github.com/frahmantamala/hrm/internal/team"
	teamPostgres "github.com/frahmantamala/hrm/internal/team/postgres"
	"github.com/frahmantamala/hrm/internal/tenant"
	tenantPostgres "github.com/frahmantamala/hrm/internal/tenant/postgres"
	"github.com/frahmantamala/hrm/internal/title"
	titlePostgres "github.com/frahmantamala/hrm/internal/title/postgres"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/internal/transport/middleware"
	"github.com/frahmantamala/hrm/internal/transport/rest"
	"github.com/frahmantamala/hrm/internal/transport/swagger"
	"github.com/frahmantamala/hrm/internal/user"
	userPostgres "github.com/frahmantamala/hrm/internal/user/postgres"
	"github.com/frahmantamala/hrm/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	shutdownTimeout     = 30 * time.Second
	blacklistPurgeEvery = time.Hour
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Gorm       *gorm.DB
	Redis      *redis.Client
	EventBus   *events.EventBus
	Mail       *mail.Dispatcher
	Blacklist  *authPostgres.TokenBlacklist
	Router     *chi.Mux
	Logger     *slog.Logger
	shutdownFn func(context.Context) error
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(deps.Router, "hrm.http"),
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	if deps.Blacklist != nil {
		go purgeBlacklist(bgCtx, deps.Blacklist, deps.Logger)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed", "error", err)
		}
	}

	stopBackground()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error("Server shutdown error", "error", err)
	}
	deps.close(ctx)

	deps.Logger.Info("Server stopped")
}

// close releases resources in reverse order of construction: handlers still
// publishing events must drain before the mail queue stops.
func (d *Dependencies) close(ctx context.Context) {
	if err := d.EventBus.Close(ctx); err != nil {
		d.Logger.Warn("event handlers did not finish", "error", err)
	}
	d.Mail.Shutdown()
	if d.shutdownFn != nil {
		if err := d.shutdownFn(ctx); err != nil {
			d.Logger.Error("tracer shutdown error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func purgeBlacklist(ctx context.Context, bl *authPostgres.TokenBlacklist, lg *slog.Logger) {
	ticker := time.NewTicker(blacklistPurgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := bl.Purge(ctx, now)
			if err != nil {
				lg.Error("failed to purge token blacklist", "error", err)
				continue
			}
			if n > 0 {
				lg.Debug("purged expired blacklist entries", "count", n)
			}
		}
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	shutdownTracing, err := observability.InitTracing(context.Background(), config.Observability.Tracing, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gormDB, err := initGorm(db, config.Observability.Logging.Level)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	deps := &Dependencies{
		Config:     config,
		DB:         db,
		Gorm:       gormDB,
		Logger:     lg,
		Router:     chi.NewRouter(),
		shutdownFn: shutdownTracing,
	}

	var (
		blacklist auth.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if config.Redis.Enabled {
		client, err := redisstore.NewClient(config.Redis.URL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		deps.Redis = client
		blacklist = redisstore.NewTokenBlacklist(client)
		limiter = redisstore.NewFixedWindowLimiter(client, int64(config.Throttle.RegisterPerHour), time.Hour)
	} else {
		deps.Blacklist = authPostgres.NewTokenBlacklist(gormDB)
		blacklist = deps.Blacklist
		lg.Warn("redis disabled, registration throttling is off")
	}

	deps.EventBus = events.NewEventBus(lg)
	deps.Mail = mail.NewDispatcher(newMailSender(config.Mail, lg), mail.DispatcherConfig{
		Workers:     config.Mail.Workers,
		QueueSize:   config.Mail.QueueSize,
		SendTimeout: config.Mail.Timeout,
	}, lg)
	renderer, err := mail.NewRenderer()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}
	mail.NewEventHandler(deps.Mail, renderer, lg).RegisterEventHandlers(deps.EventBus)

	directory := tenant.NewDirectory(db)
	provisioner, err := tenant.NewSchemaProvisioner(db, config.Database.Source, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	docs, err := swagger.LoadDocs(context.Background(), api.OpenAPI)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load api document: %w", err)
	}

	base := transport.NewBaseHandler(lg)
	checker := auth.NewPermissionChecker()
	tokens := auth.NewJWTTokenGenerator(
		config.Security.JWTAccessSecret,
		config.Security.JWTRefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	userRepo := userPostgres.NewUserRepository(gormDB)
	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(gormDB), userRepo, checker)

	authService := auth.NewService(
		authPostgres.NewRepository(gormDB),
		tokens,
		auth.NewPasswordResetTokens(config.Security.PasswordResetSecret, config.Security.PasswordResetTimeout),
		blacklist,
		deps.EventBus,
		auth.ServiceConfig{
			BCryptCost:          config.Security.BCryptCost,
			VerificationCodeTTL: config.Security.VerificationCodeTTL,
			FrontendURL:         config.Security.FrontendURL,
		},
	)
	tenantService := tenant.NewService(tenantPostgres.NewClientRepository(gormDB), provisioner, employeeService)

	checks := map[string]rest.Check{"postgres": directory.Ping}
	if deps.Redis != nil {
		client := deps.Redis
		checks["redis"] = func(ctx context.Context) error { return redisstore.Ping(ctx, client) }
	}

	rest.RegisterAllRoutes(deps.Router, rest.Routes{
		Logger:         lg,
		AllowedOrigins: config.Server.AllowedOrigins,
		MetricsPath:    metricsPath(config.Observability.Metrics),
		Health:         rest.NewHealthHandler(checks),
		Docs:           docs,
		SchemaRouter:   middleware.NewSchemaRouter(directory, tokens, config.Tenancy.Header, base),
		RBAC:           auth.NewRBACAuthorization(employeeService, checker, base),
		Limiter:        limiter,

		Auth:     auth.NewHandler(base, authService),
		User:     user.NewHandler(base, user.NewService(userRepo)),
		Client:   tenant.NewHandler(base, tenantService),
		Employee: employee.NewHandler(base, employeeService),
		Team:     team.NewHandler(base, team.NewService(teamPostgres.NewTeamRepository(gormDB))),
		Title:    title.NewHandler(base, title.NewService(titlePostgres.NewTitleRepository(gormDB))),
	})

	return deps, nil
}

func metricsPath(cfg internal.MetricsConfig) string {
	if !cfg.Enabled {
		return ""
	}
	return cfg.Path
}

func newMailSender(cfg internal.MailConfig, lg *slog.Logger) mail.Sender {
	if cfg.Driver == "http" {
		return mail.NewHTTPSender(mail.HTTPConfig{
			APIURL:  cfg.APIURL,
			APIKey:  cfg.APIKey,
			From:    cfg.From,
			Timeout: cfg.Timeout,
		}, lg)
	}
	return mail.NewLogSender(lg)
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see the same connections.
func initGorm(db *sqlx.DB, level string) (*gorm.DB, error) {
	mode := gormLogger.Warn
	if logger.ParseLevel(level) > slog.LevelDebug {
		mode = gormLogger.Silent
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(mode),
		TranslateError: true,
	})
}
