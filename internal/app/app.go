package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"registration-service/common/logger"
	commonmetrics "registration-service/common/metrics"
	"registration-service/common/telemetry"
	"registration-service/internal/admin"
	"registration-service/internal/config"
	"registration-service/internal/db"
	"registration-service/internal/health"
	"registration-service/internal/messaging"
	"registration-service/internal/metrics"
	"registration-service/internal/middleware"
	"registration-service/internal/registration"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	telemetry *telemetry.Telemetry
	publisher eventPublisher
}

// eventPublisher is a registration.Publisher that holds a broker connection.
type eventPublisher interface {
	registration.Publisher
	Close() error
}

// Deps are the collaborators the HTTP routes need.
type Deps struct {
	Config        *config.Config
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	InfraMetrics  *commonmetrics.Metrics
	Registrations registration.Service
	Admin         *admin.Service
	Checks        map[string]health.Checker
}

func New(ctx context.Context) (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.LogLevel != "" {
		slogLogger = logger.NewWithOptions(logger.Options{Level: cfg.LogLevel}).With(
			slog.String("service", ServiceName),
			slog.String("version", Version),
			slog.String("environment", cfg.Env),
		)
		slog.SetDefault(slogLogger)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	tel, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Env:            cfg.Env,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
	}, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	serviceMetrics, err := metrics.New(tel.Metrics.Meter())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize service metrics: %w", err)
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := tel.Metrics.Database.RegisterDB(database.DB, tel.Metrics.Meter()); err != nil {
		slogLogger.Warn("failed to register database metrics", "error", err)
	}

	models, indexes := registration.Schema()
	if err := db.RunMigrations(ctx, database, models, indexes...); err != nil {
		db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    slogLogger,
		db:        database,
		telemetry: tel,
	}

	checks := map[string]health.Checker{
		"postgres": health.CheckerFunc(database.PingContext),
	}

	app.publisher = newPublisher(cfg.Events, tel.Metrics, slogLogger)
	var publisher registration.Publisher
	if app.publisher != nil {
		publisher = app.publisher
		if nats, ok := app.publisher.(*messaging.NATSPublisher); ok {
			checks["nats"] = nats
		}
	}

	sessions, err := admin.NewSessions(cfg.Admin.SessionKey, time.Duration(cfg.Admin.SessionTTLHours)*time.Hour)
	if err != nil {
		app.close()
		return nil, err
	}
	if cfg.Admin.SessionKey == "" {
		slogLogger.Warn("ADMIN_SESSION_KEY not set, admin sessions will not survive a restart")
	}

	validator := registration.NewValidator(registration.DefaultContract())
	repo := registration.NewRepository(database, tel.Metrics)

	app.router = NewRouter(Deps{
		Config:        cfg,
		Logger:        slogLogger,
		Metrics:       serviceMetrics,
		InfraMetrics:  tel.Metrics,
		Registrations: registration.NewService(validator, repo, publisher, slogLogger),
		Admin:         admin.NewService(cfg.Admin.Password, sessions),
		Checks:        checks,
	})

	slogLogger.Info("application initialized successfully")

	return app, nil
}

// newPublisher connects to the configured broker. A broker that cannot be
// reached disables events instead of failing startup.
func newPublisher(cfg config.EventsConfig, m *commonmetrics.Metrics, logger *slog.Logger) eventPublisher {
	timeout := time.Duration(cfg.Timeout) * time.Second

	switch cfg.Driver {
	case "nats":
		p, err := messaging.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, timeout, m, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS publisher, events disabled", "error", err)
			return nil
		}
		return p
	case "kafka":
		p, err := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, timeout, m, logger)
		if err != nil {
			logger.Warn("failed to initialize kafka publisher, events disabled", "error", err)
			return nil
		}
		return p
	default:
		logger.Info("event publishing disabled")
		return nil
	}
}

// NewRouter builds the HTTP surface of the service.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.Config.Server.CORSOrigins))

	healthHandler := health.NewHandler(d.Checks, d.InfraMetrics, d.Logger)
	healthHandler.RegisterRoutes(r)

	registrationHandler := registration.NewHandler(d.Registrations, d.Logger, d.Metrics, d.Config.Server.MaxBodyBytes)
	adminHandler := admin.NewHandler(d.Admin, admin.CookieOptionsForEnv(d.Config.Env), d.Logger, d.Metrics)

	r.Route("/api", func(r chi.Router) {
		registrationHandler.RegisterRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			adminHandler.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(admin.RequireSession(d.Admin.Sessions(), d.Logger))
				registrationHandler.RegisterAdminRoutes(r)
			})
		})
	})

	return r
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}
	a.close()

	return errors.Join(errs...)
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close event publisher", "error", err)
		}
	}
	db.Close(a.db)
}
