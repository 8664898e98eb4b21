package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clinicore/clinicore/internal/app"
	"github.com/clinicore/clinicore/internal/appointments"
	"github.com/clinicore/clinicore/internal/audit"
	audithttp "github.com/clinicore/clinicore/internal/audit/http"
	"github.com/clinicore/clinicore/internal/auth"
	"github.com/clinicore/clinicore/internal/notes"
	"github.com/clinicore/clinicore/internal/observability"
	"github.com/clinicore/clinicore/internal/patients"
	"github.com/clinicore/clinicore/internal/paystubs"
	"github.com/clinicore/clinicore/internal/platform/cache"
	"github.com/clinicore/clinicore/internal/platform/db"
	"github.com/clinicore/clinicore/internal/rbac"
	"github.com/clinicore/clinicore/internal/shared"
	"github.com/clinicore/clinicore/internal/telephony"
	"github.com/clinicore/clinicore/internal/users"
	"github.com/clinicore/clinicore/jobs"
	"github.com/clinicore/clinicore/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Sessions live in Redis, nothing works without it.
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "clinicore_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	auditSink := audit.NewInstrumentedSink(audit.NewPGSink(pool), metrics.CountAuditRecord)
	auditService := audit.NewService(auditSink)

	resolver := rbac.NewPGResolver(pool)
	guard := rbac.NewGuard(resolver, auditSink, logger)
	rbacMiddleware := rbac.Middleware{Guard: guard, Policy: rbac.DefaultPolicy(), Logger: logger}

	var converter audit.HTMLConverter
	if cfg.GotenbergURL != "" {
		converter = report.NewClient(cfg.GotenbergURL)
	} else {
		logger.Warn("gotenberg url not set, pdf export disabled")
	}
	pdfExporter, err := audit.NewPDFExporter(converter)
	if err != nil {
		logger.Error("init pdf exporter", slog.Any("error", err))
		os.Exit(1)
	}
	auditHandler := audithttp.NewHandler(logger, auditService, pdfExporter)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, auditSink)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	patientsRepo := patients.NewRepository(pool)
	patientsService := patients.NewService(patientsRepo)
	patientsHandler := patients.NewHandler(logger, patientsService)

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, cfg.ReminderLead)
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	appointmentsRepo := appointments.NewRepository(pool)
	appointmentsService := appointments.NewService(appointmentsRepo, queueClient, logger)
	appointmentsHandler := appointments.NewHandler(logger, appointmentsService)

	notesRepo := notes.NewRepository(pool)
	notesService := notes.NewService(notesRepo)
	notesHandler := notes.NewHandler(logger, notesService)

	paystubsRepo := paystubs.NewRepository(pool)
	paystubsService := paystubs.NewService(paystubsRepo)
	paystubsHandler := paystubs.NewHandler(logger, paystubsService)

	telephonyRepo := telephony.NewRepository(pool)
	telephonyService := telephony.NewService(telephonyRepo, queueClient, logger)
	telephonyHandler := telephony.NewHandler(logger, telephonyService, cfg.TelephonyWebhookToken)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		Pool:                pool,
		RBACMiddleware:      rbacMiddleware,
		AuthHandler:         authHandler,
		AuditHandler:        auditHandler,
		UsersHandler:        usersHandler,
		PatientsHandler:     patientsHandler,
		AppointmentsHandler: appointmentsHandler,
		NotesHandler:        notesHandler,
		PaystubsHandler:     paystubsHandler,
		TelephonyHandler:    telephonyHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
