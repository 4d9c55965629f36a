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

	"github.com/bless15/nacos-admin/internal/app"
	"github.com/bless15/nacos-admin/internal/auth"
	"github.com/bless15/nacos-admin/internal/interests"
	"github.com/bless15/nacos-admin/internal/members"
	"github.com/bless15/nacos-admin/internal/observability"
	"github.com/bless15/nacos-admin/internal/partners"
	"github.com/bless15/nacos-admin/internal/platform/cache"
	"github.com/bless15/nacos-admin/internal/platform/db"
	"github.com/bless15/nacos-admin/internal/projects"
	"github.com/bless15/nacos-admin/internal/resources"
	"github.com/bless15/nacos-admin/internal/shared"
	"github.com/bless15/nacos-admin/internal/users"
	"github.com/bless15/nacos-admin/internal/view"
	"github.com/bless15/nacos-admin/jobs"
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "nacos_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("create jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewEmailNotifier(jobsClient)

	gate := auth.Gate{Logger: logger, Audit: auditLogger}

	authService := auth.NewService(auth.NewRepository(pool), sessionManager)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, auditLogger)

	membersService := members.NewService(logger, members.NewRepository(pool), notifier)
	membersHandler := members.NewHandler(logger, membersService, templates, csrfManager, gate)

	projectsService := projects.NewService(projects.NewRepository(pool))
	projectsHandler := projects.NewHandler(logger, projectsService, templates, csrfManager, gate)

	uploadPolicy := shared.NewUploadPolicy(cfg.UploadDir, cfg.UploadMaxBytes, "pdf", "doc", "docx", "ppt", "pptx", "zip", "png", "jpg", "jpeg")
	resourcesService := resources.NewService(resources.NewRepository(pool), uploadPolicy)
	resourcesHandler := resources.NewHandler(logger, resourcesService, templates, csrfManager, gate)

	partnersService := partners.NewService(partners.NewRepository(pool))
	partnersHandler := partners.NewHandler(logger, partnersService, templates, csrfManager, gate)

	interestsService := interests.NewService(logger, interests.NewRepository(pool), notifier)
	interestsHandler := interests.NewHandler(logger, interestsService, templates, csrfManager, gate)

	usersService := users.NewService(users.NewRepository(pool))
	usersHandler := users.NewHandler(logger, usersService, templates, csrfManager, gate)

	metrics := observability.NewMetrics()
	dashboard := app.NewDashboard(logger, templates, csrfManager, membersService, projectsService, resourcesService, partnersService, interestsService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Audit:            auditLogger,
		AuthHandler:      authHandler,
		MembersHandler:   membersHandler,
		ProjectsHandler:  projectsHandler,
		ResourcesHandler: resourcesHandler,
		PartnersHandler:  partnersHandler,
		InterestsHandler: interestsHandler,
		UsersHandler:     usersHandler,
		Dashboard:        dashboard,
		Metrics:          metrics,
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
