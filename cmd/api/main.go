package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/portfolio/internal/auth"
	"github.com/BradenHooton/portfolio/internal/background"
	"github.com/BradenHooton/portfolio/internal/config"
	"github.com/BradenHooton/portfolio/internal/database"
	"github.com/BradenHooton/portfolio/internal/handlers"
	"github.com/BradenHooton/portfolio/internal/metrics"
	middlewareCustom "github.com/BradenHooton/portfolio/internal/middleware"
	"github.com/BradenHooton/portfolio/internal/repositories"
	"github.com/BradenHooton/portfolio/internal/routes"
	"github.com/BradenHooton/portfolio/internal/services"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
	pkglogger "github.com/BradenHooton/portfolio/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := pkglogger.New(os.Stdout, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	// Repositories
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	projectRepo := repositories.NewProjectRepository(db)

	auditLogger := pkglogger.NewAuditLogger(logger)
	views := services.NewViewCache()
	httpClient := &http.Client{Timeout: 10 * time.Second}

	// Contact form
	mailer, err := services.NewSESMailer(context.Background(), cfg.Contact.AWSRegion, cfg.Contact.FromAddress, cfg.Contact.Recipient, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}
	if !mailer.Configured() {
		logger.Warn("contact mailer not configured; /contact will report an error")
	}
	contactLimiter := services.NewContactRateLimiter(cfg.Contact.RateLimitMax, cfg.Contact.RateLimitWindow)
	contactService := services.NewContactService(contactLimiter, mailer, logger, recorder)

	// Login attempts
	loginAttemptService := services.NewLoginAttemptService(loginAttemptRepo, logger, auditLogger, recorder, views, cfg.LoginAttempts.ListLimit)

	// Projects; storage is optional
	var images services.ImageStore
	if cfg.Storage.Enabled() {
		images = services.NewStorageService(services.StorageOptions{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		}, logger)
	} else {
		logger.Warn("object storage not configured; image uploads are disabled")
	}
	projectService := services.NewProjectService(projectRepo, images, views, auditLogger, logger, services.ProjectServiceConfig{
		MaxImageBytes: cfg.Storage.MaxUploadBytes,
	})

	// Auth
	goTrue := services.NewGoTrueClient(cfg.Auth.ProviderURL, cfg.Auth.ProviderAnonKey, httpClient)
	authService := services.NewAuthService(goTrue, &cfg.Auth, loginAttemptService, logger)
	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret)

	githubService := services.NewGitHubService(services.GitHubOptions{
		Token:             cfg.GitHub.Token,
		DefaultUsername:   cfg.GitHub.Username,
		APIURL:            cfg.GitHub.APIURL,
		RequestsPerMinute: cfg.GitHub.RequestsPerMinute,
	}, httpClient, views, logger)

	adminService := services.NewAdminService(projectRepo, loginAttemptService, views, logger)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.CORSConfig{AllowedOrigins: cfg.Server.AllowedOrigins}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middlewareCustom.Metrics(recorder))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, routes.Handlers{
		Contact:       handlers.NewContactHandler(contactService, logger),
		LoginAttempts: handlers.NewLoginAttemptHandler(loginAttemptService, auditLogger, logger, cfg.LoginAttempts.RetentionDays),
		Projects:      handlers.NewProjectHandler(projectService, logger, cfg.Storage.MaxUploadBytes),
		Auth:          handlers.NewAuthHandler(authService, logger),
		GitHub:        handlers.NewGitHubHandler(githubService, logger),
		Admin:         handlers.NewAdminHandler(adminService, logger),
	}, routes.Guards{
		Verifier:   verifier,
		Admins:     &cfg.Auth,
		CronSecret: cfg.Auth.CronSecret,
		AuthLimit:  middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Auth.LoginRateLimit},
	}, logger)

	router.Handle("/metrics", metrics.Handler(registry))

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "up"})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Optional in-process retention; the cron endpoint is the primary trigger
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	var cleanupManager *background.CleanupManager
	if cfg.LoginAttempts.CleanupInterval > 0 {
		cleanupManager = background.NewCleanupManager(loginAttemptService, logger, cfg.LoginAttempts.CleanupInterval, cfg.LoginAttempts.RetentionDays)
		go cleanupManager.Start(cleanupCtx)
	}

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	if cleanupManager != nil {
		cleanupManager.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
