package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/Dosada05/football-tournaments/db"
	"github.com/Dosada05/football-tournaments/handlers"
	"github.com/Dosada05/football-tournaments/realtime"
	"github.com/Dosada05/football-tournaments/repositories"
	"github.com/Dosada05/football-tournaments/routes"
	"github.com/Dosada05/football-tournaments/services"
	"github.com/Dosada05/football-tournaments/storage"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, realtime hub and scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger

	if err := db.Migrate(ctx, a.db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Cloudflare R2 опционален: без него загрузка логотипов отвечает UPLOADS_DISABLED
	var uploader storage.FileUploader
	r2cfg := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
	}
	if r2cfg.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", r2cfg.BucketName))
	} else {
		logger.Warn("R2 is not configured, logo uploads are disabled")
	}

	mailer := services.NewLogMailer(logger)
	if cfg.SMTP.Enabled() {
		mailer = services.NewSMTPMailer(cfg.SMTP)
	} else {
		logger.Warn("SMTP is not configured, emails will only be logged")
	}

	hub := realtime.NewHub(logger)

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(a.db)
	revokedRepo := repositories.NewPostgresRevokedTokenRepository(a.db)
	clubRepo := repositories.NewPostgresClubRepository(a.db)
	tournamentRepo := repositories.NewPostgresTournamentRepository(a.db)
	ageGroupRepo := repositories.NewPostgresAgeGroupRepository(a.db)
	registrationRepo := repositories.NewPostgresRegistrationRepository(a.db)
	drawRepo := repositories.NewPostgresDrawRepository(a.db)
	notificationRepo := repositories.NewPostgresNotificationRepository(a.db)
	invitationRepo := repositories.NewPostgresInvitationRepository(a.db)
	txManager := repositories.NewPostgresTxManager(a.db)

	// Сервисы
	emailService := services.NewEmailService(mailer, cfg.PublicURL, logger)
	tokens := services.NewTokenManager(cfg.JWTSecretKey, cfg.JWTTTL)
	notificationService := services.NewNotificationService(notificationRepo, hub, logger)
	authService := services.NewAuthService(userRepo, revokedRepo, tokens, emailService, logger)
	adminService := services.NewAdminUserService(userRepo, logger)
	clubService := services.NewClubService(clubRepo, uploader, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, ageGroupRepo, notificationService, uploader, logger)
	ageGroupService := services.NewAgeGroupService(ageGroupRepo, tournamentRepo, txManager, logger)
	registrationService := services.NewRegistrationService(registrationRepo, tournamentRepo, ageGroupRepo,
		clubRepo, userRepo, txManager, notificationService, emailService, logger)
	drawService := services.NewDrawService(services.DrawServiceDeps{
		AgeGroupRepo:     ageGroupRepo,
		TournamentRepo:   tournamentRepo,
		RegistrationRepo: registrationRepo,
		DrawRepo:         drawRepo,
		ClubRepo:         clubRepo,
		UserRepo:         userRepo,
		TxManager:        txManager,
		Notifications:    notificationService,
		Email:            emailService,
		Hub:              hub,
		Logger:           logger,
	})
	invitationService := services.NewInvitationService(invitationRepo, clubRepo, userRepo, txManager,
		notificationService, emailService, logger)
	dashboardService := services.NewDashboardService(tournamentRepo, clubRepo, registrationRepo, notificationRepo, uploader)
	scheduler := services.NewScheduler(tournamentService, invitationService, revokedRepo, cfg.SchedulerInterval, logger)
	logger.Info("services initialized")

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Admin:         handlers.NewAdminHandler(adminService),
		Club:          handlers.NewClubHandler(clubService),
		Tournament:    handlers.NewTournamentHandler(tournamentService),
		AgeGroup:      handlers.NewAgeGroupHandler(ageGroupService),
		Registration:  handlers.NewRegistrationHandler(registrationService),
		Draw:          handlers.NewDrawHandler(drawService),
		Notification:  handlers.NewNotificationHandler(notificationService),
		Invite:        handlers.NewInviteHandler(invitationService),
		Dashboard:     handlers.NewDashboardHandler(dashboardService),
		WebSocket:     handlers.NewWebSocketHandler(hub, authService, cfg.CORSOrigins, logger),
		Health:        handlers.NewHealthHandler(a.db),
		Authenticator: authService,
	}, cfg.CORSOrigins, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// Фоновые задачи живут, пока жив ctx сервера
	bgCtx, cancelBackground := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(bgCtx)
	}()
	go func() {
		defer wg.Done()
		scheduler.Run(bgCtx)
	}()
	logger.Info("realtime hub and scheduler started", slog.Duration("interval", cfg.SchedulerInterval))

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received", slog.Any("cause", context.Cause(ctx)))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			runErr = err
		} else {
			logger.Info("server shutdown complete")
		}
	}

	cancelBackground()
	wg.Wait()
	logger.Info("application exited")
	return runErr
}
