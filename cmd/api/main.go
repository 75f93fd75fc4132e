package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MarceloMarchiori/m3class-backend/api/routes"
	"github.com/MarceloMarchiori/m3class-backend/internal/auth"
	"github.com/MarceloMarchiori/m3class-backend/internal/billing"
	"github.com/MarceloMarchiori/m3class-backend/internal/contact"
	"github.com/MarceloMarchiori/m3class-backend/internal/impersonation"
	"github.com/MarceloMarchiori/m3class-backend/internal/notifications"
	"github.com/MarceloMarchiori/m3class-backend/internal/profiles"
	"github.com/MarceloMarchiori/m3class-backend/internal/provisioning"
	"github.com/MarceloMarchiori/m3class-backend/internal/schools"
	"github.com/MarceloMarchiori/m3class-backend/pkg/auth/session"
	"github.com/MarceloMarchiori/m3class-backend/pkg/config"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db"
	"github.com/MarceloMarchiori/m3class-backend/pkg/instance"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
	"github.com/MarceloMarchiori/m3class-backend/pkg/migrate"
	"github.com/MarceloMarchiori/m3class-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	profileRepo := profiles.NewRepository(dbClient.DB())
	resolver, err := profiles.NewResolver(profileRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile resolver", err)
		os.Exit(1)
	}

	// Overlays live exactly as long as the session they shadow.
	overlay, err := impersonation.NewService(impersonation.ServiceParams{
		Store:    redisClient,
		Keyer:    redisClient,
		Resolver: resolver,
		TTL:      cfg.JWT.RefreshTokenTTL(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create impersonation service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		ProfileRepo:    profileRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	schoolsService, err := schools.NewService(schools.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create schools service", err)
		os.Exit(1)
	}

	provisioningService, err := provisioning.NewService(profileRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create provisioning service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	mailSender, err := contact.NewSendgridSender(cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail sender", err)
		os.Exit(1)
	}
	contactService, err := contact.NewService(mailSender, cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	feed, err := notifications.NewFeed(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification feed", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionManager: sessionManager,
			Resolver:       resolver,
			Impersonation:  overlay,
			AuthService:    authService,
			Schools:        schoolsService,
			Provisioning:   provisioningService,
			Billing:        billingService,
			Contact:        contactService,
			Notifications:  notificationsService,
			Feed:           feed,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
