package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MarceloMarchiori/m3class-backend/api/controllers"
	"github.com/MarceloMarchiori/m3class-backend/api/middleware"
	"github.com/MarceloMarchiori/m3class-backend/internal/auth"
	"github.com/MarceloMarchiori/m3class-backend/internal/billing"
	"github.com/MarceloMarchiori/m3class-backend/internal/contact"
	"github.com/MarceloMarchiori/m3class-backend/internal/impersonation"
	"github.com/MarceloMarchiori/m3class-backend/internal/notifications"
	"github.com/MarceloMarchiori/m3class-backend/internal/provisioning"
	"github.com/MarceloMarchiori/m3class-backend/internal/schools"
	"github.com/MarceloMarchiori/m3class-backend/pkg/auth/session"
	"github.com/MarceloMarchiori/m3class-backend/pkg/config"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
	"github.com/MarceloMarchiori/m3class-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams carries every dependency the HTTP surface needs. Optional
// services may be nil; their endpoints then answer with an internal error
// instead of panicking.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllersPinger
	Redis          *redis.Client
	SessionManager sessionManager
	Resolver       middleware.ProfileResolver
	Impersonation  *impersonation.Service
	AuthService    auth.Service
	Schools        schools.Service
	Provisioning   provisioning.Service
	Billing        billing.Service
	Contact        contact.Service
	Notifications  notifications.Service
	Feed           *notifications.Feed
}

type controllersPinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// A typed nil *redis.Client must become a nil interface so the
	// middlewares' disabled paths actually engage.
	var idempotencyStore redis.IdempotencyStore
	var rateLimitStore middleware.RateLimiterStore
	var redisPinger controllersPinger
	if p.Redis != nil {
		idempotencyStore = p.Redis
		rateLimitStore = p.Redis
		redisPinger = p.Redis
	}
	var overlay middleware.IdentityOverlay
	var overlayStopper controllers.OverlayStopper
	if p.Impersonation != nil {
		overlay = p.Impersonation
		overlayStopper = p.Impersonation
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisPinger))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateLimitStore, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.SessionManager, overlayStopper, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
	})

	// Contact is public but still idempotent: retried submissions must not
	// fan out duplicate mails.
	r.With(middleware.Idempotency(idempotencyStore, logg)).
		Post("/api/v1/contact", controllers.ContactSend(p.Contact, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, p.Resolver, overlay, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/me", controllers.Me(p.Resolver, logg))
		r.Get("/dashboard", controllers.Dashboard(logg))

		r.Route("/impersonation", func(r chi.Router) {
			r.With(middleware.RequireUserTypes(logg, enums.UserTypeMaster)).
				Post("/", controllers.ImpersonationStart(p.Impersonation, p.Resolver, logg))
			// Stop must stay reachable while the overlay is active, when the
			// effective identity is the target rather than the master.
			r.Delete("/", controllers.ImpersonationStop(p.Impersonation, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(p.Notifications, logg))
			r.Get("/stream", controllers.StreamNotifications(p.Notifications, p.Feed, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})

		r.Route("/schools", func(r chi.Router) {
			r.Get("/", controllers.ListSchools(p.Schools, logg))
			r.With(middleware.RequireUserTypes(logg, enums.UserTypeMaster)).
				Post("/", controllers.CreateSchool(p.Schools, logg))

			r.Route("/{schoolID}", func(r chi.Router) {
				r.Use(middleware.SchoolScope(logg))
				r.Get("/", controllers.GetSchool(p.Schools, logg))
				r.With(middleware.RequireUserTypes(logg, enums.UserTypeMaster, enums.UserTypeSchoolAdmin)).
					Patch("/", controllers.UpdateSchool(p.Schools, logg))
				// Billing reads are diretor-level configuration; admins and
				// master bypass the secretaria ranking.
				r.With(middleware.RequireHierarchy(logg, enums.SecretariaRoleDiretor, enums.UserTypeMaster, enums.UserTypeSchoolAdmin)).
					Get("/billing", controllers.SchoolBilling(p.Billing, logg))
			})
		})

		r.With(middleware.RequireCanCreateUsers(logg)).
			Post("/users", controllers.CreateUser(p.Provisioning, logg))

		r.Route("/billing", func(r chi.Router) {
			r.Use(middleware.RequireUserTypes(logg, enums.UserTypeMaster))
			r.Post("/subscriptions", controllers.CreateSubscription(p.Billing, logg))
		})

		r.With(middleware.RequireHierarchy(logg, enums.SecretariaRoleDiretor, enums.UserTypeMaster, enums.UserTypeSchoolAdmin)).
			Post("/payments/{paymentID}/paid", controllers.MarkPaymentPaid(p.Billing, logg))
	})

	return r
}
