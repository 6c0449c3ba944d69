package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rewear-app/rewear-backend/api/controllers"
	"github.com/rewear-app/rewear-backend/api/middleware"
	"github.com/rewear-app/rewear-backend/internal/auth"
	itemsvc "github.com/rewear-app/rewear-backend/internal/items"
	messagesvc "github.com/rewear-app/rewear-backend/internal/messages"
	requestsvc "github.com/rewear-app/rewear-backend/internal/requests"
	reviewsvc "github.com/rewear-app/rewear-backend/internal/reviews"
	"github.com/rewear-app/rewear-backend/pkg/auth/session"
	"github.com/rewear-app/rewear-backend/pkg/config"
	"github.com/rewear-app/rewear-backend/pkg/logger"
	"github.com/rewear-app/rewear-backend/pkg/metrics"
	redisclient "github.com/rewear-app/rewear-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redisclient.Client,
	sessionChecker session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	registerService auth.RegisterService,
	itemsService itemsvc.Service,
	requestsService requestsvc.Service,
	messagesService messagesvc.Service,
	reviewsService reviewsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
	})

	// Catalog browse and item detail are public.
	r.Route("/api/v1/items", func(r chi.Router) {
		r.Get("/", controllers.ListItems(itemsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Post("/", controllers.CreateItem(itemsService, logg))
			r.Get("/mine", controllers.ListMyItems(itemsService, logg))
		})

		r.Get("/{itemID}", controllers.GetItem(itemsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Patch("/{itemID}/availability", controllers.SetItemAvailability(itemsService, logg))
			r.Delete("/{itemID}", controllers.DeleteItem(itemsService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Anyone can browse a member's wardrobe.
		r.Get("/users/{userID}/items", controllers.ListUserItems(itemsService, logg))

		// Chat reads are fail-quiet: anonymous or non-participant callers
		// get an empty list, so identity is resolved but never required.
		r.With(middleware.OptionalAuth(cfg.JWT, sessionChecker, logg)).
			Get("/requests/{requestID}/messages", controllers.ListRequestMessages(messagesService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

			r.Post("/auth/logout", controllers.AuthLogout(authService, logg))

			r.Get("/users/me", controllers.Me(authService, logg))
			r.Patch("/users/me", controllers.UpdateProfile(authService, logg))
			r.Get("/users/{userID}/reviews", controllers.ListUserReviews(reviewsService, logg))
			r.Get("/users/{userID}/rating", controllers.UserRatingSummary(reviewsService, logg))

			r.Post("/requests", controllers.CreateRequest(requestsService, logg))
			r.Get("/requests/mine", controllers.ListMyRequests(requestsService, logg))
			r.Get("/requests/incoming", controllers.ListMyItemRequests(requestsService, logg))
			r.Patch("/requests/{requestID}/status", controllers.UpdateRequestStatus(requestsService, logg))
			r.Post("/requests/{requestID}/return", controllers.MarkRequestReturned(requestsService, logg))
			r.Post("/requests/{requestID}/pay", controllers.MarkRequestPaid(requestsService, logg))

			r.Post("/messages", controllers.SendMessage(messagesService, logg))
			r.Post("/reviews", controllers.CreateReview(reviewsService, logg))
		})
	})

	return r
}
