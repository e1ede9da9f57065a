package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcosvillarreal/reelstack-backend/api/controllers"
	"github.com/marcosvillarreal/reelstack-backend/api/middleware"
	"github.com/marcosvillarreal/reelstack-backend/internal/assets"
	"github.com/marcosvillarreal/reelstack-backend/internal/auth"
	"github.com/marcosvillarreal/reelstack-backend/internal/batch"
	"github.com/marcosvillarreal/reelstack-backend/internal/reels"
	"github.com/marcosvillarreal/reelstack-backend/internal/themes"
	"github.com/marcosvillarreal/reelstack-backend/internal/users"
	"github.com/marcosvillarreal/reelstack-backend/pkg/auth/session"
	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	"github.com/marcosvillarreal/reelstack-backend/pkg/db"
	"github.com/marcosvillarreal/reelstack-backend/pkg/logger"
	"github.com/marcosvillarreal/reelstack-backend/pkg/redis"
	"github.com/marcosvillarreal/reelstack-backend/pkg/storage/gcs"
)

// NewRouter wires every HTTP surface: health probes, the metrics scrape
// endpoint, the public auth routes and the token-protected API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	usersRepo *users.Repository,
	assetService *assets.Service,
	reelService *reels.Service,
	themeService *themes.Service,
	dispatcher *batch.Dispatcher,
	registry *batch.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Get("/users/me", controllers.UsersMe(usersRepo, logg))
		r.Patch("/users/me", controllers.UsersUpdateMe(usersRepo, logg))

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", controllers.AssetList(assetService, logg))
			r.Post("/", controllers.AssetCreate(assetService, logg))
			r.Get("/{assetId}", controllers.AssetGet(assetService, logg))
			r.Patch("/{assetId}", controllers.AssetUpdate(assetService, logg))
			r.Delete("/{assetId}", controllers.AssetDelete(assetService, logg))
			r.Get("/{assetId}/versions", controllers.AssetVersions(assetService, logg))
			r.Post("/{assetId}/thumbnail", controllers.AssetThumbnail(assetService, logg))
		})

		r.Route("/reels", func(r chi.Router) {
			r.Get("/", controllers.ReelList(reelService, logg))
			r.Post("/", controllers.ReelCreate(reelService, logg))
			r.Get("/{reelId}", controllers.ReelGet(reelService, logg))
			r.Patch("/{reelId}", controllers.ReelUpdate(reelService, logg))
			r.Delete("/{reelId}", controllers.ReelDelete(reelService, logg))
		})

		r.Route("/themes", func(r chi.Router) {
			r.Get("/", controllers.ThemeList(themeService, logg))
			r.Post("/", controllers.ThemeCreate(themeService, logg))
			r.Get("/{themeId}", controllers.ThemeGet(themeService, logg))
			r.Patch("/{themeId}", controllers.ThemeUpdate(themeService, logg))
			r.Delete("/{themeId}", controllers.ThemeDelete(themeService, logg))
		})

		r.Route("/batch", func(r chi.Router) {
			r.Post("/process", controllers.BatchProcess(dispatcher, logg))
			r.Get("/status/{jobId}", controllers.BatchStatus(registry, logg))
			r.Get("/jobs", controllers.BatchJobs(registry, logg))
		})
	})

	return r
}
