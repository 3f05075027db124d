package router

import (
	"go-property-api/common"
	"go-property-api/handler"
	"go-property-api/service"
	"net/http"
	"strings"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "go-property-api/docs"
)

// Deps are the handlers and services the routes are built from.
// Media, Limiter, Metrics and DB are optional.
type Deps struct {
	Auth        *handler.AuthHandler
	Properties  *handler.PropertyHandler
	Media       *handler.MediaHandler
	AuthService *service.AuthService
	Limiter     *service.RateLimiter
	Metrics     *handler.Metrics
	DB          handler.Pinger
	CORSOrigin  string

	// proxies whose X-Forwarded-For hop the rate limiter trusts
	TrustedProxies int
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	protected := handler.AuthMiddleware(d.AuthService)
	wrap := func(fn func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return handler.ErrorHandlingMiddleware(fn)
	}
	auth := func(fn func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return protected(handler.ErrorHandlingMiddleware(fn))
	}

	mux.Handle("GET /health", handler.HealthCheck(d.DB))
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	// Auth routes
	mux.Handle("POST /api/auth/register", wrap(d.Auth.Register))
	mux.Handle("POST /api/auth/login", wrap(d.Auth.Login))
	mux.Handle("GET /api/auth/refresh-session", wrap(d.Auth.RefreshSession))
	mux.Handle("POST /api/auth/logout", auth(d.Auth.Logout))
	mux.Handle("POST /api/auth/change-password", auth(d.Auth.ChangePassword))
	mux.Handle("POST /api/auth/update-user", auth(d.Auth.UpdateUser))
	mux.Handle("GET /api/auth/me", auth(d.Auth.Me))
	mux.Handle("POST /api/auth/user/{id}", auth(d.Auth.GetUserByID))

	// Property routes
	mux.Handle("GET /api/properties/all-properties", wrap(d.Properties.AllProperties))
	mux.Handle("POST /api/properties/{$}", auth(d.Properties.Create))
	mux.Handle("POST /api/properties/view/{id}", auth(d.Properties.View))
	mux.Handle("PATCH /api/properties/edit/{id}", auth(d.Properties.Edit))
	mux.Handle("DELETE /api/properties/edit/{id}/images", auth(d.Properties.DeleteImage))
	mux.Handle("DELETE /api/properties/{id}", auth(d.Properties.Delete))
	mux.Handle("POST /api/properties/my-properties", auth(d.Properties.MyProperties))

	if d.Media != nil {
		mux.Handle("GET /api/media/{id}", wrap(d.Media.Serve))
	}

	var h http.Handler = mux
	if d.Metrics != nil {
		h = d.Metrics.Middleware(h)
	}
	h = handler.RateLimitMiddleware(d.Limiter, d.TrustedProxies)(h)
	h = handler.RequestLogger(h)
	return corsHandler(d.CORSOrigin).Handler(h)
}

func corsHandler(origin string) *cors.Cors {
	var origins []string
	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	})
}
