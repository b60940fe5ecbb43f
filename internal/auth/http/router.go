package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lumamart/auth/internal/auth/service"
	"github.com/lumamart/auth/internal/auth/store"
	"github.com/lumamart/auth/pkg/httpx"
	"github.com/lumamart/auth/pkg/slogx"

	_ "github.com/lumamart/auth/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService       *service.AuthenticationService
	ValidationService *service.ValidationService
	RefreshService    *service.RefreshService
	RevocationService *service.RevocationService
	SessionService    *service.SessionService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
//
//	@title			Lumamart Authentication Service API
//	@version		0.1.0
//	@description	Multi-device authentication for the Lumamart storefront. Issues opaque,
//	@description	device-scoped bearer tokens with per-device-type lifetimes, session caps,
//	@description	and instant revocation. Tokens are stored hashed and validated on every
//	@description	request.
//
//	@contact.name				Lumamart Platform Team
//	@contact.url				https://github.com/lumamart/auth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque bearer token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSessions()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

func (r *Router) registerAuth() {
	bearer := httpx.BearerAuth(identityVerifier{svc: r.ValidationService})

	// POST /v1/auth/login - strict limit, this is the brute-force surface.
	// The per-IP HTTP throttle sits in front of the credential attempt
	// limiter inside the service.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/auth/refresh - validates its own bearer.
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{RefreshService: r.RefreshService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /v1/auth/logout
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(&LogoutHandler{RevocationService: r.RevocationService},
			bearer,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /v1/me - profile surface, gated on user:read.
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(MeHandler(),
			bearer,
			httpx.RequireScope("user:read"),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSessions() {
	bearer := httpx.BearerAuth(identityVerifier{svc: r.ValidationService})

	tokensHandler := &TokensHandler{
		SessionService:    r.SessionService,
		RevocationService: r.RevocationService,
	}

	// GET /v1/auth/tokens
	r.Mux.Handle("GET /v1/auth/tokens",
		httpx.Chain(http.HandlerFunc(tokensHandler.HandleList),
			bearer,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// DELETE /v1/auth/tokens/{id}
	r.Mux.Handle("DELETE /v1/auth/tokens/{id}",
		httpx.Chain(http.HandlerFunc(tokensHandler.HandleRevoke),
			bearer,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
