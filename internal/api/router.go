package api

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/member-sync/internal/api/handlers"
	"github.com/hugh/member-sync/internal/api/middleware"
	"github.com/hugh/member-sync/internal/auth"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/internal/web"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Reconciler     *member.Reconciler
	SheetReader    member.SheetReader
	SheetWriter    member.SheetWriter // nil when spreadsheet writes are disabled
	Templates      *web.Templates
	StaticFS       fs.FS
	AllowedOrigins []string // CORS allowed origins
	SecureCookies  bool
	RateLimitReqs  int // Rate limit requests per window
	RateLimitSecs  int // Rate limit window in seconds
}

// Headers the spreadsheet function accepts from browser clients.
var functionHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     allowedOrigins,
		AllowedMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:     append([]string{"Accept", "X-CSRF-Token", "X-Auth-Token"}, functionHeaders...),
		ExposedHeaders:     []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:             300,
		OptionsPassthrough: true,
	}))

	// Sessions are checked against the revocation list on every request.
	var sessions middleware.SessionChecker
	if cfg.AuthService != nil {
		sessions = cfg.AuthService
	}

	cookies := handlers.SessionCookies{Secure: cfg.SecureCookies, MaxAge: cfg.JWTService.Expiry()}

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cookies, cfg.Logger)
	sheetsHandler := handlers.NewSheetsHandler(cfg.SheetReader, cfg.SheetWriter, cfg.Logger)
	recordHandler := handlers.NewRecordHandler(cfg.Reconciler, cfg.Logger)
	csrfStore := middleware.NewCSRFStore()
	webHandler := handlers.NewWebHandler(cfg.AuthService, cfg.Reconciler, cfg.Templates, csrfStore, cookies, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Spreadsheet function. Anonymous callers are allowed; a signed-in caller
	// is held to their own email.
	r.Group(func(r chi.Router) {
		r.Use(functionCORS)
		r.Use(middleware.OptionalAuth(cfg.JWTService, sessions))
		if cfg.RateLimitReqs > 0 {
			r.Use(middleware.RateLimitByUser(cfg.RateLimitReqs, cfg.RateLimitSecs))
		}
		r.Options("/functions/google-sheets", sheetsHandler.Preflight)
		r.Post("/functions/google-sheets", sheetsHandler.Handle)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/signin", authHandler.SignIn)
		r.Post("/auth/signout", authHandler.SignOut)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService, sessions))

			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				userID := middleware.GetUserID(r.Context())
				user, err := cfg.AuthService.GetUserByID(r.Context(), userID)
				if err != nil {
					http.Error(w, "User not found", http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, map[string]string{"id": user.ID.String(), "email": user.Email})
			})

			r.Get("/record", recordHandler.Get)
			r.Put("/record", recordHandler.Update)
		})
	})

	// Web pages
	r.Get("/login", webHandler.LoginPage)
	r.Post("/login", webHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTService, sessions))
		r.Use(middleware.CSRF(csrfStore))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
		r.Get("/dashboard", webHandler.Dashboard)
		r.Post("/dashboard", webHandler.SaveDashboard)
		r.Post("/logout", webHandler.Logout)
	})

	// Static files
	if cfg.StaticFS != nil {
		fileServer := http.FileServer(http.FS(cfg.StaticFS))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	return &Router{r}
}

// functionCORS pins the spreadsheet function's CORS headers regardless of
// the configured origin list.
func functionCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", strings.Join(functionHeaders, ", "))
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
