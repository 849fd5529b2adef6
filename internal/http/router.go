package http

import (
	"log/slog"

	"github.com/geocoder89/bookmarkhub/internal/http/handlers"
	"github.com/geocoder89/bookmarkhub/internal/http/middlewares"
	"github.com/geocoder89/bookmarkhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs; all wiring happens in cmd/api.
type Deps struct {
	Log *slog.Logger
	Env string

	Accounts  AccountService
	Bookmarks handlers.BookmarksService

	Tokens middlewares.TokenVerifier
	Users  middlewares.UserLoader

	// Checks are probed by /readyz.
	Checks map[string]handlers.Pinger

	// Prom and Gatherer are optional; without a gatherer /metrics is not mounted.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	ServiceName        string
	TracingEnabled     bool
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

type AccountService interface {
	handlers.Authenticator
	handlers.ProfileEditor
}

func NewRouter(d Deps) *gin.Engine {
	// tests set their own mode
	if d.Env != "dev" && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	// middleware
	r.Use(middlewares.Recovery(d.Log))
	r.Use(middlewares.RequestID())
	if d.TracingEnabled {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))

	// health
	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authHandler := handlers.NewAuthHandler(d.Accounts)
	usersHandler := handlers.NewUsersHandler(d.Accounts)
	bookmarksHandler := handlers.NewBookmarksHandler(d.Bookmarks)

	guard := middlewares.NewGuard(d.Tokens, d.Users)
	with := middlewares.WithCaller

	authGroup := r.Group("/auth", middlewares.RequireJSON())
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// authenticate before looking at the body
	users := r.Group("/users", guard.RequireAuth(), middlewares.RequireJSON())
	users.GET("/identify", with(usersHandler.Identify))
	users.PATCH("", with(usersHandler.Edit))

	bookmarks := r.Group("/bookmarks", guard.RequireAuth(), middlewares.RequireJSON())
	bookmarks.POST("", with(bookmarksHandler.Create))
	bookmarks.GET("", with(bookmarksHandler.List))
	bookmarks.GET("/:id", with(bookmarksHandler.Get))
	bookmarks.PATCH("/:id", with(bookmarksHandler.Edit))
	bookmarks.DELETE("/:id", with(bookmarksHandler.Delete))

	return r
}
