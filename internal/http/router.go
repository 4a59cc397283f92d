// Package httpapi wires the HTTP transport (Gin) to the order services,
// middleware and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, redacted logging, panic recovery, metrics,
// rate limiting, CORS and security headers, then mounts the dashboard API,
// the realtime websocket and the operational endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/config"
	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/http/handlers"
	"github.com/tbourn/pedidos-backend/internal/http/middleware"
	"github.com/tbourn/pedidos-backend/internal/repo"
	"github.com/tbourn/pedidos-backend/internal/services"
)

// Deps are the collaborators the router mounts. DB and every service are
// required; WS and Limiter are optional.
type Deps struct {
	DB     *gorm.DB
	Auth   *services.AuthService
	Users  *services.UserService
	Orders *services.OrderService
	Stats  *services.StatsService
	Extras *services.ExtrasService

	// WS serves /ws/pedidos; nil leaves the route unmounted.
	WS http.Handler

	// Limiter defaults to an in-process token bucket per user/IP.
	Limiter middleware.Limiter
}

// idemStore adapts the idempotency repository functions to the lookup the
// middleware runs and the recorder the create handler calls.
type idemStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// Lookup proxies repo.GetIdempotency; a missing or expired record is a miss.
func (s idemStore) Lookup(ctx context.Context, userID, scope, key string, now time.Time) (string, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, userID, scope, key, now)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return rec.ResourceID, true, nil
}

// Record proxies repo.CreateIdempotency.
func (s idemStore) Record(ctx context.Context, userID, scope, key, resourceID string, status int) error {
	_, err := repo.CreateIdempotency(ctx, s.db, userID, scope, key, resourceID, status, s.ttl)
	return err
}

// RegisterRoutes attaches all middleware and endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limit and gzip
//  6. Metrics
//  7. Rate limiter (per IP; runs before authentication)
//  8. CORS and security headers
//
// Authentication, role checks and idempotency are attached per group.
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws", "/metrics"})))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewMemoryLimiter(cfg.RateRPS, cfg.RateBurst)
	}
	r.Use(middleware.RateLimit(limiter, middleware.KeyByUserOrIP()))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", health(d.DB))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if d.WS != nil {
		r.GET("/ws/pedidos", gin.WrapH(d.WS))
	}

	idem := idemStore{db: d.DB, ttl: cfg.IdempotencyTTL}
	h := handlers.New(handlers.Deps{
		Auth:   d.Auth,
		Users:  d.Users,
		Orders: d.Orders,
		Stats:  d.Stats,
		Extras: d.Extras,
		Idem:   idem,
	})

	authn := middleware.Authenticate(d.Auth)
	staffOnly := middleware.RequireRole(domain.RoleAdmin, domain.RoleStaff)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	api := groupWithPrefix(r, cfg.APIBasePath)

	// Auth
	a := api.Group("/auth")
	{
		a.POST("/register", h.Register)
		a.POST("/login", h.Login)
		a.POST("/token", h.Token)
		a.POST("/refresh", h.Refresh)
		a.POST("/logout", h.Logout)
		a.POST("/logout-all", authn, h.LogoutAll)
	}

	// Users
	u := api.Group("/users", authn)
	{
		u.GET("/me", h.Me)
		u.PUT("/me", h.UpdateMe)
		u.POST("/me/change-password", h.ChangePassword)

		u.GET("", adminOnly, h.ListUsers)
		u.GET("/:id", adminOnly, h.GetUser)
		u.PUT("/:id", adminOnly, h.UpdateUser)
		u.PATCH("/:id", adminOnly, h.UpdateUser)
		u.DELETE("/:id", adminOnly, h.DeleteUser)
	}

	// Orders
	o := api.Group("/telegram", authn, staffOnly)
	{
		o.GET("/pedidos", h.ListOrders)
		o.POST("/pedidos", middleware.Idempotency(middleware.IdempotencyOptions{MaxLen: 200}, idem.Lookup), h.CreateOrder)
		o.GET("/pedidos/:id", h.GetOrder)
		o.PUT("/pedidos/:id", h.UpdateOrder)
		o.DELETE("/pedidos/:id", adminOnly, h.DeleteOrder)
		o.POST("/pedidos/:id/cambiar-estado", h.ChangeState)
		o.GET("/estadisticas", h.Stats)
	}

	// Extended
	x := api.Group("/pedidos-extended", authn, staffOnly)
	{
		x.POST("/buscar", h.Search)

		x.POST("/pedidos/:id/imagenes", h.AddImage)
		x.GET("/pedidos/:id/imagenes", h.ListImages)
		x.DELETE("/imagenes/:image_id", h.DeleteImage)

		x.POST("/pedidos/:id/comentarios", h.AddComment)
		x.GET("/pedidos/:id/comentarios", h.ListComments)
		x.GET("/pedidos/:id/historial", h.History)

		x.POST("/filtros", h.CreateFilter)
		x.GET("/filtros", h.ListFilters)
		x.PUT("/filtros/:filter_id", h.UpdateFilter)
		x.DELETE("/filtros/:filter_id", h.DeleteFilter)

		x.GET("/estadisticas-avanzadas", h.AdvancedStats)
		x.GET("/export/csv", h.ExportCSV)
	}
}

// corsMiddleware allows every origin when none is configured; otherwise it
// echoes allow-listed origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	headers := []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderIdempotencyKey}
	expose := []string{"X-Request-ID", "Content-Length", "Content-Disposition", "ETag", "Retry-After", "Idempotency-Replayed"}

	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// ACAO: * even without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     headers,
				ExposeHeaders:    expose,
				AllowCredentials: false,
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     methods,
			AllowHeaders:     headers,
			ExposeHeaders:    expose,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// health reports liveness plus database reachability.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("health: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "disconnected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
	}
}

// limitBody caps the request body size; oversized bodies fail on read.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
