package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/config"
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/internal/presentation/http/handler"
	"github.com/sangkips/posprint/internal/presentation/http/middleware"
	"github.com/sangkips/posprint/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
// Bridge is nil when the agent does not expose its local bridge.
type Handlers struct {
	Auth    *handler.AuthHandler
	Print   *handler.PrintHandler
	Printer *handler.PrinterHandler
	Profile *handler.BusinessProfileHandler
	Bridge  *handler.BridgeHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *slog.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/token", h.Auth.Token)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-client rate limiter
		rateLimiter := middleware.NewClientRateLimiter(rateLimit(deps.Cfg.RateLimit))
		protected.Use(rateLimiter.Middleware())

		registerPrintRoutes(protected, h, deps)
		registerPrinterRoutes(protected, h)
		registerProfileRoutes(protected, h)
		if h.Bridge != nil {
			registerBridgeRoutes(protected, h)
		}
	}

	return router
}

func rateLimit(cfg config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	rl.CleanupInterval = 5 * time.Minute
	rl.EntryTTL = 10 * time.Minute
	return rl
}

func registerPrintRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// A retried print must not produce a second paper copy or a second bill number
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo})

	print := protected.Group("/print")
	print.Use(middleware.RequireScope(utils.ScopePrint))
	{
		print.POST("/bill", idempotent, h.Print.PrintBill)
		print.POST("/kot", idempotent, h.Print.PrintKOT)
		print.POST("/kot/from-cart", idempotent, h.Print.PrintKOTFromCart)
		print.POST("/queue", idempotent, h.Print.Enqueue)
		print.POST("/drawer", h.Print.OpenDrawer)
	}

	preview := protected.Group("/preview")
	preview.Use(middleware.RequireScope(utils.ScopePrint))
	{
		preview.POST("/bill", h.Print.PreviewBill)
		preview.POST("/kot", h.Print.PreviewKOT)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printers := protected.Group("/printers")
	printers.Use(middleware.RequireScope(utils.ScopePrint))
	{
		printers.GET("", h.Printer.ListPrinters)
		printers.GET("/discover", h.Printer.Discover)
		printers.GET("/connections", h.Printer.Connections)
		printers.POST("/disconnect-all", h.Printer.DisconnectAll)
		printers.GET("/:id/status", h.Printer.GetStatus)
		printers.POST("/:id/test", h.Printer.TestPrint)
		printers.POST("/:id/disconnect", h.Printer.Disconnect)
	}

	protected.GET("/print-jobs", middleware.RequireScope(utils.ScopePrint), h.Printer.ListJobs)
}

func registerProfileRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/business-profile", middleware.RequireScope(utils.ScopePrint), h.Profile.GetProfile)
	protected.PUT("/business-profile", middleware.RequireScope(utils.ScopeAdmin), h.Profile.UpdateProfile)
}

func registerBridgeRoutes(protected *gin.RouterGroup, h *Handlers) {
	b := protected.Group("/bridge")
	b.Use(middleware.RequireScope(utils.ScopeBridge))
	{
		b.POST("/usb", h.Bridge.USB)
		b.POST("/network", h.Bridge.Network)
		b.POST("/system", h.Bridge.System)
		b.POST("/image", h.Bridge.Image)
		b.POST("/html", h.Bridge.HTML)
		b.POST("/drawer", h.Bridge.Drawer)
		b.POST("/test", h.Bridge.Test)
		b.POST("/status", h.Bridge.Status)
		b.GET("/discover", h.Bridge.Discover)
	}
}
