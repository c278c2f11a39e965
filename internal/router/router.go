// Package router assembles the HTTP surface of the API.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "vinvest/internal/docs" // Import swagger docs
	"vinvest/internal/handlers"
	"vinvest/internal/middleware"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Holding  *handlers.HoldingHandler
	Market   *handlers.MarketHandler
	Advisor  *handlers.AdvisorHandler
	Risk     *handlers.RiskHandler
	Contact  *handlers.ContactHandler
	Snapshot *handlers.PortfolioSnapshotHandler
}

// Options controls access to user-scoped and pipeline routes.
type Options struct {
	RequireSessionToken bool
	PipelineAPIKey      string

	// HealthCheck reports whether backing stores are reachable. Nil means
	// always healthy.
	HealthCheck func(ctx context.Context) error
}

// New builds the Gin engine with middleware and all routes.
func New(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/api/health", health(opts.HealthCheck))

	// Public routes
	router.POST("/register", h.Auth.Register)
	router.POST("/login", h.Auth.Login)
	router.GET("/search", h.Market.Search)
	router.POST("/chat", h.Advisor.Chat)
	router.POST("/send-email", h.Contact.SendEmail)

	// User-scoped routes
	user := router.Group("/")
	user.Use(middleware.SessionMiddleware(opts.RequireSessionToken))

	user.POST("/username", h.Auth.GetUsername)
	user.POST("/logout", h.Auth.Logout)

	user.POST("/add_stock", h.Holding.AddStock)
	user.POST("/stocks", h.Holding.GetStocks)
	user.POST("/update-shares", h.Holding.UpdateShares)
	user.POST("/update-buyprice", h.Holding.UpdateBuyPrice)
	user.POST("/delete-stock", h.Holding.DeleteStock)

	user.POST("/news", h.Market.News)
	user.POST("/ai_advise", h.Advisor.Advise)
	user.POST("/calculate_risk", h.Advisor.CalculateRisk)

	user.POST("/risk", h.Risk.SaveRisk)
	user.POST("/risk-updated", h.Risk.RiskUpdated)
	user.POST("/porfolio-history", h.Snapshot.GetHistory)

	// Pipeline routes (API key auth)
	pipeline := router.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	pipeline.POST("/snapshots", h.Snapshot.ComputeSnapshots)

	return router
}

func health(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
