package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"travelmatch/internal/handler"
	"travelmatch/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	HostHandler  *handler.HostHandler
	TripHandler  *handler.TripHandler
	MatchHandler *handler.MatchHandler
	AdminHandler *handler.AdminHandler
	WSHandler    *handler.WSHandler
	JWTSecret    []byte
	RedisClient  *redis.Client
	NewRelicApp  *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Public routes.
		hosts := v1.Group("/hosts")
		{
			hosts.POST("/register", deps.HostHandler.Register)
			hosts.POST("/login", deps.HostHandler.Login)
		}
		v1.GET("/trips/search", deps.TripHandler.Search)

		// Authenticated routes. Idempotency runs after auth so replay keys
		// are scoped per host.
		authed := v1.Group("")
		authed.Use(middleware.AuthRequired(deps.JWTSecret))
		authed.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
		{
			authed.POST("/trips", deps.TripHandler.Create)
			authed.GET("/trips/mine", deps.TripHandler.MyTrips)

			matches := authed.Group("/matches")
			{
				matches.GET("/received", deps.TripHandler.Received)
				matches.POST("/request", deps.MatchHandler.Request)
				matches.POST("/accept", deps.MatchHandler.Accept)
				matches.POST("/reject", deps.MatchHandler.Reject)
				matches.POST("/cancel", deps.MatchHandler.Cancel)
			}

			authed.GET("/ws", deps.WSHandler.Connect)
		}

		// Admin routes.
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(deps.JWTSecret))
		admin.Use(middleware.AdminRequired())
		{
			admin.POST("/trips/:id/cancel", deps.AdminHandler.CancelTrip)
			admin.POST("/hosts/:id/approve", deps.AdminHandler.ApproveHost)
			admin.POST("/hosts/:id/block", deps.AdminHandler.BlockHost)
		}
	}

	return router
}
