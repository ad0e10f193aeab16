package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/zaphub/zaphub/internal/api/handler"
	"github.com/zaphub/zaphub/internal/api/middleware"
)

type Options struct {
	Env             string
	Auth            middleware.AuthOption
	HealthHandler   *handler.HealthHandler
	InstanceHandler *handler.InstanceHandler
	MessageHandler  *handler.MessageHandler
	WebhookHandler  *handler.WebhookHandler
	RateLimit       middleware.RateLimitOption
}

func NewRouter(opts Options) *gin.Engine {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		MaxAge:       12 * time.Hour,
	}))

	api := router.Group("/api")

	opts.HealthHandler.Register(api)

	// Callbacks dos fornecedores chegam sem bearer: a rota é validada pelo
	// instance_id e o payload nunca é confiado sem normalização.
	opts.WebhookHandler.Register(api)

	protected := api.Group("")
	if opts.RateLimit.Enabled {
		protected.Use(middleware.RateLimit(opts.RateLimit))
	}
	protected.Use(middleware.AuthWithOptions(opts.Auth))

	opts.InstanceHandler.Register(protected)
	opts.MessageHandler.Register(protected)

	return router
}
