package router

import (
	"github.com/formcraft/formcraft-backend/config"
	"github.com/formcraft/formcraft-backend/handlers"
	"github.com/formcraft/formcraft-backend/internal/ratelimit"
	"github.com/formcraft/formcraft-backend/middleware"
	"github.com/formcraft/formcraft-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config            *config.Config
	JWTValidator      middleware.Validator
	FormHandler       *handlers.FormHandler
	SubmissionHandler *handlers.SubmissionHandler
	TemplateHandler   *handlers.TemplateHandler
	EmbedHandler      *handlers.EmbedHandler
	UploadHandler     *handlers.UploadHandler
	CreditHandler     *handlers.CreditHandler
	AuthHandler       *handlers.AuthHandler
	HealthHandler     *handlers.HealthHandler
	// SubmitLimiter throttles public submits per client IP. Nil disables it.
	SubmitLimiter services.RateLimiterInterface
	// EmbedLimiter throttles embed page loads and uploads. Nil disables it.
	EmbedLimiter *ratelimit.Limiter
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if len(deps.Config.Server.TrustedProxies) > 0 {
		_ = r.SetTrustedProxies(deps.Config.Server.TrustedProxies)
	} else {
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.ErrorHandler())

	// Health and Metrics Routes (no auth)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public embed surface
	embedRoutes := r.Group("/embed")
	if deps.EmbedLimiter != nil {
		embedRoutes.Use(middleware.EmbedLoadRateLimiter(deps.EmbedLimiter))
	}
	{
		embedRoutes.GET("/:key", deps.EmbedHandler.LoadEmbedHandler)
		embedRoutes.POST("/:key/uploads", deps.UploadHandler.UploadHandler)
	}

	api := r.Group("/api")
	{
		submitChain := []gin.HandlerFunc{}
		if deps.SubmitLimiter != nil {
			rl := deps.Config.RateLimit
			submitChain = append(submitChain, middleware.SubmissionRateLimiter(
				deps.SubmitLimiter, rl.SubmissionsPerMinute, rl.Window()))
		}
		submitChain = append(submitChain, deps.SubmissionHandler.SubmitHandler)
		api.POST("/forms/submit", submitChain...)

		api.POST("/auth/refresh", deps.AuthHandler.RefreshTokenHandler)

		// --- Authenticated Routes ---
		authRoutes := api.Group("")
		authRoutes.Use(middleware.AuthMiddleware(deps.JWTValidator))
		{
			formRoutes := authRoutes.Group("/forms")
			{
				formRoutes.POST("/create", deps.FormHandler.CreateFormHandler)
				formRoutes.GET("", deps.FormHandler.ListFormsHandler)
				formRoutes.GET("/:id", deps.FormHandler.GetFormHandler)
				formRoutes.PUT("/:id", deps.FormHandler.UpdateFormHandler)
				formRoutes.PATCH("/:id/status", deps.FormHandler.UpdateFormStatusHandler)
				formRoutes.DELETE("/:id", deps.FormHandler.DeleteFormHandler)
				formRoutes.GET("/:id/submissions", deps.FormHandler.ListSubmissionsHandler)
				formRoutes.GET("/:id/embeddings", deps.EmbedHandler.ListGrantsHandler)
				formRoutes.POST("/:id/embeddings", deps.EmbedHandler.CreateGrantHandler)
			}

			templateRoutes := authRoutes.Group("/templates")
			{
				templateRoutes.POST("/create", deps.TemplateHandler.CreateTemplateHandler)
				templateRoutes.GET("", deps.TemplateHandler.ListTemplatesHandler)
				templateRoutes.GET("/:id", deps.TemplateHandler.GetTemplateHandler)
				templateRoutes.PUT("/:id/premium", deps.TemplateHandler.SetPremiumHandler)
				templateRoutes.POST("/:id/purchase", deps.TemplateHandler.PurchaseTemplateHandler)
				templateRoutes.POST("/:id/instantiate", deps.TemplateHandler.InstantiateTemplateHandler)
			}

			siteRoutes := authRoutes.Group("/sites")
			{
				siteRoutes.GET("", deps.EmbedHandler.ListSitesHandler)
				siteRoutes.POST("", deps.EmbedHandler.CreateSiteHandler)
				siteRoutes.POST("/:id/approve", deps.EmbedHandler.ApproveSiteHandler)
			}

			embeddingRoutes := authRoutes.Group("/embeddings")
			{
				embeddingRoutes.DELETE("/:key", deps.EmbedHandler.RevokeGrantHandler)
				embeddingRoutes.GET("/:key/code", deps.EmbedHandler.EmbedCodeHandler)
			}

			creditRoutes := authRoutes.Group("/credits")
			{
				creditRoutes.GET("", deps.CreditHandler.GetCreditsHandler)
				creditRoutes.POST("", deps.CreditHandler.AddCreditsHandler)
			}

			authRoutes.GET("/schema/form-definition", handlers.FormDefinitionSchemaHandler)
		}
	}

	return r
}
