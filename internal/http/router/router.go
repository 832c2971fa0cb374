package router

import (
	"github.com/gin-gonic/gin"

	"github.com/freelynk/freelynk-backend/internal/config"
	"github.com/freelynk/freelynk-backend/internal/http/handlers"
	"github.com/freelynk/freelynk-backend/internal/http/middleware"
	"github.com/freelynk/freelynk-backend/internal/models"
	"github.com/freelynk/freelynk-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	projectHandler *handlers.ProjectHandler,
	bidHandler *handlers.BidHandler,
	userHandler *handlers.UserHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/projects", projectHandler.List)
	api.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Get)
	api.GET("/freelancers/search", userHandler.SearchFreelancers)
	api.GET("/freelancers/:id", middleware.UUIDValidator("id"), userHandler.GetFreelancer)
	api.GET("/users/:id/avatar", middleware.UUIDValidator("id"), userHandler.GetAvatar)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", userHandler.GetProfile)
		protected.PUT("/profile", userHandler.UpdateProfile)
		protected.POST("/profile/avatar", userHandler.UploadAvatar)

		protected.GET("/stats/freelancer", middleware.RequireRole(models.RoleFreelancer), userHandler.FreelancerStats)
		protected.GET("/stats/client", middleware.RequireRole(models.RoleClient), userHandler.ClientStats)

		protected.POST("/projects", middleware.RequireRole(models.RoleClient), projectHandler.Create)
		protected.GET("/projects/my", projectHandler.ListMy)
		protected.PUT("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Update)
		protected.DELETE("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Delete)
		protected.GET("/projects/:id/bids", middleware.UUIDValidator("id"), projectHandler.ListBids)

		protected.POST("/bids", middleware.RequireRole(models.RoleFreelancer), bidHandler.Create)
		protected.GET("/bids/my", bidHandler.ListMy)
		protected.GET("/bids/stats", middleware.RequireRole(models.RoleFreelancer), bidHandler.Stats)
		protected.PUT("/bids/:id", middleware.UUIDValidator("id"), bidHandler.Update)
		protected.DELETE("/bids/:id", middleware.UUIDValidator("id"), bidHandler.Delete)
		protected.PUT("/bids/:id/accept", middleware.UUIDValidator("id"), bidHandler.Accept)
		protected.PUT("/bids/:id/reject", middleware.UUIDValidator("id"), bidHandler.Reject)
	}

	return r
}
