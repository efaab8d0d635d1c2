package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"docvision/internal/handler"
	"docvision/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Health   *handler.HealthHandler
	Tasks    *handler.TaskHandler
	Extract  *handler.ExtractHandler
	Jobs     *handler.JobHandler
	Validate *handler.ValidateHandler
	Results  *handler.ResultHandler
	Webhooks *handler.WebhookHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.GET("/tasks", h.Tasks.List)

	extract := v1.Group("/extract")
	extract.POST("/:task", h.Extract.Extract)
	extract.POST("/:task/pages", h.Extract.ExtractPages)

	jobs := v1.Group("/jobs")
	jobs.POST("", h.Jobs.Create)
	jobs.GET("", h.Jobs.List)
	jobs.GET("/:id", h.Jobs.Get)
	jobs.POST("/:id/process", h.Jobs.Process)
	jobs.POST("/:id/cancel", h.Jobs.Cancel)
	jobs.GET("/:id/results", h.Jobs.Results)
	jobs.GET("/:id/export", h.Jobs.Export)
	jobs.POST("/:id/publish", h.Jobs.Publish)

	validate := v1.Group("/validate")
	validate.POST("/fields", h.Validate.Fields)
	validate.POST("/totals", h.Validate.Totals)
	validate.POST("/dates", h.Validate.Dates)
	validate.POST("/consistency", h.Validate.Consistency)
	validate.POST("/references", h.Validate.References)

	results := v1.Group("/results")
	results.GET("", h.Results.List)
	results.GET("/:id", h.Results.Get)

	webhooks := v1.Group("/webhooks")
	webhooks.GET("", h.Webhooks.List)
	webhooks.POST("", h.Webhooks.Register)
	webhooks.GET("/deliveries", h.Webhooks.Deliveries)
	webhooks.POST("/test", h.Webhooks.Test)
	webhooks.DELETE("/:id", h.Webhooks.Delete)

	return r
}
