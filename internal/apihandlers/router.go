package apihandlers

import "github.com/gin-gonic/gin"

// NewRouter builds the gin engine with every API route.
func NewRouter(h *APIHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", h.HealthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", h.ListCategoriesHandler)
		v1.GET("/venues", h.LookupVenuesHandler)
		v1.POST("/recommendations", h.RecommendHandler)

		usageGroup := v1.Group("/usage")
		{
			usageGroup.GET("", h.ListUsageHandler)
			usageGroup.GET("/summary", h.UsageSummaryHandler)
		}
	}
	return router
}
