package server

import (
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	ScrapeHandler  *ScrapeHandler
	ListingHandler *ListingHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.GET("/healthcheck", HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/scrape", cfg.ScrapeHandler.Scrape)
		api.POST("/scrape-batch", cfg.ScrapeHandler.ScrapeBatch)
		api.GET("/batches/:id", cfg.ScrapeHandler.GetBatch)

		api.GET("/listings", cfg.ListingHandler.List)
		api.GET("/listings/export", cfg.ListingHandler.Export)
		api.GET("/listings/:id", cfg.ListingHandler.Get)
		api.PATCH("/listings/:id", cfg.ListingHandler.Patch)
		api.DELETE("/listings/:id", cfg.ListingHandler.Delete)
	}

	return router
}
