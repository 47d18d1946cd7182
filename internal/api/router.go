// Package api assembles the HTTP surface of the cost-basis service.
package api

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"btc-basis/internal/api/handlers"
	"btc-basis/internal/api/middleware"
	"btc-basis/internal/config"
	"btc-basis/internal/metrics"
	"btc-basis/internal/service"

	"github.com/gin-gonic/gin"
)

// NewRouter wires middleware, API routes and (when present) the static frontend.
func NewRouter(cfg *config.Config, svc *service.Service) (*gin.Engine, error) {
	method, err := cfg.Method()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())
	router.Use(metrics.Middleware())
	router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	basisHandler := handlers.NewBasisHandler(svc, method, cfg.Server.MaxUploadMB<<20)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "policy": svc.Policy().String()})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/basis", basisHandler.Compute)
		api.POST("/basis/compare", basisHandler.Compare)
		api.GET("/basis/:id/ledger", basisHandler.GetLedger)
		api.GET("/basis/:id/chart", basisHandler.GetChart)

		api.GET("/methods", basisHandler.ListMethods)
		api.GET("/metrics", handlers.ListMetrics)
		api.GET("/sample", handlers.DownloadSample)
	}

	serveStatic(router, cfg.Server.StaticDir)
	return router, nil
}

// serveStatic serves a built single-page frontend from dir, falling back to
// index.html for every non-API path.
func serveStatic(router *gin.Engine, dir string) {
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Printf("Static directory %s not found, skipping static file serving", dir)
		return
	}

	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
	log.Printf("Serving static files from %s", dir)
}
