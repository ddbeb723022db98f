package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"vinventory/internal/config"
	"vinventory/internal/decoder"
	"vinventory/internal/handlers"
	"vinventory/internal/inventory"
	"vinventory/internal/middleware"
)

func main() {
	cfg := config.Load()

	store, err := inventory.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open inventory store: %v", err)
	}
	defer store.Close()

	r := gin.Default()

	r.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
		"172.16.0.0/12",  // Docker networks
		"10.0.0.0/8",     // Private networks
		"192.168.0.0/16", // Private networks
	})

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsConfig))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rate.Limit(10), 20)))

	handler := handlers.NewInventoryHandler(store, decoder.NewClient(cfg.NHTSABaseURL))
	refresh := handlers.NewRefreshHandler(cfg, store)

	api := r.Group("/api")
	{
		api.GET("/inventory", handler.ListInventory)
		api.GET("/inventory/:vin", handler.GetVehicle)
		api.GET("/stats", handler.GetStats)
		api.GET("/decode/:vin", handler.DecodeVehicle)
		api.GET("/health", handler.HealthCheck)
		api.POST("/refresh", middleware.RefreshProtectionMiddleware(30*time.Minute), refresh.TriggerRefresh)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
