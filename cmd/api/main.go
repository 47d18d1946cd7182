package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"btc-basis/internal/api"
	"btc-basis/internal/cache"
	"btc-basis/internal/config"
	"btc-basis/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", os.Getenv("BTCBASIS_CONFIG"), "Path to YAML config (optional; env BTCBASIS_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		log.Fatalf("Invalid policy: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	results, closeCache := openCache(cfg.Cache)
	defer closeCache()

	svc := service.New(policy, results)
	router, err := api.NewRouter(cfg, svc)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Starting API server on %s (default method %s, policy %s)", addr, cfg.Basis.Method, policy)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openCache picks Redis when a URL is configured and falls back to the
// in-process cache if Redis is unreachable.
func openCache(cc config.CacheConfig) (cache.Cache, func()) {
	if !cc.Enabled {
		log.Printf("Result cache disabled")
		return nil, func() {}
	}
	if cc.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r, err := cache.DialRedis(ctx, cc.RedisURL, cc.TTL)
		if err == nil {
			log.Printf("Using Redis result cache (ttl %s)", cc.TTL)
			return r, func() { _ = r.Close() }
		}
		log.Printf("Redis unavailable (%v); using in-memory result cache", err)
	}
	m := cache.NewMemory(cc.TTL)
	log.Printf("Using in-memory result cache (ttl %s)", cc.TTL)
	return m, m.Close
}
