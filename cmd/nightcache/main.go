// Command nightcache serves master data and access lookups through the cache.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	cache "github.com/infodht/nightapi"
	"github.com/infodht/nightapi/eviction"
	"github.com/infodht/nightapi/internal/master"
	"github.com/infodht/nightapi/internal/server"
	"github.com/infodht/nightapi/keys"
	"github.com/infodht/nightapi/metrics"
)

func main() {
	logger, err := newLogger(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := server.Config{
		Port:       getEnv("PORT", "3000"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
	}
	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN not set; /admin/cache endpoints are open")
	}

	policy := eviction.PolicyType(getEnv("CACHE_EVICTION", string(eviction.LRU)))
	if !eviction.Valid(policy) {
		logger.Fatal("unknown CACHE_EVICTION", zap.String("policy", string(policy)))
	}

	m := metrics.NewPrometheus(prometheus.DefaultRegisterer, "nightapi")
	store := cache.New(
		cache.WithShards(getEnvInt("CACHE_SHARDS", cache.DefaultShards)),
		cache.WithDefaultTTL(time.Duration(getEnvInt("CACHE_DEFAULT_TTL", int(cache.DefaultTTL/time.Second)))*time.Second),
		cache.WithCapacity(getEnvInt("CACHE_CAPACITY", 0), policy),
		cache.WithLogger(logger.Named("cache")),
		cache.WithMetrics(m),
	)
	metrics.RegisterSize(prometheus.DefaultRegisterer, "nightapi", store.Size)

	srv := server.New(cfg, server.Deps{
		Cache:  store,
		Repo:   master.NewRepository(keys.MasterSubjects()...),
		Logger: logger.Named("http"),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("server stopped", zap.Int("cache_entries", store.Size()))
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
