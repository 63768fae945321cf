package main

import (
	"context"
	"fmt"
	"time"

	"nisabd/config"
	"nisabd/internal/cache"
	"nisabd/internal/metals/acquire"
	"nisabd/internal/metals/provider"
	"nisabd/internal/schedule"
	"nisabd/internal/server"
	"nisabd/logger"
	"nisabd/pkg/storage/postgres"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()
	env := cfg.Server.Environment

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	if env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis is the shared cache across instances. Without it every request
	// falls through to the providers, so a failed ping only degrades.
	store, redisStore := connectRedis(cfg.Redis, log)

	// Postgres keeps the daily archive. Optional in the same way.
	archive := connectPostgres(cfg, env, log)

	acquirer := buildAcquirer(cfg, env, log)

	var archiveIface cache.Archive
	if archive != nil {
		archiveIface = archive
	}
	manager := cache.NewManager(store, acquirer, archiveIface, log)

	refresher := &schedule.DailyRefresher{Manager: manager, Logger: log}
	refresher.Start(context.Background())

	cronSecret := cfg.Cron.ResolveSecret(env)
	r := server.New(manager, redisStore, archive, cronSecret, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("env", env))
	if err := r.Run(addr); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func connectRedis(rc config.RedisConfig, log *zap.Logger) (cache.Store, *cache.RedisStore) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", rc.Host, rc.Port),
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, using in-process cache", zap.Error(err))
		return cache.NewMemoryStore(), nil
	}

	store := cache.NewRedisStore(client)
	log.Info("redis connected", zap.String("addr", fmt.Sprintf("%s:%d", rc.Host, rc.Port)))
	return store, store
}

func connectPostgres(cfg *config.Config, env string, log *zap.Logger) *postgres.Client {
	client, err := postgres.InitializeAndMigrate(cfg.Postgres, env, env != "prod")
	if err != nil {
		log.Warn("postgres unavailable, price archive disabled", zap.Error(err))
		return nil
	}
	log.Info("postgres connected", zap.String("db", cfg.Postgres.DBName))
	return client
}

// buildAcquirer wires the provider chains in priority order. Providers with
// no resolvable key are skipped at startup rather than failing per request.
func buildAcquirer(cfg *config.Config, env string, log *zap.Logger) *acquire.Acquirer {
	timeout := cfg.Providers.Timeout

	var spot []provider.SpotProvider
	if key := cfg.Providers.MetalPriceAPI.ResolveAPIKey(env); key != "" {
		spot = append(spot, provider.NewMetalPriceAPI(cfg.Providers.MetalPriceAPI.BaseURL, key, timeout))
	} else {
		log.Warn("metalpriceapi key missing, provider disabled")
	}
	if key := cfg.Providers.GoldAPI.ResolveAPIKey(env); key != "" {
		spot = append(spot, provider.NewGoldAPI(cfg.Providers.GoldAPI.BaseURL, key, timeout))
	} else {
		log.Warn("goldapi key missing, provider disabled")
	}
	if key := cfg.Providers.IslamicAPI.ResolveAPIKey(env); key != "" {
		spot = append(spot, provider.NewIslamicAPI(cfg.Providers.IslamicAPI.BaseURL, key, timeout))
	} else {
		log.Warn("islamicapi key missing, provider disabled")
	}

	var rates []provider.RateProvider
	if key := cfg.Providers.ExchangeRateAPI.ResolveAPIKey(env); key != "" {
		rates = append(rates, provider.NewExchangeRateAPI(cfg.Providers.ExchangeRateAPI.BaseURL, key, timeout))
	} else {
		log.Warn("exchangerate-api key missing, provider disabled")
	}

	var series []provider.SeriesProvider
	if key := cfg.Providers.MetalPriceAPI.ResolveAPIKey(env); key != "" {
		series = append(series, provider.NewMetalPriceAPI(cfg.Providers.MetalPriceAPI.BaseURL, key, timeout))
	}

	return acquire.New(spot, rates, series, log)
}
