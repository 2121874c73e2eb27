package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockpeek/edge-gateway/internal/api"
	"github.com/stockpeek/edge-gateway/internal/controller"
	"github.com/stockpeek/edge-gateway/internal/service"
	"github.com/stockpeek/edge-gateway/internal/storage"
	"github.com/stockpeek/edge-gateway/internal/storage/memory"
	redisstorage "github.com/stockpeek/edge-gateway/internal/storage/redis"
	"github.com/stockpeek/edge-gateway/internal/util"
)

func main() {
	logger := util.NewZapLogger()

	tasks := &util.TaskGroup{}
	cleanupFuncs := []func(){}

	var cache storage.CacheRepository
	redisConfig := util.NewRedisConfig()
	if redisConfig.Addr != "" {
		redisClient, redisCleanup, err := util.NewRedisClient(logger, redisConfig)
		if err != nil {
			logger.Fatal(zap.Error(err))
		}
		cleanupFuncs = append(cleanupFuncs, redisCleanup)
		cache = redisstorage.NewCacheStorage(redisClient)
	} else {
		logger.Info("REDIS_ADDR not set, using in-memory edge cache")
		cache = memory.NewCacheRepository()
	}

	authConfig := util.NewAuthConfig()
	limiter := service.NewLoginRateLimiter(memory.NewAttemptRepository(), authConfig.MaxAttempts, authConfig.AttemptWindow)
	tokenService := service.NewTokenService(util.NewTokenConfig())
	authService := service.NewAuthService(authConfig, tokenService, limiter, logger)

	policy := service.NewCachePolicy(util.NewCachePolicyConfig())
	marketRouter := service.NewRouter(util.NewProvidersConfig(), policy, cache, tasks, logger)

	ctrl := controller.NewController(logger, authService, marketRouter)

	apiServer := api.NewAPI(ctrl, util.NewServerConfig(), tasks, logger, cleanupFuncs)
	apiServer.Run(context.Background())
}
