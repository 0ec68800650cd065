package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/greenloop/greenloop-backend/internal/bootstrap"
	"github.com/greenloop/greenloop-backend/internal/server"
	"github.com/greenloop/greenloop-backend/pkg/database"
	"github.com/greenloop/greenloop-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment")
	}

	appEnv := os.Getenv("APP_ENV")
	logger.Setup(appEnv)

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed roles")
	}
	if err := bootstrap.SeedPostStatuses(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed post statuses")
	}
	if appEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin user")
		}
	}

	redisClient := connectRedis()

	srv := server.NewServer(db, redisClient)

	addr := ":" + valueOrDefault("PORT", "8080")
	log.Info().Str("addr", addr).Msg("starting server")
	if err := srv.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// connectRedis returns nil when Redis is not configured or unreachable;
// rate limiting, like-count caching and realtime notifications degrade
// gracefully without it.
func connectRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Warn().Msg("redis is not configured, realtime features disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, realtime features disabled")
		return nil
	}

	log.Info().Str("addr", addr).Msg("redis connected")
	return client
}

func valueOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
