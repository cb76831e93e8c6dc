package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AbdullaK123/notes-api/internal/api"
	"github.com/AbdullaK123/notes-api/internal/config"
	"github.com/AbdullaK123/notes-api/internal/database"
	"github.com/AbdullaK123/notes-api/internal/logger"
	"github.com/AbdullaK123/notes-api/internal/monitoring"
	"github.com/AbdullaK123/notes-api/internal/password"
	"github.com/AbdullaK123/notes-api/internal/services"
	"github.com/AbdullaK123/notes-api/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the Redis-backed session store
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	sessions := session.NewStore(rdb, cfg.SessionTTL)

	// Set up services
	hasher := password.NewHasher(password.DefaultParams())
	userService := services.NewUserService(db, hasher)
	noteService := services.NewNoteService(db)

	// Set up and run the background FTS maintenance job
	optimizer, err := monitoring.NewFTSOptimizer(db, cfg.FTSOptimizeSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize FTS optimizer")
	}
	go optimizer.Run()

	// Set up router
	router := api.NewRouter(cfg, sessions, userService, noteService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	optimizer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
