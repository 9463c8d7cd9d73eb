package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnector/auth"
	"devconnector/config"
	"devconnector/database"
	"devconnector/github"
	"devconnector/handlers"
	"devconnector/logger"
	"devconnector/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.Release(), cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting devconnector API", zap.String("mode", cfg.Server.Mode))

	// ===== MONGODB =====
	db, err := database.ConnectWithRetry(context.Background(), cfg.Mongo, 3, 2*time.Second, log)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.Ping(pingCtx); err != nil {
		pingCancel()
		log.Fatal("MongoDB ping failed", zap.Error(err))
	}
	pingCancel()
	log.Info("MongoDB connected", zap.String("database", cfg.Mongo.Database))

	// ===== GIN MODE =====
	if cfg.Server.Release() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// ===== ROUTER =====
	tokens := auth.NewTokens(cfg.JWT)
	h := handlers.New(
		database.NewUserStore(db),
		database.NewProfileStore(db),
		database.NewPostStore(db),
		tokens,
		github.NewClient(cfg.GitHub, log),
		log,
	)
	router := routes.SetupRouter(h, tokens, db, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Error("disconnect MongoDB", zap.Error(err))
	}

	log.Info("server stopped")
}
