package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/angelromerodev/chat-project-sci/cmd/api/router/v1"
	authadapter "github.com/angelromerodev/chat-project-sci/internal/infrastructure/auth/adapter"
	cacheadapter "github.com/angelromerodev/chat-project-sci/internal/infrastructure/cache/adapter"
	cacheport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/cache/port"
	"github.com/angelromerodev/chat-project-sci/internal/infrastructure/database"
	queueadapter "github.com/angelromerodev/chat-project-sci/internal/infrastructure/queue/adapter"
	"github.com/angelromerodev/chat-project-sci/internal/infrastructure/realtime"
	"github.com/angelromerodev/chat-project-sci/internal/logging"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/task"
	storeadapter "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/adapter"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/presentation/controller"
)

func main() {
	logger := logging.NewJSONLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.Warn(ctx, ".env file not found or could not be loaded", "err", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.NewPoolFromEnv(connectCtx)
	cancel()
	if err != nil {
		logger.Error(ctx, "failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Error(ctx, "failed to run migrations", "err", err)
		os.Exit(1)
	}

	verifier, err := authadapter.NewJWTVerifierFromEnv()
	if err != nil {
		logger.Error(ctx, "failed to configure auth", "err", err)
		os.Exit(1)
	}

	// The presence mirror is optional; the service degrades to
	// store-backed snapshots when redis is unavailable.
	var cache cacheport.Cache
	if rc, err := cacheadapter.NewRedisAdapter(); err != nil {
		logger.Warn(ctx, "presence cache disabled", "err", err)
	} else {
		cache = rc
		defer rc.Close()
	}

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Error(ctx, "failed to create queue client", "err", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	queueServer, err := queueadapter.NewAsynqServer()
	if err != nil {
		logger.Error(ctx, "failed to create queue server", "err", err)
		os.Exit(1)
	}

	store := storeadapter.NewPgMessageStore(pool)
	registry := realtime.NewRegistry()
	defer registry.Close()

	dispatcher := controller.NewDeliveryDispatcher(store, registry, logger)
	broadcaster := controller.NewPresenceBroadcaster(store, registry, cache, logger)

	task.RegisterDeliverMessageTask(queueServer, dispatcher, logger)
	go func() {
		if err := queueServer.Run(ctx); err != nil {
			logger.Error(ctx, "queue server stopped", "err", err)
		}
	}()

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, store, registry, verifier, dispatcher, broadcaster, queueClient, logger)

	addr := ":" + port()
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		logger.Info(ctx, "http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http shutdown", "err", err)
	}
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}
