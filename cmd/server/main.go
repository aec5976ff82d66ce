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

	"github.com/vedran77/chatty/internal/auth"
	"github.com/vedran77/chatty/internal/config"
	"github.com/vedran77/chatty/internal/database"
	"github.com/vedran77/chatty/internal/logging"
	"github.com/vedran77/chatty/internal/media"
	"github.com/vedran77/chatty/internal/repository"
	"github.com/vedran77/chatty/internal/repository/memory"
	postgresrepo "github.com/vedran77/chatty/internal/repository/postgres"
	"github.com/vedran77/chatty/internal/service"
	"github.com/vedran77/chatty/internal/transport/http/handlers"
	"github.com/vedran77/chatty/internal/transport/http/middleware"
	"github.com/vedran77/chatty/internal/transport/ws"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	var log logging.Logger
	if cfg.IsDevelopment() {
		log = logging.NewText(os.Stderr, cfg.LogLevel)
	} else {
		log = logging.NewJSON(os.Stderr, cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	// Repositories
	var (
		userRepo    repository.UserRepository
		messageRepo repository.MessageRepository
	)
	switch cfg.Storage {
	case "memory":
		userRepo = memory.NewUserRepo()
		messageRepo = memory.NewMessageRepo()
		log.Warn(ctx, "using in-memory storage, data is lost on restart")
	case "postgres":
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info(ctx, "connected to database", "host", cfg.DBHost, "name", cfg.DBName)

		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		userRepo = postgresrepo.NewUserRepo(pool)
		messageRepo = postgresrepo.NewMessageRepo(pool)
	default:
		return fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	uploader, err := media.NewS3Uploader(ctx, cfg)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// Services
	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo, uploader)
	messageService := service.NewMessageService(messageRepo, userRepo, uploader)

	// Real-time
	hub := ws.NewHub(log)
	messageService.SetNotifier(ws.NewHubNotifier(hub))

	// Handlers
	rep := handlers.NewReporter(log, cfg.IsDevelopment())
	router := &handlers.Router{
		Auth:     handlers.NewAuthHandler(authService, tokens, cfg.CookieSecure, rep),
		Users:    handlers.NewUserHandler(userService, rep),
		Messages: handlers.NewMessageHandler(messageService, rep),
		Tokens:   tokens,
		WS:       ws.ServeWS(ctx, hub, tokens, cfg.ClientOrigin),
	}

	var handler http.Handler = router.Mux()
	handler = middleware.CORS(cfg.ClientOrigin)(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.Recover(log, cfg.IsDevelopment())(handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		log.Info(gctx, "starting server", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
