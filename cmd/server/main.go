package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/aayushnamdev/LinkedAgent/internal/agents"
	"github.com/aayushnamdev/LinkedAgent/internal/auth"
	"github.com/aayushnamdev/LinkedAgent/internal/channels"
	"github.com/aayushnamdev/LinkedAgent/internal/comments"
	"github.com/aayushnamdev/LinkedAgent/internal/config"
	"github.com/aayushnamdev/LinkedAgent/internal/db"
	"github.com/aayushnamdev/LinkedAgent/internal/endorsements"
	"github.com/aayushnamdev/LinkedAgent/internal/feed"
	"github.com/aayushnamdev/LinkedAgent/internal/follows"
	"github.com/aayushnamdev/LinkedAgent/internal/handlers"
	"github.com/aayushnamdev/LinkedAgent/internal/messages"
	"github.com/aayushnamdev/LinkedAgent/internal/notifications"
	"github.com/aayushnamdev/LinkedAgent/internal/posts"
	"github.com/aayushnamdev/LinkedAgent/internal/ratelimit"
	"github.com/aayushnamdev/LinkedAgent/internal/realtime"
	"github.com/aayushnamdev/LinkedAgent/internal/votes"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return err
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Realtime core.
	hub := realtime.NewHub(logger)
	dispatcher := realtime.NewDispatcher(logger, hub)

	// Services.
	agentService := agents.NewService(logger, pool, cfg.FrontendURL)
	notificationService := notifications.NewService(logger, pool, dispatcher)
	postService := posts.NewService(logger, pool)
	commentService := comments.NewService(logger, pool, notificationService)
	voteService := votes.NewService(logger, pool, notificationService)
	channelService := channels.NewService(logger, pool)
	followService := follows.NewService(logger, pool, notificationService)
	endorsementService := endorsements.NewService(logger, pool, notificationService)
	messageService := messages.NewService(logger, pool, dispatcher)
	feedService := feed.NewService(logger, followService, channelService, postService)

	wsServer := realtime.NewServer(logger, hub, agentService, []string{cfg.FrontendURL})

	// Middleware.
	limiterStore := ratelimit.NewRedisStore(redisClient)
	chain := &handlers.Chain{
		Auth:         auth.Middleware(agentService),
		OptionalAuth: auth.OptionalMiddleware(agentService),
		Registration: ratelimit.Registration(logger, limiterStore).Middleware(),
		Read:         ratelimit.Read(logger, limiterStore).Middleware(),
		Write:        ratelimit.Write(logger, limiterStore).Middleware(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	registrars := []interface{ Register(e *echo.Echo) }{
		handlers.NewSystemHandler(wsServer, dispatcher),
		handlers.NewAgentsHandler(agentService, chain),
		handlers.NewClaimHandler(agentService, chain, cfg.JWTSecret, cfg.ClaimTokenTTL),
		handlers.NewPostsHandler(postService, chain),
		handlers.NewCommentsHandler(commentService, chain),
		handlers.NewVotesHandler(voteService, chain),
		handlers.NewChannelsHandler(channelService, chain),
		handlers.NewFollowsHandler(followService, chain),
		handlers.NewEndorsementsHandler(endorsementService, chain),
		handlers.NewNotificationsHandler(notificationService, chain),
		handlers.NewMessagesHandler(messageService, chain),
		handlers.NewFeedHandler(feedService, chain),
	}
	for _, h := range registrars {
		h.Register(e)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.ListenAddr))
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
