package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"Inkwell/internal/api/middleware"
	"Inkwell/internal/api/routes"
	"Inkwell/internal/auth"
	"Inkwell/internal/config"
	"Inkwell/internal/core/comments"
	"Inkwell/internal/core/posts"
	"Inkwell/internal/core/pricing"
	"Inkwell/internal/core/querycache"
	"Inkwell/internal/core/session"
	"Inkwell/internal/core/users"
	"Inkwell/internal/db"
)

func main() {
	cfg, err := config.Load(".env", ".env.dev")
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.RequireSecrets(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := db.OpenStore(connectCtx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	cache, err := querycache.New(cfg.CacheSize, querycache.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create query cache: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return err
	}
	cookies, err := session.NewCookieStore(cfg.SessionSecret, cfg.SecureCookies, int(cfg.TokenTTL.Seconds()))
	if err != nil {
		return err
	}

	catalog := pricing.NewCatalog(pricing.DefaultPlans(), logger)
	if cfg.PlansFile != "" {
		if catalog, err = pricing.LoadCatalog(cfg.PlansFile, logger); err != nil {
			return err
		}
	}

	// Initialize repositories and services
	userService := users.NewUserService(users.NewUserRepository(store, logger), tokens, logger)
	postService := posts.NewPostService(posts.NewRepository(store, logger), cache, logger)
	commentService := comments.NewCommentService(store, cache, logger)
	authMiddleware := middleware.NewSessionAuthMiddleware(userService, cookies)

	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	r.Use(rateLimiter.Middleware)

	routes.RegisterAuthRoutes(r, userService, cookies, authMiddleware)
	routes.RegisterPostRoutes(r, postService, authMiddleware)
	routes.RegisterCommentRoutes(r, commentService, authMiddleware)
	routes.RegisterPricingRoutes(r, catalog)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("Failed to write health response: %v", err)
		}
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Inkwell API starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		rateLimiter.Run(gctx)
		return nil
	})

	if cfg.PlansFile != "" {
		g.Go(func() error {
			if err := catalog.Watch(gctx, 250*time.Millisecond); err != nil {
				logger.Warn("plan catalog hot reload disabled", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}
