package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/taskflow/config"
	"github.com/dmitrymomot/taskflow/modules/auth"
	"github.com/dmitrymomot/taskflow/modules/notify"
	"github.com/dmitrymomot/taskflow/modules/task"
	"github.com/dmitrymomot/taskflow/modules/user"
	appconfig "github.com/dmitrymomot/taskflow/pkg/config"
	"github.com/dmitrymomot/taskflow/pkg/cookie"
	"github.com/dmitrymomot/taskflow/pkg/email"
	"github.com/dmitrymomot/taskflow/pkg/httpserver"
	"github.com/dmitrymomot/taskflow/pkg/httpx"
	"github.com/dmitrymomot/taskflow/pkg/logger"
	"github.com/dmitrymomot/taskflow/pkg/mongo"
	"github.com/dmitrymomot/taskflow/pkg/ratelimiter"
	"github.com/dmitrymomot/taskflow/pkg/redis"
	"github.com/dmitrymomot/taskflow/pkg/session"
)

func main() {
	var cfg config.Config
	appconfig.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger)
	ctx := context.Background()

	db, err := mongo.NewWithDatabase(ctx, cfg.Mongo, cfg.Mongo.Database)
	if err != nil {
		log.Error("failed to connect to mongodb", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	userStore := user.NewMongoStore(db)
	verificationStore := auth.NewMongoVerificationStore(db)
	taskStore := task.NewMongoStore(db)
	for _, ensure := range []func(context.Context) error{
		userStore.EnsureIndexes,
		verificationStore.EnsureIndexes,
		taskStore.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Error("failed to ensure indexes", logger.Error(err))
			os.Exit(1)
		}
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		log.Error("failed to create cookie manager", logger.Error(err))
		os.Exit(1)
	}
	sessions, err := session.New(cfg.Session, cookies)
	if err != nil {
		log.Error("failed to create session manager", logger.Error(err))
		os.Exit(1)
	}

	mailer := newMailer(cfg.Email, log)

	hub := notify.NewHub(notify.WithHubLogger(log))
	defer func() { _ = hub.Close() }()

	authSvc := auth.NewService(userStore, verificationStore, mailer, auth.WithLogger(log))
	userSvc := user.NewService(userStore, hub, user.WithLogger(log))
	taskSvc := task.NewService(taskStore, hub, task.WithLogger(log))

	limiter, err := ratelimiter.NewWindow(
		ratelimiter.NewRedisStore(redisClient, "ratelimit"),
		cfg.RateLimit,
	)
	if err != nil {
		log.Error("failed to create rate limiter", logger.Error(err))
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", healthHandler(
		mongo.Healthcheck(db.Client()),
		redis.Healthcheck(redisClient),
	))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ratelimiter.Middleware(limiter, log))
			r.Mount("/auth", auth.NewHandler(authSvc, sessions).Routes())
		})

		r.Mount("/tasks", task.NewHandler(taskSvc, sessions).Routes())
		r.Mount("/users", user.NewHandler(userSvc, sessions).Routes())

		r.Group(func(r chi.Router) {
			r.Use(session.Middleware(sessions))
			r.Get("/events", notify.SSEHandler(hub, log))
		})
	})

	srv := httpserver.New(
		httpserver.WithAddr(cfg.Server.Addr),
		httpserver.WithReadTimeout(cfg.Server.ReadTimeout),
		httpserver.WithIdleTimeout(cfg.Server.IdleTimeout),
		httpserver.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		httpserver.WithLogger(log),
	)
	if err := srv.Run(ctx, r); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

// newMailer sends through Postmark when a server token is configured and
// falls back to writing emails to disk for local development.
func newMailer(cfg email.Config, log *slog.Logger) email.EmailSender {
	if cfg.PostmarkServerToken == "" {
		log.Warn("postmark token not set, writing emails to disk",
			logger.Component("email"))
		return email.NewDevSender(cfg.DevOutputDir)
	}
	sender, err := email.NewPostmarkClient(cfg)
	if err != nil {
		log.Error("failed to create postmark client", logger.Error(err))
		os.Exit(1)
	}
	return sender
}

// healthHandler reports whether the backing stores are reachable.
func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				httpx.Error(w, http.StatusServiceUnavailable, "Service unavailable.")
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
