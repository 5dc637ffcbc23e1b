// Package config aggregates the environment-driven configuration of every
// component the server wires together.
package config

import (
	"time"

	"github.com/dmitrymomot/taskflow/pkg/cookie"
	"github.com/dmitrymomot/taskflow/pkg/email"
	"github.com/dmitrymomot/taskflow/pkg/logger"
	"github.com/dmitrymomot/taskflow/pkg/mongo"
	"github.com/dmitrymomot/taskflow/pkg/ratelimiter"
	"github.com/dmitrymomot/taskflow/pkg/redis"
	"github.com/dmitrymomot/taskflow/pkg/session"
)

// Server holds the HTTP listener configuration. There is deliberately no
// write timeout: the event stream holds connections open indefinitely.
type Server struct {
	Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Config is the full application configuration.
type Config struct {
	Server    Server
	Logger    logger.Config
	Mongo     mongo.Config
	Redis     redis.Config
	Cookie    cookie.Config
	Session   session.Config
	Email     email.Config
	RateLimit ratelimiter.Config
}
