package httpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const defaultBodyLimit = 100 * 1024 * 1024

type Options struct {
	AppName      string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Ready reports whether dependencies can serve traffic; nil means always ready.
	Ready func(ctx context.Context) error
}

func InitFiberServer(opts Options) *fiber.App {
	bodyLimit := opts.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	s := fiber.New(fiber.Config{
		AppName:           opts.AppName,
		JSONEncoder:       json.Marshal,
		JSONDecoder:       json.Unmarshal,
		BodyLimit:         bodyLimit,
		StreamRequestBody: true,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
	})

	s.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	s.Use(cors.New())
	s.Use(healthcheck.New(healthcheck.Config{
		LivenessEndpoint:  "/manage/health",
		ReadinessEndpoint: "/manage/ready",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			if opts.Ready == nil {
				return true
			}
			return opts.Ready(c.UserContext()) == nil
		},
	}))

	return s
}
