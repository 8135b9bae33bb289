package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/planbiir/gpxpack/internal/config"
	"github.com/planbiir/gpxpack/internal/gpx"
	"github.com/planbiir/gpxpack/internal/version"
)

// HeaderRequestID carries the per-request id in both directions.
const HeaderRequestID = "X-Request-ID"

// multipart framing on top of the largest accepted document
const bodyOverhead = 1 << 20

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	log     zerolog.Logger
	limiter *clientLimiter
}

func NewServer(cfg config.Config, log zerolog.Logger) *Server {
	s := &Server{
		Cfg:     cfg,
		log:     log,
		limiter: newClientLimiter(cfg.RateLimit, cfg.RateBurst),
	}

	s.App = fiber.New(fiber.Config{
		AppName:               "gpxpack " + version.Version,
		BodyLimit:             gpx.MaxInputBytes + bodyOverhead,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ProxyHeader:           cfg.ProxyHeader,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.App.Use(recover.New())
	s.App.Use(s.requestID)
	s.App.Use(s.accessLog)

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": version.Version})
	})

	RegisterRoutes(s.App.Group("/gpx"), s.throttle)
}

func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("request_id", id)
	c.Set(HeaderRequestID, id)
	return c.Next()
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Let the error handler write the status before logging it
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.log.Info().
		Str("request_id", requestIDOf(c)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
	return nil
}

func (s *Server) throttle(c *fiber.Ctx) error {
	// Buckets are per client address; ProxyHeader decides what IP returns
	if !s.limiter.Allow(c.IP()) {
		return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
	}
	return c.Next()
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := ""

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	} else {
		code = statusFor(err)
		kind = gpx.KindOf(err).String()
	}

	if code >= fiber.StatusInternalServerError {
		s.log.Error().Err(err).Str("request_id", requestIDOf(c)).Msg("request failed")
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error(), "kind": kind})
}

// statusFor maps a pipeline error to an HTTP status. An oversized input
// anywhere in the chain wins over the kind it was wrapped in.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gpx.ErrInputTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, gpx.ErrParse),
		errors.Is(err, gpx.ErrTooManyPoints),
		errors.Is(err, gpx.ErrInvalidFormat),
		errors.Is(err, gpx.ErrDecompression):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func requestIDOf(c *fiber.Ctx) string {
	id, _ := c.Locals("request_id").(string)
	return id
}
