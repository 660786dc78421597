package server

import (
	"context"
	"log/slog"
	"net"
	"roomchat/contract"
	"roomchat/domain"
	"roomchat/observability"
	"roomchat/projection"
	"roomchat/services"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Config struct {
	FrontendURL          string
	ConnectionBufferSize int
	PingInterval         time.Duration
	WriteTimeout         time.Duration
	MaxMessageSize       int64
}

// ProcessMonitor gives the last process sample, if any.
type ProcessMonitor interface {
	Latest() observability.ProcessStats
}

// ActivityReader gives per-room counters.
type ActivityReader interface {
	Snapshot() map[domain.RoomID]projection.RoomStats
}

// Server is the HTTP and websocket front of the chat.
type Server struct {
	app          *fiber.App
	log          *slog.Logger
	config       Config
	orchestrator contract.IOrchestrator
	history      services.IHistoryService
	directory    services.IRoomDirectory
	monitor      ProcessMonitor
	activity     ActivityReader
	validate     *validator.Validate
}

func NewServer(log *slog.Logger, config Config, orchestrator contract.IOrchestrator,
	history services.IHistoryService, directory services.IRoomDirectory,
	monitor ProcessMonitor, activity ActivityReader) *Server {
	if config.PingInterval <= 0 {
		config.PingInterval = 25 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.FrontendURL == "" {
		config.FrontendURL = "*"
	}
	s := &Server{
		log:          log,
		config:       config,
		orchestrator: orchestrator,
		history:      history,
		directory:    directory,
		monitor:      monitor,
		activity:     activity,
		validate:     validator.New(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "roomchat",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     config.FrontendURL,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Content-Type",
		AllowCredentials: config.FrontendURL != "*",
	}))
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.health)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleWebSocket))

	api := s.app.Group("/api")
	api.Get("/messages", s.recentMessages)
	api.Get("/messages/older", s.olderMessages)
	api.Post("/rooms/create", s.createRoom)
	api.Get("/rooms/:roomId", s.getRoom)
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info("HTTP server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve uses an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("HTTP server listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: message})
}
