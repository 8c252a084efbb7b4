package config

import (
	"HospitalKiosk/database/postgres"
	kioskHandler "HospitalKiosk/internal/api/kiosk/handler"
	kioskRepository "HospitalKiosk/internal/api/kiosk/repository"
	kioskService "HospitalKiosk/internal/api/kiosk/service"
	proxyHandler "HospitalKiosk/internal/api/proxy/handler"
	staffHandler "HospitalKiosk/internal/api/staff/handler"
	staffService "HospitalKiosk/internal/api/staff/service"
	"HospitalKiosk/internal/middleware"
	"HospitalKiosk/pkg/backend"
	"HospitalKiosk/pkg/bcrypt"
	"HospitalKiosk/pkg/nlp"
	"HospitalKiosk/pkg/redis"
	"HospitalKiosk/pkg/s3"
	"HospitalKiosk/pkg/simulator"
	"HospitalKiosk/pkg/utils"
	"context"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"os"
	"time"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	db           *sqlx.DB
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	bcryptUtils  bcrypt.IBcrypt
	handlers     []handler
	rootHandlers []handler
	redisServer  redis.IRedis
	s3Client     s3.ItfS3
	gateway      backend.IGateway
	normalizer   nlp.INormalizer
	kioskConfig  kioskService.KioskConfig
	staffConfig  staffService.StaffConfig
	kioskService kioskService.IKioskService

	cancel context.CancelFunc
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		kioskConfig: kioskService.DefaultKioskConfig(),
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.gateway == nil {
		server.gateway = backend.New(backend.ConfigFromEnv(), simulator.New(server.kioskConfig.SimulationDelay), server.log)
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to postgres and, with DB_MIGRATE=true, applies migrations.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		if utils.GetEnvBool("DB_MIGRATE", false) {
			if err := postgres.Migrate(db); err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithKioskConfig(cfg kioskService.KioskConfig) ServerOption {
	return func(s *Server) error {
		s.kioskConfig = cfg
		return nil
	}
}

func WithStaffConfig(cfg staffService.StaffConfig) ServerOption {
	return func(s *Server) error {
		s.staffConfig = cfg
		return nil
	}
}

func WithGateway(gateway backend.IGateway) ServerOption {
	return func(s *Server) error {
		s.gateway = gateway
		return nil
	}
}

func WithNormalizer(normalizer nlp.INormalizer) ServerOption {
	return func(s *Server) error {
		s.normalizer = normalizer
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Kiosk records are optional; without a database turns are only logged.
	var kioskRepo kioskRepository.Repository
	if s.db != nil {
		kioskRepo = kioskRepository.New(s.db, s.log)
	}

	// Kiosk Domain
	kioskServices := kioskService.NewKioskService(s.log, &s.kioskConfig, s.gateway, kioskRepo, s.redisServer, s.s3Client, s.utils, s.normalizer)
	kioskHandlers := kioskHandler.New(s.log, s.validator, s.middleware, kioskServices, s.utils)
	s.kioskService = kioskServices

	// Staff Console
	if s.bcryptUtils == nil {
		s.bcryptUtils = bcrypt.New()
	}
	staffServices := staffService.NewStaffService(s.log, s.staffConfig, kioskRepo, s.redisServer, s.s3Client, s.bcryptUtils)
	staffHandlers := staffHandler.New(s.log, s.validator, s.middleware, staffServices)

	// Speech backend pass-through lives at the root, next to the kiosk page.
	proxyHandlers := proxyHandler.New(s.log, s.validator, s.middleware, s.gateway, s.utils)

	s.handlers = append(s.handlers, kioskHandlers, staffHandlers)
	s.rootHandlers = append(s.rootHandlers, proxyHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())
	s.setupHealthCheck()

	for _, h := range s.rootHandlers {
		h.Start(s.engine)
	}

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if s.kioskService != nil {
		go s.kioskService.Run(ctx)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, closes every kiosk session and waits for
// pending records to be written.
func (s *Server) Shutdown(timeout time.Duration) error {
	if s.cancel != nil {
		s.cancel()
	}

	err := s.engine.ShutdownWithTimeout(timeout)

	if s.kioskService != nil {
		s.kioskService.Shutdown()
	}
	if s.redisServer != nil {
		_ = s.redisServer.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
