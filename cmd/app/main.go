package main

import (
	staffService "HospitalKiosk/internal/api/staff/service"
	"HospitalKiosk/internal/config"
	"HospitalKiosk/pkg/log"
	"HospitalKiosk/pkg/nlp"
	"HospitalKiosk/pkg/redis"
	"HospitalKiosk/pkg/s3"
	"github.com/joho/godotenv"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal(log.Fields{"error": err.Error()}, "Error loading .env file")
	}
	logger := log.NewLogger()

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()

	options := []config.ServerOption{
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithMiddleware(),
		config.WithKioskConfig(config.KioskConfigFromEnv()),
		config.WithStaffConfig(staffService.StaffConfigFromEnv()),
		config.WithNormalizer(nlp.NewNormalizer(nlp.PickRight)),
		config.WithBcryptUtils(),
		config.WithUtils(),
	}
	if os.Getenv("DB_HOST") != "" {
		options = append(options, config.WithDatabase())
	}
	if os.Getenv("REDIS_ADDRESS") != "" {
		options = append(options, config.WithRedisServer(redis.New()))
	}
	if s3.Enabled() {
		options = append(options, config.WithS3Client())
	}

	server, err := config.NewServer(options...)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(10 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
