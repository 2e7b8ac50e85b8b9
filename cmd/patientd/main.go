package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"patient-service/internal/auth"
	"patient-service/internal/config"
	"patient-service/internal/http"
	"patient-service/internal/repository/postgres"
	"patient-service/internal/storage/s3"
	"patient-service/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	envFilePath      = ".env"
	serverAddrPrefix = ":"
	signalBufferSize = 1
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(envFilePath); err != nil {
		logger.Warn().Msg(".env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Info().Msg("configuration loaded")

	if err := postgres.RunMigrations(cfg.Database.URL()); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	logger.Info().Msg("database connection established")

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)

	s3Client, err := s3.NewClient(&cfg.AWS)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create S3 client")
	}

	logger.Info().Msg("S3 client initialized")

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)
	authMiddleware := auth.NewMiddleware(jwtService)
	collector := metrics.NewCollector()

	serverDeps := &http.ServerDependencies{
		Config:         cfg,
		UserRepo:       userRepo,
		PatientRepo:    patientRepo,
		AttachmentSink: s3Client,
		JWTService:     jwtService,
		AuthMiddleware: authMiddleware,
		Metrics:        collector,
		Logger:         logger,
	}

	server := http.NewServer(serverDeps)

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.Start(serverAddrPrefix + cfg.Server.Port); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited gracefully")
}
