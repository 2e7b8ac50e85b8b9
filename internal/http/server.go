package http

import (
	"context"
	stdhttp "net/http"
	"strconv"

	"patient-service/internal/auth"
	"patient-service/internal/config"
	"patient-service/internal/http/handler"
	"patient-service/internal/http/middleware"
	"patient-service/internal/repository"
	"patient-service/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const (
	jsonKeyStatus = "status"
	statusOK      = "ok"
)

type ServerDependencies struct {
	Config         *config.Config
	UserRepo       repository.UserRepository
	PatientRepo    repository.PatientRepository
	AttachmentSink handler.AttachmentSink
	JWTService     *auth.JWTService
	AuthMiddleware *auth.Middleware
	Metrics        *metrics.Collector
	Logger         zerolog.Logger
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID middleware first, so all logs carry a request ID.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.Logger(deps.Logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(strconv.FormatInt(deps.Config.App.MaxUploadSize, 10)))
	e.Use(deps.Metrics.Middleware())

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	// Strict rate limiting for the credential endpoints.
	strictRateLimiter := middleware.NewStrictRateLimiter()

	authHandler := handler.NewAuthHandler(deps.UserRepo, deps.JWTService)
	patientHandler := handler.NewPatientHandler(
		deps.PatientRepo,
		deps.AttachmentSink,
		deps.Metrics,
		deps.Config.App.MaxAttachments,
	)

	e.POST("/auth/signup", authHandler.SignUp, strictRateLimiter.Middleware())
	e.POST("/auth/signin", authHandler.SignIn, strictRateLimiter.Middleware())
	e.GET("/auth/me", authHandler.Me, deps.AuthMiddleware.RequireJWT())
	e.GET("/health", healthCheck)
	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))

	patients := e.Group("/patients")
	patients.Use(deps.AuthMiddleware.RequireJWT())

	patients.GET("", patientHandler.List)
	patients.GET("/:id", patientHandler.Get)
	patients.POST("", patientHandler.Create)
	patients.PUT("/edit/:id", patientHandler.Update)
	patients.DELETE("/:id", patientHandler.Delete)

	return &Server{
		echo: e,
		deps: deps,
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
