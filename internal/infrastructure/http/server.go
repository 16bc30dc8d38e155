package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/toanvc0910/TechHub-BE-sub001/internal/adapter/handler/http"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/config"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/infrastructure/database"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/infrastructure/enrollment"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/infrastructure/gateway"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/middleware/auth"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/usecase"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	repos  *database.Repositories
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories) *Server {
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config: cfg,
		logger: logger,
		echo:   e,
		repos:  repos,
	}
}

func (s *Server) Start() error {
	// Setup routes
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "payment",
		})
	})

	// Wire the checkout service
	gatewayFactory := gateway.NewFactory(s.config, s.logger)
	dispatcher := enrollment.NewClient(s.config.Service.Enrollment, s.logger)
	checkoutService := usecase.NewCheckoutService(
		s.repos.Transaction,
		s.repos.Payment,
		s.repos.OrderMapping,
		gatewayFactory,
		dispatcher,
		s.logger,
	)

	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, s.logger)
	callbackHandler := handlers.NewCallbackHandler(checkoutService, s.config.Service.ClientURL, s.logger)

	// JWT middleware configuration. Gateway callbacks authenticate
	// themselves (signature / capture), never with a user token.
	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
			"/api/v1/payments/vnpay/return",
			"/api/v1/payments/paypal/capture",
		},
	}

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Gateway callbacks (no authentication)
	v1.GET("/payments/vnpay/return", callbackHandler.HandleVNPayReturn)
	v1.GET("/payments/paypal/capture", callbackHandler.HandlePayPalCapture)

	// Protected routes (require JWT authentication)
	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))

	protected.POST("/payments", checkoutHandler.StartPayment)
	protected.GET("/payments", checkoutHandler.ListTransactions)
	protected.GET("/payments/:id", checkoutHandler.GetTransaction)
	protected.POST("/payments/:id/refund", checkoutHandler.Refund)
}
