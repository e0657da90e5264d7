package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Naim3097/BOOX/api"
	"github.com/Naim3097/BOOX/config"
	paymentsapi "github.com/Naim3097/BOOX/internal/api/payments_service_api"
	"github.com/Naim3097/BOOX/internal/service/booking"
	"github.com/Naim3097/BOOX/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Deps are the services exposed over HTTP and gRPC.
type Deps struct {
	Payments payment.PaymentUseCase
	Bookings booking.BookingUseCase
	Logger   *zap.Logger
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	healthConn *grpc.ClientConn
}

// Run starts the gRPC and HTTP servers and blocks until ctx is cancelled or
// a server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	s, err := newServers(cfg, deps)
	if err != nil {
		return err
	}
	defer s.healthConn.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	deps.Logger.Info("servers started",
		zap.String("http", cfg.HTTP.Address),
		zap.String("grpc", cfg.GRPC.Address),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.health.Shutdown()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		s.grpcServer.GracefulStop()
		return nil
	}
}

func newServers(cfg *config.Config, deps Deps) (*Servers, error) {
	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(deps.Logger)))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(paymentsapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, hs)
	paymentsapi.Register(grpcSrv, paymentsapi.NewServer(deps.Payments))

	conn, err := grpc.NewClient(dialAddress(cfg.GRPC.Address), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial grpc health: %w", err)
	}
	healthz := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, deps, healthz),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
		health:     hs,
		healthConn: conn,
	}, nil
}

// NewRouter builds the HTTP surface: browser and webhook endpoints under
// /api, the health probe and the swagger UI.
func NewRouter(cfg *config.Config, deps Deps, healthz http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(deps.Logger))
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed"})
	})

	group := router.Group("/api")
	limiter := api.NewRateLimiter(cfg.Payment.RateLimitRPS, cfg.Payment.RateLimitBurst)
	api.NewPaymentHandler(deps.Payments, limiter, deps.Logger).Register(group)
	api.NewWebhookHandler(deps.Bookings, cfg.Gateway.WebhookSecret, deps.Logger).Register(group)
	api.NewBookingHandler(deps.Bookings, cfg.Payment.DepositAmount, deps.Logger).Register(group)

	if healthz != nil {
		router.GET("/healthz", gin.WrapH(healthz))
	}

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/payments.swagger.json"))))
	}
	return router
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			logger.Warn("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("grpc request", fields...)
		}
		return resp, err
	}
}

// dialAddress turns a listen address like ":9090" into something dialable.
func dialAddress(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "localhost" + listen
	}
	return listen
}
