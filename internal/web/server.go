// Package web exposes the HTTP surface of the relay: one gin handler per
// route, each composing validation, a single outbound call, and a fixed
// JSON reply shape.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/frankcoz86/printora-backend/internal/config"
	"github.com/frankcoz86/printora-backend/internal/drive"
	"github.com/frankcoz86/printora-backend/internal/relay"
	"github.com/frankcoz86/printora-backend/internal/stripe"
)

// StripeClient is the slice of the Stripe client the handlers use.
type StripeClient interface {
	CreateCheckoutSession(ctx context.Context, p stripe.CheckoutParams) (*stripe.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*stripe.Session, error)
}

// DriveClient is the slice of the Drive client the upload route uses.
type DriveClient interface {
	UploadFile(ctx context.Context, localPath, name, mimeType, parentID string) (*drive.File, error)
}

// Server is the relay HTTP server.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	relay  *relay.Client
	stripe StripeClient
	drive  DriveClient
	router *gin.Engine
}

// NewServer assembles routes with dependencies. drive may be nil when no
// service account is configured; the upload route then fails with a
// configuration error.
func NewServer(cfg *config.Config, logger *slog.Logger, rc *relay.Client, stripeClient StripeClient, driveClient DriveClient) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	s := &Server{
		cfg:    cfg,
		logger: logger,
		relay:  rc,
		stripe: stripeClient,
		drive:  driveClient,
		router: router,
	}

	corsConfig := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Stripe-Signature"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(corsConfig))

	router.POST("/contact", s.handleContact)
	router.POST("/hooks/order-created", s.handleOrderCreated)
	router.POST("/files/upload", s.handleUpload)
	router.POST("/create-checkout-session", s.handleCreateCheckoutSession)
	router.GET("/checkout-session/:id", s.handleGetCheckoutSession)
	router.POST("/stripe-webhook", s.handleStripeWebhook)
	router.GET("/health", s.handleHealth)

	return s
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
