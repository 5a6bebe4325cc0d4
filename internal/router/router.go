package router

import (
	"time"

	"campus/config"
	"campus/internal/domain"
	"campus/internal/handler"
	"campus/internal/middleware"
	"campus/internal/repository"
	"campus/internal/service"
	"campus/pkg/gateway"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	feeRepo := repository.NewFeeRepository(db)

	// Gateway: the key secret signs client confirmations, the webhook
	// secret signs the async channel.
	gwClient := gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret, log)
	paymentVerifier := gateway.NewSignatureVerifier(cfg.Gateway.KeySecret, log)
	webhookVerifier := gateway.NewSignatureVerifier(cfg.Gateway.WebhookSecret, log)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	paymentSvc := service.NewFeePaymentService(feeRepo, gwClient, paymentVerifier, cfg.Gateway.Currency, log)
	webhookProc := service.NewWebhookProcessor(feeRepo, webhookVerifier, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	feePaymentHandler := handler.NewFeePaymentHandler(paymentSvc, auditRepo)
	webhookHandler := handler.NewGatewayWebhookHandler(webhookProc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)

		fees := api.Group("/fees")
		fees.Use(authMw)
		{
			fees.POST("/assignments/:id/initiate", feePaymentHandler.Initiate)
			fees.POST("/payments/confirm", feePaymentHandler.Confirm)
			fees.POST("/assignments/:id/payments",
				middleware.RequireRole(domain.RoleStaff, domain.RoleAdmin),
				feePaymentHandler.RecordOffline)
		}

		api.POST("/webhooks/gateway", webhookHandler.Handle)
	}

	return r
}
