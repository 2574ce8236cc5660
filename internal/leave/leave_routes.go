package leave

import (
	"time"

	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RouteConfig struct {
	JWTSecret      string
	RateLimit      rate.Limit
	RateBurst      int
	IdempotencyTTL time.Duration
}

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	cfg RouteConfig,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	leaves.Use(middleware.ContextLogger(handler.logger))
	leaves.Use(middleware.RateLimitByUser(cfg.RateLimit, cfg.RateBurst))
	if rdb != nil {
		leaves.Use(middleware.Idempotency(rdb, cfg.IdempotencyTTL))
	}
	{
		leaves.POST("", middleware.RBACAuthorize(rbacService, "leave", "apply"), handler.Submit)
		leaves.POST("/direct", middleware.RBACAuthorize(rbacService, "leave", "direct"), handler.DirectAllow)
		leaves.POST("/converted", middleware.RBACAuthorize(rbacService, "leave", "direct"), handler.ConvertFromSickLeave)
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.ListByPerson)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetByID)
		leaves.GET("/:id/comments", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetComments)
		leaves.PUT("/:id", middleware.RBACAuthorize(rbacService, "leave", "apply"), handler.Edit)
		leaves.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.Approve)
		leaves.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.Reject)
		leaves.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "leave", "apply"), handler.Cancel)
		leaves.POST("/:id/direct-cancel", middleware.RBACAuthorize(rbacService, "leave", "direct"), handler.DirectCancel)
		leaves.POST("/:id/decline-cancellation", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.DeclineCancellationRequest)
		leaves.POST("/:id/remind", middleware.RBACAuthorize(rbacService, "leave", "apply"), handler.Remind)
		leaves.POST("/:id/refer", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.Refer)
	}
}
