package middleware

import (
	"go-leave/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger puts a request scoped logger carrying request and person ids
// into the request context. It has to run after AuthMiddleware to see the
// person id.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetString("request_id")
		if rid == "" {
			rid = uuid.NewString()
			c.Set("request_id", rid)
			c.Header(requestIDHeader, rid)
		}

		pid := c.GetString("person_id")

		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("person_id", pid),
		)

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithPersonID(ctx, pid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
