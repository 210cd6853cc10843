package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/auth"
	resp "github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/transport/http/response"
)

// AdminToken gates a group behind the static bearer token. It runs before
// any handler reads the body.
func AdminToken(v *auth.StaticToken, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := v.Verify(c.GetHeader("Authorization"))
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, auth.ErrMissingToken):
			resp.Fail(c, http.StatusUnauthorized, resp.MsgMissingAuth)
		case errors.Is(err, auth.ErrNotConfigured):
			l.Error("admin token not configured, refusing admin request",
				zap.String("path", c.Request.URL.Path))
			resp.Fail(c, http.StatusInternalServerError, resp.MsgMisconfigured)
		default:
			l.Warn("admin token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()))
			resp.Fail(c, http.StatusUnauthorized, resp.MsgInvalidAuth)
		}
	}
}
