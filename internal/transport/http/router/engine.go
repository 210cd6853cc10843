package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/auth"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/server"
	mdw "github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/transport/http/middleware"
	resp "github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/transport/http/response"
)

// Module mounts its routes under /api (public) and /api/admin (token gated).
type Module interface {
	MountAPI(*gin.RouterGroup)
	MountAdmin(*gin.RouterGroup)
}

type Options struct {
	AdminToken     string
	MaxBodyBytes   int64
	MaxConcurrent  int64
	RequestTimeout time.Duration
	// Now stamps /health; time.Now when nil.
	Now func() time.Time
}

func NewEngine(l *zap.Logger, o Options, mods ...Module) *gin.Engine {
	if l == nil {
		l = zap.NewNop()
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}

	r := server.NewRouter(l)
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l.Named("http")),
		mdw.Metrics(),
		mdw.ConcurrencyLimit(o.MaxConcurrent),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.RequestTimeout),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": now().UTC().Format("2006-01-02T15:04:05.000Z07:00")})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	admin := api.Group("/admin")
	admin.Use(mdw.AdminToken(auth.NewStaticToken(o.AdminToken), l))
	for _, m := range mods {
		m.MountAPI(api)
		m.MountAdmin(admin)
	}

	r.NoRoute(func(c *gin.Context) {
		resp.Fail(c, http.StatusNotFound, resp.MsgNotFound)
	})
	return r
}
