package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminToken(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
		status int
		body   string
	}{
		{"ok", "secret", "Bearer secret", http.StatusOK, `"ok"`},
		{"missing", "secret", "", http.StatusUnauthorized, `{"error":"Authorization header missing"}`},
		{"wrong", "secret", "Bearer nope", http.StatusUnauthorized, `{"error":"Invalid authorization token"}`},
		{"unconfigured", "", "Bearer x", http.StatusInternalServerError, `{"error":"Server configuration error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			r := gin.New()
			r.POST("/x", AdminToken(auth.NewStaticToken(tt.secret), zap.NewNop()), func(c *gin.Context) {
				called = true
				c.JSON(http.StatusOK, "ok")
			})
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.Equal(t, tt.status == http.StatusOK, called)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc-123")
	w := serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(KeyRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
	assert.Equal(t, w.Header().Get(KeyRequestID), w.Body.String())
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var tooBig *http.MaxBytesError
		if assert.ErrorAs(t, err, &tooBig) {
			c.Status(http.StatusRequestEntityTooLarge)
		}
	})
	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestConcurrencyLimit_Busy(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	r := gin.New()
	r.Use(ConcurrencyLimit(1))
	r.GET("/", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})

	done := make(chan int)
	go func() {
		done <- serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Server busy"}`, w.Body.String())

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"error":"Request timeout"}`, w.Body.String())
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/domain/:domain", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/domain/a.com?token=abc&x=1", nil)
	req.Header.Set(KeyRequestID, "rid-1")
	serve(r, req)

	entries := logs.FilterMessage("HTTP").All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	fields := e.ContextMap()
	assert.Equal(t, "rid-1", fields["rid"])
	assert.Equal(t, "/domain/:domain", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	q, ok := fields["query"].(map[string][]string)
	require.True(t, ok)
	assert.Equal(t, []string{"****"}, q["token"])
	assert.Equal(t, []string{"1"}, q["x"])
}

// counterValue reads one series of domain_sales_http_requests_total.
func counterValue(t *testing.T, route, method, code string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "domain_sales_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == route && labels["method"] == method && labels["code"] == code {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := counterValue(t, "/items/:id", http.MethodGet, "204")
	beforeMiss := counterValue(t, unmatchedRoute, http.MethodGet, "404")

	serve(r, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/items/2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))

	assert.Equal(t, before+2, counterValue(t, "/items/:id", http.MethodGet, "204"), "labelled by template, not raw path")
	assert.Equal(t, beforeMiss+1, counterValue(t, unmatchedRoute, http.MethodGet, "404"))
	assert.Zero(t, counterValue(t, "/items/1", http.MethodGet, "204"))
}
