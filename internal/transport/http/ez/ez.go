// Package ez registers typed gin actions and maps their errors onto JSON
// responses.
package ez

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/transport/http/response"
)

// AErr is an error that already knows its HTTP status and client message.
// Err is the internal cause; it is logged, never sent.
type AErr struct {
	Code    int
	Msg     string
	Details []string
	Err     error
}

func (e *AErr) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return fmt.Sprintf("action error %d", e.Code)
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Invalid(details []string) error {
	return &AErr{Code: http.StatusBadRequest, Msg: resp.MsgValidation, Details: details}
}
func NotFound(msg string) error { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func TooLarge() error           { return &AErr{Code: http.StatusRequestEntityTooLarge, Msg: resp.MsgBodyTooLarge} }
func Timeout(err error) error {
	return &AErr{Code: http.StatusGatewayTimeout, Msg: resp.MsgTimeout, Err: err}
}
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Action describes one route. I is the bound input, O the response body.
type Action[I any, O any] struct {
	Method string
	Path   string
	Status int // success status, 200 when zero
	// Bind builds the input from the request; nil means the zero I.
	Bind    func(c *gin.Context) (I, error)
	Handler func(c *gin.Context, in I) (O, error)
}

// Register mounts a on g. Errors that are not *AErr become a bare 500.
func Register[I any, O any](g gin.IRoutes, l *zap.Logger, a Action[I, O]) {
	if l == nil {
		l = zap.NewNop()
	}
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		if a.Bind != nil {
			v, err := a.Bind(c)
			if err != nil {
				Abort(c, l, err)
				return
			}
			in = v
		}
		out, err := a.Handler(c, in)
		if err != nil {
			Abort(c, l, err)
			return
		}
		c.JSON(status, out)
	}
	g.Handle(strings.ToUpper(a.Method), a.Path, h)
}

// Abort writes err as an ErrorBody and stops the chain.
func Abort(c *gin.Context, l *zap.Logger, err error) {
	var ae *AErr
	if !errors.As(err, &ae) {
		ae = &AErr{Code: http.StatusInternalServerError, Err: err}
	}
	if ae.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
		l.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", ae.Code),
			zap.Error(err),
		)
	}
	resp.Fail(c, ae.Code, ae.Msg, ae.Details...)
}

// Body reads the whole request body. A body over the MaxBytesReader limit
// becomes a 413.
func Body(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	b, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, TooLarge()
		}
		return nil, BadRequest("unable to read request body")
	}
	return b, nil
}
