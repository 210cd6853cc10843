package response

import "github.com/gin-gonic/gin"

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func NewError(status int, msg string, details ...string) ErrorBody {
	if msg == "" {
		msg = Message(status)
	}
	return ErrorBody{Error: msg, Details: details}
}

// Fail aborts the chain and writes an ErrorBody.
func Fail(c *gin.Context, status int, msg string, details ...string) {
	c.AbortWithStatusJSON(status, NewError(status, msg, details...))
}
