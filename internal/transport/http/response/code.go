package response

import "net/http"

const (
	MsgNotFound         = "Not found"
	MsgInternal         = "Internal server error"
	MsgBodyTooLarge     = "Request body too large"
	MsgServerBusy       = "Server busy"
	MsgTimeout          = "Request timeout"
	MsgValidation       = "Validation failed"
	MsgMissingAuth      = "Authorization header missing"
	MsgInvalidAuth      = "Invalid authorization token"
	MsgMisconfigured    = "Server configuration error"
	MsgMethodNotAllowed = "Method not allowed"
)

// statusMsg is the message used when a failure carries none of its own.
var statusMsg = map[int]string{
	http.StatusBadRequest:            "Bad request",
	http.StatusUnauthorized:          MsgInvalidAuth,
	http.StatusNotFound:              MsgNotFound,
	http.StatusMethodNotAllowed:      MsgMethodNotAllowed,
	http.StatusRequestEntityTooLarge: MsgBodyTooLarge,
	http.StatusInternalServerError:   MsgInternal,
	http.StatusServiceUnavailable:    MsgServerBusy,
	http.StatusGatewayTimeout:        MsgTimeout,
}

func Message(status int) string {
	if m, ok := statusMsg[status]; ok {
		return m
	}
	return http.StatusText(status)
}
