package common

import (
	"errors"
	"log"
	"net/http"
	"strings"
)

const (
	prefixNotFound       = "404 Not Found: "
	prefixBadRequest     = "400 Bad Request: "
	prefixForbidden      = "403 Forbidden: "
	prefixInternalServer = "500 Internal Server Error: "
)

// ErrorHandler is the message body returned for non JSON:API errors.
type ErrorHandler struct {
	MessageType   string `json:"messageType"`
	Text          string `json:"text"`
	Code          string `json:"code,omitempty"`
	CorrelationId string `json:"correlationId,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

func NewErrorHandler(messageType string, text error, code string, correlationId string, timestamp string) *ErrorHandler {
	return &ErrorHandler{
		MessageType:   messageType,
		Text:          text.Error(),
		Code:          code,
		CorrelationId: correlationId,
		Timestamp:     timestamp,
	}
}

// ErrorResponse pairs an HTTP status with its message body.
type ErrorResponse struct {
	Code int
	Body []ErrorHandler
}

// NewErrorResponse wraps err into the message list returned to clients.
// operation and component are joined into the message code. Server errors
// get a correlation id that is also written to the log.
func NewErrorResponse(err error, status int, component string, operation string, code string) ErrorResponse {
	correlationID := ""
	if status >= http.StatusInternalServerError {
		correlationID = NewCorrelationID()
		log.Printf("❌ [%s] %s-%s: %v", correlationID, component, operation, err)
	}
	return ErrorResponse{
		Code: status,
		Body: []ErrorHandler{*NewErrorHandler("Error", err, component+"-"+operation+"-"+code, correlationID, GetCurrentTimestamp())},
	}
}

func NewErrNotFound(elementId string) error {
	return errors.New(prefixNotFound + elementId)
}

func NewErrBadRequest(message string) error {
	return errors.New(prefixBadRequest + message)
}

func NewErrForbidden(message string) error {
	return errors.New(prefixForbidden + message)
}

func NewInternalServerError(message string) error {
	return errors.New(prefixInternalServer + message)
}

func IsErrNotFound(err error) bool {
	return hasPrefix(err, prefixNotFound)
}

func IsErrBadRequest(err error) bool {
	return hasPrefix(err, prefixBadRequest)
}

func IsErrForbidden(err error) bool {
	return hasPrefix(err, prefixForbidden)
}

func IsInternalServerError(err error) bool {
	return hasPrefix(err, prefixInternalServer)
}

// StatusFromError maps the prefixed errors to HTTP status codes. Wrapped
// errors are inspected through their chain.
func StatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsErrNotFound(err):
		return http.StatusNotFound
	case IsErrBadRequest(err):
		return http.StatusBadRequest
	case IsErrForbidden(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func hasPrefix(err error, prefix string) bool {
	for err != nil {
		if strings.HasPrefix(err.Error(), prefix) {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
