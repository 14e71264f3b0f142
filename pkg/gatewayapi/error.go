package gatewayapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

// ParsingError indicates that an error has occurred when parsing request parameters
type ParsingError struct {
	Param string
	Err   error
}

func (e *ParsingError) Unwrap() error {
	return e.Err
}

func (e *ParsingError) Error() string {
	if e.Param == "" {
		return e.Err.Error()
	}

	return e.Param + ": " + e.Err.Error()
}

// RequiredError indicates that a required request body field is missing
type RequiredError struct {
	Field string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("required field '%s' is zero value.", e.Field)
}

// ErrorHandler defines the required method for handling error. You may implement it and inject this into a controller if
// you would like errors to be handled differently from the DefaultErrorHandler
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error, result *ImplResponse)

// DefaultErrorHandler writes errors as JSON:API error documents. Parsing
// errors are 400, missing fields 422; otherwise the servicer's status is used,
// falling back to the status derived from the error. Not found responses carry
// no body.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error, result *ImplResponse) {
	status := http.StatusInternalServerError
	var parsingErr *ParsingError
	var requiredErr *RequiredError
	switch {
	case errors.As(err, &parsingErr):
		status = http.StatusBadRequest
	case errors.As(err, &requiredErr):
		status = http.StatusUnprocessableEntity
	case result != nil && result.Code >= http.StatusBadRequest:
		status = result.Code
	default:
		status = common.StatusFromError(err)
	}

	resp := ImplResponse{Code: status}
	if result != nil {
		resp.Headers = result.Headers
	}
	if status != http.StatusNotFound {
		obj := ErrorObject{
			Title:  http.StatusText(status),
			Status: strconv.Itoa(status),
			Detail: err.Error(),
		}
		if status >= http.StatusInternalServerError {
			obj.ID = common.NewCorrelationID()
			log.Printf("❌ [%s] %v", obj.ID, err)
		}
		resp.Body = ErrorDocument(obj)
	}
	_ = EncodeImplResponse(resp, w)
}

// AdminErrorHandler writes errors in the message list format of the
// administrative API.
func AdminErrorHandler(w http.ResponseWriter, _ *http.Request, err error, result *ImplResponse) {
	status := common.StatusFromError(err)
	var parsingErr *ParsingError
	var requiredErr *RequiredError
	switch {
	case errors.As(err, &parsingErr):
		status = http.StatusBadRequest
	case errors.As(err, &requiredErr):
		status = http.StatusUnprocessableEntity
	case result != nil && result.Code >= http.StatusBadRequest:
		status = result.Code
	}
	resp := common.NewErrorResponse(err, status, adminComponentName, "Request", strconv.Itoa(status))
	_ = EncodeJSONResponse(resp.Body, &resp.Code, w)
}
