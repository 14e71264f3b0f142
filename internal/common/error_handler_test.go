package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "Nil", err: nil, expected: http.StatusOK},
		{name: "NotFound", err: NewErrNotFound("node--article"), expected: http.StatusNotFound},
		{name: "BadRequest", err: NewErrBadRequest("bad key"), expected: http.StatusBadRequest},
		{name: "Forbidden", err: NewErrForbidden("denied"), expected: http.StatusForbidden},
		{name: "Internal", err: NewInternalServerError("boom"), expected: http.StatusInternalServerError},
		{name: "Plain", err: errors.New("boom"), expected: http.StatusInternalServerError},
		{name: "WrappedNotFound", err: fmt.Errorf("GW-STORE-LOAD: %w", NewErrNotFound("x")), expected: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFromError(tt.err))
		})
	}
}

func TestErrorPrefixes(t *testing.T) {
	err := NewErrForbidden("only the label is accessible")
	assert.True(t, IsErrForbidden(err))
	assert.False(t, IsErrNotFound(err))
	assert.Equal(t, "403 Forbidden: only the label is accessible", err.Error())
	assert.False(t, IsErrBadRequest(nil))
	assert.True(t, IsInternalServerError(fmt.Errorf("GW-STORE: %w", NewInternalServerError("boom"))))
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(errors.New("unknown key"), http.StatusBadRequest, "GW_ADMIN", "PutEnabledResourceTypes", "400")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	if assert.Len(t, resp.Body, 1) {
		msg := resp.Body[0]
		assert.Equal(t, "Error", msg.MessageType)
		assert.Equal(t, "unknown key", msg.Text)
		assert.Equal(t, "GW_ADMIN-PutEnabledResourceTypes-400", msg.Code)
		assert.NotEmpty(t, msg.Timestamp)
		assert.Empty(t, msg.CorrelationId)
	}

	resp = NewErrorResponse(errors.New("store down"), http.StatusInternalServerError, "GW_ADMIN", "GetSettings", "500")
	if assert.Len(t, resp.Body, 1) {
		assert.NotEmpty(t, resp.Body[0].CorrelationId)
	}
}
