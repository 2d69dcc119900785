package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	return resp
}

func TestSuccess(t *testing.T) {
	w := record(func(c *gin.Context) {
		Success(c, map[string]string{"id": "evt-1"})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestCreated(t *testing.T) {
	w := record(func(c *gin.Context) {
		Created(c, map[string]string{"id": "evt-1"})
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		fn         func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "VALIDATION_ERROR", "quantity must be at least 1") }, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", func(c *gin.Context) { NotFound(c, "NOT_FOUND", "event not found") }, http.StatusNotFound, "NOT_FOUND"},
		{"internal", func(c *gin.Context) { InternalError(c, "INTERNAL_ERROR", "An internal error occurred") }, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "INVALID_TOKEN", "invalid token") }, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "FORBIDDEN", "insufficient permissions") }, http.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := record(tt.fn)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			if assert.NotNil(t, resp.Error) {
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.Message)
			}
		})
	}
}

func TestError_Details(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "already being processed", "key reused")
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "key reused", resp.Error.Details)
}
