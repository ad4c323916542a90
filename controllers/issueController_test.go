package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestViewerFromContextMissingUserID(t *testing.T) {
	c, w := newTestContext()

	_, ok := viewerFromContext(context.Background(), c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestViewerFromContextNonStringUserID(t *testing.T) {
	c, w := newTestContext()
	c.Set("user_id", 12345)

	_, ok := viewerFromContext(context.Background(), c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewerFromContextMalformedUserID(t *testing.T) {
	c, w := newTestContext()
	c.Set("user_id", "not-a-hex-id")

	_, ok := viewerFromContext(context.Background(), c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
