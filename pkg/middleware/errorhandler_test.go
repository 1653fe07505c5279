package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yourorg/pdf-combine-kit/pkg/combiner"
	"github.com/yourorg/pdf-combine-kit/pkg/errors"
	"github.com/yourorg/pdf-combine-kit/pkg/logging"
)

func TestErrorHandlerMiddleware_HandlesAppError(t *testing.T) {
	logger, _ := logging.NewLogger("info", "json")
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		SetError(c, errors.NewNotFoundError("resource not found"))
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorHandlerMiddleware_MapsCombineErrors(t *testing.T) {
	logger, _ := logging.NewLogger("info", "json")
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.Error(&combiner.PageNotFoundError{Page: 9, Path: "a.pdf"})
		c.Abort()
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestErrorHandlerMiddleware_SetsServiceHandledHeader(t *testing.T) {
	logger, _ := logging.NewLogger("info", "json")
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		err := errors.NewInternalError("internal error").SetHandledByService(true)
		SetError(c, err)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Service-Handled"))
}

