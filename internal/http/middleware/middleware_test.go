package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestValidateContentType(t *testing.T) {
	router := gin.New()
	router.POST("/", ValidateContentType("application/json"), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})

	tests := map[string]int{
		"application/json":                http.StatusNoContent,
		"application/json; charset=utf-8": http.StatusNoContent,
		"text/plain":                      http.StatusUnsupportedMediaType,
		"":                                http.StatusUnsupportedMediaType,
	}
	for contentType, want := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, contentType)
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(zaptest.NewLogger(t)))
	router.GET("/boom", func(ctx *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(Logger(zaptest.NewLogger(t)), CORS(), SecurityHeaders())
	router.POST("/x", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
