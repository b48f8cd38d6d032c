package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(New(origins))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func request(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAllowedOrigin(t *testing.T) {
	router := newRouter([]string{"https://registrar.example.edu/"})

	w := request(router, http.MethodGet, "https://Registrar.example.edu")
	assert.Equal(t, "https://Registrar.example.edu", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")

	w = request(router, http.MethodGet, "https://elsewhere.test")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPatternOrigin(t *testing.T) {
	router := newRouter([]string{"https://*.example.edu"})

	w := request(router, http.MethodGet, "https://faculty.example.edu")
	assert.Equal(t, "https://faculty.example.edu", w.Header().Get("Access-Control-Allow-Origin"))

	w = request(router, http.MethodGet, "https://example.org")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenPolicyWithoutCredentials(t *testing.T) {
	router := newRouter(nil)

	w := request(router, http.MethodGet, "https://anywhere.test")
	assert.Equal(t, "https://anywhere.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestPreflight(t *testing.T) {
	router := newRouter(nil)

	w := request(router, http.MethodOptions, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}
