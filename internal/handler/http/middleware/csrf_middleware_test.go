package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopforge/account-service/internal/config"
)

func testCSRFConfig() config.CSRFConfig {
	return config.CSRFConfig{
		Enabled:    true,
		CookieName: "csrf_token",
		HeaderName: "X-CSRF-Token",
	}
}

func csrfRouter(guard *CSRFGuard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(guard.Protect())
	router.GET("/token", func(c *gin.Context) {
		token, err := guard.IssueToken(c)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"csrf_token": token})
	})
	router.POST("/mutate", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/exempt", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/read", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCSRFSafeMethodBypasses(t *testing.T) {
	router := csrfRouter(NewCSRFGuard(testCSRFConfig(), nil, zap.NewNop()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/read", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFExemptPathBypasses(t *testing.T) {
	router := csrfRouter(NewCSRFGuard(testCSRFConfig(), []string{"/exempt"}, zap.NewNop()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/exempt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFMissingTokenRejected(t *testing.T) {
	router := csrfRouter(NewCSRFGuard(testCSRFConfig(), nil, zap.NewNop()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mutate", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFMismatchedPairRejected(t *testing.T) {
	router := csrfRouter(NewCSRFGuard(testCSRFConfig(), nil, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "aaaa"})
	req.Header.Set("X-CSRF-Token", "bbbb")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFMatchingPairAccepted(t *testing.T) {
	guard := NewCSRFGuard(testCSRFConfig(), nil, zap.NewNop())
	router := csrfRouter(guard)

	// Fetch a token the way a browser would.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/token", nil))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	token := cookies[0].Value
	require.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`), token)

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	req.Header.Set("X-CSRF-Token", token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFDisabledBypasses(t *testing.T) {
	cfg := testCSRFConfig()
	cfg.Enabled = false
	router := csrfRouter(NewCSRFGuard(cfg, nil, zap.NewNop()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mutate", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
