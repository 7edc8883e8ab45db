package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wellally/healthaudit/internal/middleware"
	"github.com/wellally/healthaudit/internal/security"
)

const testAPIKey = "good-key-0123456789abcdef"

func newAuthRouter(guards ...*security.BruteForceGuard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(testAPIKey, log, guards...))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doAuthRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidKey(t *testing.T) {
	r := newAuthRouter()

	w := doAuthRequest(r, "Bearer "+testAPIKey)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := newAuthRouter()

	w := doAuthRequest(r, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := newAuthRouter()

	w := doAuthRequest(r, "Basic "+testAPIKey)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongKey(t *testing.T) {
	r := newAuthRouter()

	w := doAuthRequest(r, "Bearer wrong-key")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_GuardRecordsFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	guard := security.NewBruteForceGuard(ctx, log)
	r := newAuthRouter(guard)

	for i := 0; i < security.BruteForceMaxAttempts; i++ {
		doAuthRequest(r, "Bearer wrong-key")
	}

	if !guard.IsBlocked("wrong-key") {
		t.Error("guard should block the key after repeated failures")
	}
	if guard.IsBlocked(testAPIKey) {
		t.Error("valid key should not be blocked")
	}
}

func TestBruteForceMiddleware_BlocksLockedKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	guard := security.NewBruteForceGuard(ctx, log)

	for i := 0; i < security.BruteForceMaxAttempts; i++ {
		guard.RecordFailure("locked-key")
	}

	r := gin.New()
	r.Use(middleware.BruteForceMiddleware(guard))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer locked-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}
