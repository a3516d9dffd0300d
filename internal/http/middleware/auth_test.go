// README: Tests for bearer authentication and role guard middleware.
package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ridehub/internal/http/middleware"
	"ridehub/internal/types"
)

// stubVerifier is a test double for auth.Verifier.
type stubVerifier struct {
	identity types.Identity
	err      error
}

func (s *stubVerifier) Verify(_ string) (types.Identity, error) {
	return s.identity, s.err
}

func newTestRouter(verifier *stubVerifier, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{middleware.Authenticate(verifier)}, guards...)
	r.GET("/test", append(chain, func(c *gin.Context) {
		identity, _ := middleware.CallerIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": identity.UserID, "role": identity.Role})
	})...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	r := newTestRouter(&stubVerifier{identity: types.Identity{UserID: "u1", Role: types.RoleRider}})
	w := doGet(r, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticate_WrongScheme(t *testing.T) {
	r := newTestRouter(&stubVerifier{identity: types.Identity{UserID: "u1", Role: types.RoleRider}})
	w := doGet(r, "Token sometoken")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticate_VerifierError(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: errors.New("bad token")})
	w := doGet(r, "Bearer invalidtoken")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticate_ValidToken_IdentityPopulated(t *testing.T) {
	r := newTestRouter(&stubVerifier{identity: types.Identity{UserID: "driver123", Role: types.RoleDriver}})
	w := doGet(r, "Bearer validtoken")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "driver123") {
		t.Errorf("expected userId driver123 in body, got %s", body)
	}
	if !strings.Contains(body, "driver") {
		t.Errorf("expected role driver in body, got %s", body)
	}
}

func TestRequireRoles_Allows(t *testing.T) {
	r := newTestRouter(
		&stubVerifier{identity: types.Identity{UserID: "a1", Role: types.RoleAdmin}},
		middleware.RequireRoles(types.RoleAdmin),
	)
	w := doGet(r, "Bearer validtoken")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRequireRoles_Rejects(t *testing.T) {
	r := newTestRouter(
		&stubVerifier{identity: types.Identity{UserID: "u1", Role: types.RoleRider}},
		middleware.RequireRoles(types.RoleAdmin, types.RoleDriver),
	)
	w := doGet(r, "Bearer validtoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
