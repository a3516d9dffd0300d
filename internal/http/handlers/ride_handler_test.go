// README: Tests for ride handler routing, authentication, and input validation.
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ridehub/internal/http/handlers"
	"ridehub/internal/http/middleware"
	"ridehub/internal/modules/ride"
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

// buildTestRouter wires a minimal engine with the auth middleware and the
// ride handler. ride.NewService(nil, nil, nil, nil) is safe here because
// every exercised path fails validation or authorization before any store
// or directory access.
func buildTestRouter(verifier *stubVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := ride.NewService(nil, nil, nil, nil)
	r := gin.New()
	h := handlers.NewRideHandler(svc)
	authed := r.Group("", middleware.Authenticate(verifier))
	authed.POST("/api/v1/rides", middleware.RequireRoles(types.RoleRider), h.Create)
	authed.GET("/api/v1/rides/available", middleware.RequireRoles(types.RoleDriver), h.Available)
	authed.POST("/api/v1/rides/:id/accept", middleware.RequireRoles(types.RoleDriver), h.Accept)
	authed.PATCH("/api/v1/rides/:id/status", h.UpdateStatus)
	return r
}

func identityFor(role types.Role) *stubVerifier {
	return &stubVerifier{identity: types.Identity{UserID: "caller1", Role: role}}
}

func doRequest(r *gin.Engine, method, path string, body any, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreate_Unauthenticated(t *testing.T) {
	r := buildTestRouter(&stubVerifier{err: errors.New("no token")})
	w := doRequest(r, http.MethodPost, "/api/v1/rides", map[string]any{
		"passengers": 2, "from": "a", "to": "b", "fare": 10,
	}, "Bearer badtoken")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCreate_RequiresRiderRole(t *testing.T) {
	r := buildTestRouter(identityFor(types.RoleDriver))
	w := doRequest(r, http.MethodPost, "/api/v1/rides", map[string]any{
		"passengers": 2, "from": "a", "to": "b", "fare": 10,
	}, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestCreate_RejectsInvalidBody(t *testing.T) {
	r := buildTestRouter(identityFor(types.RoleRider))
	cases := []map[string]any{
		{"from": "a", "to": "b", "fare": 10},                  // missing passengers
		{"passengers": 0, "from": "a", "to": "b", "fare": 10}, // zero passengers
		{"passengers": 2, "to": "b", "fare": 10},              // missing origin
		{"passengers": 2, "from": "a", "to": "b", "fare": -1}, // negative fare
	}
	for _, body := range cases {
		w := doRequest(r, http.MethodPost, "/api/v1/rides", body, "Bearer sometoken")
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %v: expected 400, got %d", body, w.Code)
		}
	}
}

func TestAvailable_RequiresDriverRole(t *testing.T) {
	r := buildTestRouter(identityFor(types.RoleRider))
	w := doRequest(r, http.MethodGet, "/api/v1/rides/available", nil, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAccept_RequiresDriverRole(t *testing.T) {
	r := buildTestRouter(identityFor(types.RoleRider))
	w := doRequest(r, http.MethodPost, "/api/v1/rides/abc123/accept", nil, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	r := buildTestRouter(identityFor(types.RoleDriver))
	w := doRequest(r, http.MethodPatch, "/api/v1/rides/abc123/status", map[string]any{
		"status": "teleported",
	}, "Bearer sometoken")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestUpdateStatus_RejectsMissingStatus(t *testing.T) {
	r := buildTestRouter(identityFor(types.RoleDriver))
	w := doRequest(r, http.MethodPatch, "/api/v1/rides/abc123/status", map[string]any{}, "Bearer sometoken")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
