package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/reservaid/reservaid/internal/common/config"
)

func signToken(t *testing.T, cfg config.AuthConfig, subject, role string) string {
	t.Helper()
	now := time.Now()
	claims := struct {
		Role string `json:"role"`
		jwt.RegisteredClaims
	}{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tokenStr
}

func TestJWTAuthAndRBAC(t *testing.T) {
	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "reservaid",
		Audience:  "reservaid",
		PublicPaths: []string{
			"POST /api/auth/login",
		},
		RBAC: map[string][]string{
			"POST /api/caisse/cloture": {"admin_site"},
			"GET /api/commandes":       {"vendeur", "admin_site"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"public": "ok"})
	})
	mux.HandleFunc("POST /api/caisse/cloture", func(w http.ResponseWriter, r *http.Request) {
		ai, ok := AuthFromContext(r.Context())
		if !ok {
			t.Fatalf("missing auth info in ctx")
		}
		if ai.Subject != "u-1" {
			t.Fatalf("subject mismatch: %s", ai.Subject)
		}
		WriteJSON(w, http.StatusOK, map[string]string{"gated": "ok"})
	})
	mux.HandleFunc("GET /api/commandes", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"list": "ok"})
	})

	handler := Chain(mux, JWTAuth(authCfg, mux, nil), RBAC(authCfg, mux))

	// Public route passes without a token.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("public route: expected 200, got %d", rec.Code)
	}

	// Gated route without a token is rejected.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/caisse/cloture", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	// admin_site reaches the till close route.
	tok := signToken(t, authCfg, "u-1", "admin_site")
	req := httptest.NewRequest(http.MethodPost, "/api/caisse/cloture", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin_site: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	// client is denied on seller/admin routes.
	tok = signToken(t, authCfg, "u-2", "client")
	req = httptest.NewRequest(http.MethodGet, "/api/commandes", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("client on seller route: expected 403, got %d", rec.Code)
	}

	// admin_global passes every gated route.
	tok = signToken(t, authCfg, "u-3", "admin_global")
	req = httptest.NewRequest(http.MethodGet, "/api/commandes", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin_global: expected 200, got %d", rec.Code)
	}
}

func TestJWTAuthRejectsBadToken(t *testing.T) {
	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profil", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"ok": "ok"})
	})
	handler := Chain(mux, JWTAuth(authCfg, mux, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/profil", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
