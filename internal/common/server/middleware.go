package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/reservaid/reservaid/internal/common/config"
	"github.com/reservaid/reservaid/internal/common/logger"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares in declaration order (the first one listed is
// the outermost).
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		h = mws[i](h)
	}
	return h
}

// routePattern resolves the mux pattern a request will match ("POST
// /api/commandes/{id}/valider"), so auth rules can be keyed on patterns
// instead of raw URLs.
func routePattern(mux *http.ServeMux, r *http.Request) string {
	if mux == nil || r == nil {
		return ""
	}
	_, pattern := mux.Handler(r)
	return pattern
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Recovery keeps a handler panic from killing the process and logs the stack.
func Recovery(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if log != nil {
						log.Errorf("panic in handler method=%s path=%s err=%v stack=%s", r.Method, r.URL.Path, rec, string(debug.Stack()))
					}
					WriteError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog records duration and status of every request.
func AccessLog(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)
			cost := time.Since(start)

			if log != nil {
				fields := map[string]interface{}{
					"method": r.Method,
					"path":   r.URL.Path,
					"status": sr.status,
					"cost":   cost.String(),
				}
				if sr.status >= http.StatusBadRequest {
					log.WithFields(fields).Warn("http request failed")
				} else {
					log.WithFields(fields).Info("http request ok")
				}
			}
		})
	}
}

// Tracing is a minimal OpenTracing server middleware:
// - extracts the parent span context from the request headers
// - starts a server span and injects it into the request context
func Tracing(serviceName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracer := opentracing.GlobalTracer()

			var parent opentracing.SpanContext
			if sc, err := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(r.Header)); err == nil {
				parent = sc
			}

			operation := fmt.Sprintf("%s %s", r.Method, r.URL.Path)

			var span opentracing.Span
			if parent != nil {
				span = tracer.StartSpan(operation, ext.RPCServerOption(parent))
			} else {
				span = tracer.StartSpan(operation)
			}
			defer span.Finish()

			ext.SpanKindRPCServer.Set(span)
			ext.Component.Set(span, "http")
			ext.HTTPMethod.Set(span, r.Method)
			ext.HTTPUrl.Set(span, r.URL.String())
			if serviceName != "" {
				span.SetTag("service", serviceName)
			}

			ctx := opentracing.ContextWithSpan(r.Context(), span)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type authContextKey struct{}

// AuthInfo is the minimal identity parsed from the JWT, carried in the
// request context for handlers.
type AuthInfo struct {
	Subject string // user id
	Role    string // single application role
	Nom     string // display name, used in audit entries
}

// AuthFromContext extracts the auth info from a request context.
func AuthFromContext(ctx context.Context) (AuthInfo, bool) {
	v := ctx.Value(authContextKey{})
	if v == nil {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// ContextWithAuth injects auth info; exported for handler tests.
func ContextWithAuth(ctx context.Context, ai AuthInfo) context.Context {
	return context.WithValue(ctx, authContextKey{}, ai)
}

/// JWTAuth validates `Authorization: Bearer <token>`:
// - HS256 signature, exp/nbf (jwt/v5 defaults)
// - optional iss/aud check
// - parsed identity goes into the request context
// Routes listed in cfg.PublicPaths (by mux pattern) skip auth entirely.
func JWTAuth(cfg config.AuthConfig, mux *http.ServeMux, log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			pattern := routePattern(mux, r)
			if isPublicPath(cfg.PublicPaths, pattern) {
				next.ServeHTTP(w, r)
				return
			}
			if strings.TrimSpace(cfg.JWTSecret) == "" {
				if log != nil {
					log.Warn("auth enabled but jwt_secret is empty")
				}
				WriteError(w, http.StatusUnauthorized, "auth not configured")
				return
			}

			raw := r.Header.Get("Authorization")
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "missing authorization")
				return
			}

			tokenStr := strings.TrimSpace(raw)
			if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
				tokenStr = strings.TrimSpace(tokenStr[len("bearer "):])
			}
			if tokenStr == "" {
				WriteError(w, http.StatusUnauthorized, "invalid authorization")
				return
			}

			claims := struct {
				Role string `json:"role"`
				Nom  string `json:"nom"`
				jwt.RegisteredClaims
			}{}

			parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
				if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
				}
				return []byte(cfg.JWTSecret), nil
			}, jwt.WithLeeway(30*time.Second))
			if err != nil || parsed == nil || !parsed.Valid {
				WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
				WriteError(w, http.StatusUnauthorized, "invalid issuer")
				return
			}
			if cfg.Audience != "" && !audienceContains(claims.Audience, cfg.Audience) {
				WriteError(w, http.StatusUnauthorized, "invalid audience")
				return
			}

			ctx := ContextWithAuth(r.Context(), AuthInfo{
				Subject: claims.Subject,
				Role:    claims.Role,
				Nom:     claims.Nom,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RBAC enforces the pattern->roles table:
// - a route with a non-empty role list requires the token role to be listed
// - admin_global passes every gated route
// - unlisted routes only require authentication
func RBAC(cfg config.AuthConfig, mux *http.ServeMux) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			pattern := routePattern(mux, r)
			if isPublicPath(cfg.PublicPaths, pattern) {
				next.ServeHTTP(w, r)
				return
			}

			required := cfg.RBAC[pattern]
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			ai, ok := AuthFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "missing auth context")
				return
			}
			if hasRole(ai.Role, required) {
				next.ServeHTTP(w, r)
				return
			}
			WriteError(w, http.StatusForbidden, "permission denied")
		})
	}
}

func hasRole(got string, required []string) bool {
	got = strings.TrimSpace(strings.ToLower(got))
	if got == "" {
		return false
	}
	if got == "admin_global" {
		return true
	}
	for _, r := range required {
		if strings.TrimSpace(strings.ToLower(r)) == got {
			return true
		}
	}
	return false
}

func audienceContains(aud jwt.ClaimStrings, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || len(aud) == 0 {
		return false
	}
	for _, v := range aud {
		if strings.TrimSpace(v) == want {
			return true
		}
	}
	return false
}

func isPublicPath(public []string, pattern string) bool {
	if pattern == "" || len(public) == 0 {
		return false
	}
	for _, p := range public {
		if strings.TrimSpace(p) == pattern {
			return true
		}
	}
	return false
}
