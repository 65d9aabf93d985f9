package user

import (
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/common/middleware"
	"github.com/reservaid/reservaid/internal/common/server"
)

// Handler is the HTTP transport for accounts. The login route runs behind a
// rate limiter to slow credential guessing.
type Handler struct {
	svc     *Service
	repo    *Repo
	limiter *middleware.PerClient
}

func NewHandler(svc *Service, repo *Repo, limiter *middleware.PerClient) *Handler {
	return &Handler{svc: svc, repo: repo, limiter: limiter}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.Handle("POST /api/auth/login",
		middleware.RateLimit(h.limiter, http.HandlerFunc(h.login)))
	mux.HandleFunc("GET /api/profil", h.profil)
	mux.HandleFunc("GET /api/users", h.list)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Nom      string `json:"nom"`
		Password string `json:"password"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	// Self-service registration always creates a customer account.
	u, err := h.svc.Register(r.Context(), RegisterInput{
		Email:    req.Email,
		Nom:      req.Nom,
		Password: req.Password,
		Role:     RoleClient,
	})
	if err != nil {
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == ErrIdentifiants {
			server.WriteError(w, http.StatusUnauthorized, err.Error())
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) profil(w http.ResponseWriter, r *http.Request) {
	ai, ok := server.AuthFromContext(r.Context())
	if !ok {
		server.WriteError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	u, panels, err := h.svc.Profil(r.Context(), ai.Subject)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			server.WriteError(w, http.StatusNotFound, "profil inconnu")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"user":          u,
		"panels":        panels,
		"default_panel": DefaultPanel(u.Role),
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	users, total, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"users": users, "total": total})
}
