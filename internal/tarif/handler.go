package tarif

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/common/server"
)

// Handler is the HTTP transport for the price catalog.
type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tarifs", h.list)
	mux.HandleFunc("POST /api/tarifs", h.create)
	mux.HandleFunc("PUT /api/tarifs/{id}", h.update)
	mux.HandleFunc("DELETE /api/tarifs/{id}", h.delete)
}

type tarifRequest struct {
	ID          string  `json:"id"`
	Nom         string  `json:"nom"`
	Description string  `json:"description"`
	Prix        float64 `json:"prix"`
}

func (req *tarifRequest) validate() error {
	req.ID = strings.ToUpper(strings.TrimSpace(req.ID))
	req.Nom = strings.TrimSpace(req.Nom)
	if req.ID == "" || req.Nom == "" {
		return errors.New("id and nom required")
	}
	if req.Prix <= 0 {
		return errors.New("prix must be positive")
	}
	return nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tarifs, err := h.repo.List(r.Context())
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"tarifs": tarifs})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req tarifRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := req.validate(); err != nil {
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	t := &Tarif{ID: req.ID, Nom: req.Nom, Description: req.Description, Prix: req.Prix}
	if err := h.repo.Create(r.Context(), t); err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req tarifRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.ID = r.PathValue("id")
	if err := req.validate(); err != nil {
		server.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.repo.GetByID(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "tarif inconnu")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	t.Nom = req.Nom
	t.Description = req.Description
	t.Prix = req.Prix
	if err := h.repo.Update(r.Context(), t); err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
