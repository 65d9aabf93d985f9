package creneau

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/common/server"
)

// Handler is the HTTP transport for slots.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/creneaux", h.list)
	mux.HandleFunc("POST /api/creneaux", h.create)
	mux.HandleFunc("DELETE /api/creneaux/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListAvecPlaces(r.Context())
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"creneaux": out})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date       string `json:"date"`
		HeureDebut string `json:"heure_debut"`
		HeureFin   string `json:"heure_fin"`
		Capacite   int    `json:"capacite"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	c, err := h.svc.Create(r.Context(), CreateInput{
		Date:       req.Date,
		HeureDebut: req.HeureDebut,
		HeureFin:   req.HeureFin,
		Capacite:   req.Capacite,
	})
	if err != nil {
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "must be") {
			server.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSafely(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, http.StatusNotFound, "creneau inconnu")
			return
		}
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
