package export

import (
	"net/http"

	"github.com/reservaid/reservaid/internal/common/server"
)

// Handler serves the CSV downloads.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/export/commandes.csv", h.commandes)
	mux.HandleFunc("GET /api/export/paiements.csv", h.paiements)
}

func (h *Handler) commandes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="commandes.csv"`)
	if err := h.svc.Commandes(r.Context(), w); err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) paiements(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="paiements.csv"`)
	if err := h.svc.Paiements(r.Context(), w); err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
