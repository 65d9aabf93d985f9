package caisse

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/audit"
	"github.com/reservaid/reservaid/internal/commande"
	"github.com/reservaid/reservaid/internal/common/server"
)

// Handler is the HTTP transport for the till.
type Handler struct {
	svc  *Service
	repo *Repo
}

func NewHandler(svc *Service, repo *Repo) *Handler {
	return &Handler{svc: svc, repo: repo}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/paiements", h.ajouter)
	mux.HandleFunc("POST /api/paiements/{id}/annuler", h.annuler)
	mux.HandleFunc("GET /api/paiements", h.list)
	mux.HandleFunc("GET /api/commandes/{id}/paiements", h.listByCommande)
	mux.HandleFunc("POST /api/caisse/cloture", h.cloture)
}

func actorFrom(r *http.Request) audit.Actor {
	ai, _ := server.AuthFromContext(r.Context())
	return audit.Actor{ID: ai.Subject, Nom: ai.Nom, Role: ai.Role}
}

func writeTillError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, commande.ErrBilletInconnu), errors.Is(err, gorm.ErrRecordNotFound):
		server.WriteError(w, http.StatusNotFound, "paiement ou commande inconnu")
	case errors.Is(err, ErrConfirmationRequise):
		server.WriteError(w, http.StatusBadRequest, err.Error())
	case strings.Contains(err.Error(), "deja annule"):
		server.WriteError(w, http.StatusConflict, err.Error())
	case strings.Contains(err.Error(), "required"),
		strings.Contains(err.Error(), "must be"),
		strings.Contains(err.Error(), "invalid period"):
		server.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		server.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) ajouter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommandeID string  `json:"commande_id"`
		Montant    float64 `json:"montant"`
		Methode    string  `json:"methode"`
		Details    string  `json:"details"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := h.svc.Ajouter(r.Context(), AjouterInput{
		CommandeID: req.CommandeID,
		Montant:    req.Montant,
		Methode:    req.Methode,
		Details:    req.Details,
		Actor:      actorFrom(r),
	})
	if err != nil {
		writeTillError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) annuler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Raison   string `json:"raison"`
		Confirme bool   `json:"confirme"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := h.svc.Annuler(r.Context(), r.PathValue("id"), req.Raison, req.Confirme, actorFrom(r))
	if err != nil {
		writeTillError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	paiements, total, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		writeTillError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"paiements": paiements, "total": total})
}

func (h *Handler) listByCommande(w http.ResponseWriter, r *http.Request) {
	paiements, err := h.repo.ListByCommande(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTillError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"paiements": paiements})
}

func (h *Handler) cloture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OperatorID string             `json:"operator_id"`
		From       time.Time          `json:"from"`
		To         time.Time          `json:"to"`
		Compte     map[string]float64 `json:"compte"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	res, err := h.svc.Cloturer(r.Context(), ClotureInput{
		OperatorID: req.OperatorID,
		From:       req.From,
		To:         req.To,
		Compte:     req.Compte,
		Actor:      actorFrom(r),
	})
	if err != nil {
		writeTillError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, res)
}
