package commande

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/audit"
	"github.com/reservaid/reservaid/internal/common/server"
	"github.com/reservaid/reservaid/internal/creneau"
)

// Handler is the HTTP transport for orders.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the order endpoints.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/commandes/reserver", h.reserver)
	mux.HandleFunc("GET /api/commandes", h.list)
	mux.HandleFunc("GET /api/commandes/{id}", h.get)
	mux.HandleFunc("GET /api/commandes/billet/{numero}", h.rechercherBillet)
	mux.HandleFunc("POST /api/commandes/{id}/paiement/succes", h.paiementSucces)
	mux.HandleFunc("POST /api/commandes/{id}/paiement/echec", h.paiementEchec)
	mux.HandleFunc("POST /api/commandes/{id}/annuler", h.annuler)
	mux.HandleFunc("POST /api/commandes/{id}/valider", h.valider)
	mux.HandleFunc("POST /api/commandes/{id}/refuser", h.refuser)
	mux.HandleFunc("POST /api/commandes/{id}/boucler", h.boucler)
	mux.HandleFunc("POST /api/commandes/{id}/terminer", h.terminer)
	mux.HandleFunc("POST /api/commandes/{id}/creneau", h.assignerCreneau)
	mux.HandleFunc("DELETE /api/commandes/{id}/creneau", h.retirerCreneau)
	mux.HandleFunc("POST /api/commandes/creneau/lot", h.assignerCreneauLot)
	mux.HandleFunc("POST /api/admin/reset", h.reset)
}

func actorFrom(r *http.Request) audit.Actor {
	ai, _ := server.AuthFromContext(r.Context())
	return audit.Actor{ID: ai.Subject, Nom: ai.Nom, Role: ai.Role}
}

// guardOwnCommande blocks customers from acting on orders they do not own.
// Staff roles pass through; RBAC already decided whether they may reach the
// route at all. Returns false after writing the response.
func (h *Handler) guardOwnCommande(w http.ResponseWriter, r *http.Request) bool {
	ai, _ := server.AuthFromContext(r.Context())
	if ai.Role != "client" {
		return true
	}
	o, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return false
	}
	if o.UserID != ai.Subject {
		server.WriteError(w, http.StatusForbidden, "permission denied")
		return false
	}
	return true
}

// writeDomainError maps service errors onto HTTP statuses. Business-rule
// blocks are expected outcomes: 4xx with a stable message, never 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBilletInconnu), errors.Is(err, gorm.ErrRecordNotFound):
		server.WriteError(w, http.StatusNotFound, ErrBilletInconnu.Error())
	case errors.Is(err, ErrBilletAnnule),
		errors.Is(err, ErrDejaBouclee),
		errors.Is(err, ErrSansCreneau),
		errors.Is(err, ErrSoldeRestant),
		errors.Is(err, creneau.ErrComplet):
		server.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrConfirmationInvalide):
		server.WriteError(w, http.StatusBadRequest, err.Error())
	case strings.Contains(err.Error(), "invalid commande status transition"):
		server.WriteError(w, http.StatusConflict, err.Error())
	case strings.Contains(err.Error(), "required"),
		strings.Contains(err.Error(), "inconnu"):
		server.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		server.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) reserver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nom       string `json:"nom"`
		Telephone string `json:"telephone"`
		Email     string `json:"email"`
		TarifID   string `json:"tarif_id"`
		CreneauID string `json:"creneau_id"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	ai, _ := server.AuthFromContext(r.Context())
	o, err := h.svc.Reserver(r.Context(), ReserverInput{
		Nom:       req.Nom,
		Telephone: req.Telephone,
		Email:     req.Email,
		TarifID:   req.TarifID,
		CreneauID: req.CreneauID,
		UserID:    ai.Subject,
		Actor:     actorFrom(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{
		UserID:    q.Get("user_id"),
		CreneauID: q.Get("creneau_id"),
		Recherche: q.Get("recherche"),
	}

	// A customer only ever lists their own orders, whatever the query says.
	ai, _ := server.AuthFromContext(r.Context())
	if ai.Role == "client" {
		f.UserID = ai.Subject
	}
	if st := q.Get("statut"); st != "" {
		f.Statut = Statut(st)
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = v
	}

	commandes, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"commandes": commandes, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// A customer only sees their own orders.
	ai, _ := server.AuthFromContext(r.Context())
	if ai.Role == "client" && o.UserID != ai.Subject {
		server.WriteError(w, http.StatusForbidden, "permission denied")
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"commande":       o,
		"statut_affiche": StatutAffiche(o),
		"balance_due":    BalanceDue(o.PrixTotal, o.MontantPaye),
	})
}

func (h *Handler) rechercherBillet(w http.ResponseWriter, r *http.Request) {
	numero, err := strconv.Atoi(r.PathValue("numero"))
	if err != nil {
		server.WriteError(w, http.StatusBadRequest, "numero must be an integer")
		return
	}
	res, err := h.svc.RechercherParBillet(r.Context(), numero)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) paiementSucces(w http.ResponseWriter, r *http.Request) {
	if !h.guardOwnCommande(w, r) {
		return
	}
	var req struct {
		Montant float64 `json:"montant"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	o, err := h.svc.MarquerPaiementSucces(r.Context(), r.PathValue("id"), req.Montant)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) paiementEchec(w http.ResponseWriter, r *http.Request) {
	if !h.guardOwnCommande(w, r) {
		return
	}
	o, err := h.svc.MarquerPaiementEchec(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) annuler(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Annuler(r.Context(), r.PathValue("id"), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) valider(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Valider(r.Context(), r.PathValue("id"), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) refuser(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Refuser(r.Context(), r.PathValue("id"), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) boucler(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Boucler(r.Context(), r.PathValue("id"), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) terminer(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Terminer(r.Context(), r.PathValue("id"), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) assignerCreneau(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreneauID string `json:"creneau_id"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	o, err := h.svc.AssignerCreneau(r.Context(), r.PathValue("id"), req.CreneauID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) assignerCreneauLot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommandeIDs []string `json:"commande_ids"`
		CreneauID   string   `json:"creneau_id"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	out, err := h.svc.AssignerCreneauLot(r.Context(), req.CommandeIDs, req.CreneauID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"commandes": out})
}

func (h *Handler) retirerCreneau(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.RetirerCreneau(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirmation string `json:"confirmation"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.svc.ResetTout(r.Context(), req.Confirmation, actorFrom(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
