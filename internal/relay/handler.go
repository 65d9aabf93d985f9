package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/reservaid/reservaid/internal/common/logger"
	"github.com/reservaid/reservaid/internal/common/middleware"
	"github.com/reservaid/reservaid/internal/common/server"
)

// Handler is the relay's HTTP surface: one checkout endpoint plus a health
// probe. The checkout route is rate limited; the SPA retries on 429.
type Handler struct {
	client  *Client
	limiter *middleware.PerClient
	log     logger.Logger
}

func NewHandler(client *Client, limiter *middleware.PerClient, log logger.Logger) *Handler {
	return &Handler{client: client, limiter: limiter, log: log}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/sumup/checkout",
		middleware.RateLimit(h.limiter, http.HandlerFunc(h.checkout)))
	mux.HandleFunc("GET /health", h.health)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommandeID   string `json:"commande_id"`
		MontantCents int64  `json:"montant_cents"`
		RedirectURL  string `json:"redirect_url"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.CommandeID) == "" || req.MontantCents <= 0 {
		server.WriteError(w, http.StatusBadRequest, "commande_id and montant_cents required")
		return
	}

	resp, err := h.client.CreateCheckout(r.Context(), CheckoutInput{
		CommandeID:   req.CommandeID,
		MontantCents: req.MontantCents,
		RedirectURL:  req.RedirectURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCredentialsManquants):
			server.WriteErrorDetails(w, http.StatusInternalServerError,
				"payment provider unavailable", err.Error())
		case errors.Is(err, middleware.ErrCircuitOpen):
			server.WriteError(w, http.StatusServiceUnavailable, "payment provider unavailable")
		default:
			if h.log != nil {
				h.log.Errorf("sumup checkout call failed: %v", err)
			}
			server.WriteError(w, http.StatusBadGateway, "payment provider unreachable")
		}
		return
	}

	// Provider errors are mirrored verbatim so the SPA can show the real
	// reason (declined card, bad amount).
	if resp.Status < 200 || resp.Status > 299 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		_, _ = w.Write(resp.Body)
		return
	}

	var provider map[string]any
	if err := json.Unmarshal(resp.Body, &provider); err != nil {
		server.WriteError(w, http.StatusBadGateway, "invalid provider response")
		return
	}
	// Hosted checkout page; the SPA redirects the customer there. Prefer
	// the URL the provider hands back, synthesize one only when absent.
	if _, ok := provider["checkout_url"].(string); !ok {
		if u, ok := provider["hosted_checkout_url"].(string); ok {
			provider["checkout_url"] = u
		} else if id, ok := provider["id"].(string); ok {
			provider["checkout_url"] = "https://pay.sumup.com/b2c/" + id
		}
	}
	server.WriteJSON(w, http.StatusOK, provider)
}
