package commande

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservaid/reservaid/internal/audit"
	"github.com/reservaid/reservaid/internal/common/server"
	"github.com/reservaid/reservaid/internal/creneau"
)

func doAs(t *testing.T, mux *http.ServeMux, ai server.AuthInfo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req = req.WithContext(server.ContextWithAuth(req.Context(), ai))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPaiementSuccesClientProprietaireSeulement(t *testing.T) {
	svc, _ := newTestService(t)
	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)

	o := reserver(t, svc, ReserverInput{UserID: "u-1"})

	// Another customer cannot touch this order.
	rec := doAs(t, mux, server.AuthInfo{Subject: "u-2", Role: "client"},
		http.MethodPost, "/api/commandes/"+o.ID+"/paiement/succes", `{"montant":50}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner can.
	rec = doAs(t, mux, server.AuthInfo{Subject: "u-1", Role: "client"},
		http.MethodPost, "/api/commandes/"+o.ID+"/paiement/succes", `{"montant":50}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatutPaiementRecu, got.Statut)
	assert.Equal(t, 50.0, got.MontantPaye)
}

func TestPaiementEchecClientProprietaireSeulement(t *testing.T) {
	svc, _ := newTestService(t)
	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)

	o := reserver(t, svc, ReserverInput{UserID: "u-1"})

	rec := doAs(t, mux, server.AuthInfo{Subject: "u-2", Role: "client"},
		http.MethodPost, "/api/commandes/"+o.ID+"/paiement/echec", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatutEnAttente, got.Statut)
}

func TestTerminerRoute(t *testing.T) {
	svc, db := newTestService(t)
	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)

	require.NoError(t, db.Create(&creneau.Creneau{
		ID: "cr-1", Date: "2026-05-27", HeureDebut: "08:00", HeureFin: "09:00", Capacite: 5,
	}).Error)
	o := reserver(t, svc, ReserverInput{CreneauID: "cr-1"})

	ctx := context.Background()
	actor := audit.Actor{ID: "u-vendeur", Nom: "Vendeur", Role: "vendeur"}
	_, err := svc.MarquerPaiementSucces(ctx, o.ID, 250)
	require.NoError(t, err)
	_, err = svc.Boucler(ctx, o.ID, actor)
	require.NoError(t, err)

	rec := doAs(t, mux, server.AuthInfo{Subject: "u-vendeur", Role: "vendeur", Nom: "Vendeur"},
		http.MethodPost, "/api/commandes/"+o.ID+"/terminer", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatutTerminee, got.Statut)

	// Closing an untagged order is refused.
	autre := reserver(t, svc, ReserverInput{Nom: "Martin", Telephone: "0611111111"})
	rec = doAs(t, mux, server.AuthInfo{Subject: "u-vendeur", Role: "vendeur"},
		http.MethodPost, "/api/commandes/"+autre.ID+"/terminer", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListClientVoitSesCommandesSeulement(t *testing.T) {
	svc, _ := newTestService(t)
	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)

	reserver(t, svc, ReserverInput{UserID: "u-1"})
	reserver(t, svc, ReserverInput{Nom: "Martin", Telephone: "0611111111", UserID: "u-2"})

	// The query filter cannot widen the view past the caller's own orders.
	rec := doAs(t, mux, server.AuthInfo{Subject: "u-1", Role: "client"},
		http.MethodGet, "/api/commandes?user_id=u-2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Commandes []Commande `json:"commandes"`
		Total     int64      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Total)
	require.Len(t, body.Commandes, 1)
	assert.Equal(t, "u-1", body.Commandes[0].UserID)

	// Staff keep the full view.
	rec = doAs(t, mux, server.AuthInfo{Subject: "u-3", Role: "vendeur"},
		http.MethodGet, "/api/commandes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Total)
}
