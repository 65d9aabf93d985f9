package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservaid/reservaid/internal/common/config"
)

func newTestMux(cfg config.SumUpConfig) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(NewClient(cfg), nil, nil).RegisterRoutes(mux)
	return mux
}

func TestCheckoutMissingFields(t *testing.T) {
	mux := newTestMux(config.SumUpConfig{APIKey: "k", MerchantID: "m"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sumup/checkout",
		strings.NewReader(`{"montant_cents": 5000}`))
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutMissingCredentials(t *testing.T) {
	mux := newTestMux(config.SumUpConfig{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sumup/checkout",
		strings.NewReader(`{"commande_id":"c-1","montant_cents":5000}`))
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["details"], "credentials")
}

func TestCheckoutProviderErrorMirrored(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error_code":"CARD_DECLINED"}`))
	}))
	defer provider.Close()

	mux := newTestMux(config.SumUpConfig{APIKey: "k", MerchantID: "m", APIBaseURL: provider.URL})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sumup/checkout",
		strings.NewReader(`{"commande_id":"c-1","montant_cents":5000}`))
	mux.ServeHTTP(rec, req)

	// The provider's status and body pass through untouched.
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.JSONEq(t, `{"error_code":"CARD_DECLINED"}`, rec.Body.String())
}

func TestCheckoutSuccess(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkouts", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 50.0, body["amount"])
		assert.Equal(t, "EUR", body["currency"])
		assert.Equal(t, "m", body["merchant_code"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"chk-123","status":"PENDING"}`))
	}))
	defer provider.Close()

	mux := newTestMux(config.SumUpConfig{APIKey: "k", MerchantID: "m", APIBaseURL: provider.URL})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sumup/checkout",
		strings.NewReader(`{"commande_id":"c-1","montant_cents":5000}`))
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "chk-123", body["id"])
	assert.Equal(t, "https://pay.sumup.com/b2c/chk-123", body["checkout_url"])
}

func TestCheckoutProviderURLPreferred(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"chk-456","hosted_checkout_url":"https://checkout.sumup.com/pay/chk-456"}`))
	}))
	defer provider.Close()

	mux := newTestMux(config.SumUpConfig{APIKey: "k", MerchantID: "m", APIBaseURL: provider.URL})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sumup/checkout",
		strings.NewReader(`{"commande_id":"c-1","montant_cents":5000}`))
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// The provider's own URL wins over the synthesized one.
	assert.Equal(t, "https://checkout.sumup.com/pay/chk-456", body["checkout_url"])
}

func TestHealth(t *testing.T) {
	mux := newTestMux(config.SumUpConfig{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}
