package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/config"
	"github.com/baharkarakas/tradebinder/internal/models"
	"github.com/baharkarakas/tradebinder/internal/repository/memory"
	"github.com/baharkarakas/tradebinder/internal/services"
)

type testAPI struct {
	t     *testing.T
	h     http.Handler
	store *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	auth.HashCost = bcrypt.MinCost
	store := memory.NewStore()
	tm := auth.NewTokenManager("access", "refresh", "tradebinder", 15*time.Minute, time.Hour)
	cfg := config.Config{APIPrefix: "/api", CORSOrigins: []string{"*"}}
	h := NewRouter(cfg, Services{
		Tokens:       tm,
		Auth:         services.NewAuthService(store, tm),
		Cards:        services.NewCardService(store, nil),
		Editions:     services.NewEditionService(store),
		Locations:    services.NewLocationService(store, nil),
		Listings:     services.NewListingService(store, nil),
		Transactions: services.NewTransactionService(store, nil, nil),
		Messages:     services.NewMessageService(store),
		Images:       services.NewImageService(nil, 1<<20),
	})
	return &testAPI{t: t, h: h, store: store}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testAPI) register(name string, locationID string) services.AuthResult {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": name + "@example.com", "username": name, "password": "secret1", "locationId": locationID,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[services.AuthResult](a.t, rec)
}

func TestRouter_PurchaseFlow(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()
	loc, err := a.store.Locations().Create(ctx, models.Location{Name: "Bilbao", IsActive: true})
	require.NoError(t, err)
	card, err := a.store.Cards().Create(ctx, models.Card{Name: "Sol Ring", IsActive: true})
	require.NoError(t, err)
	ed, err := a.store.Editions().Create(ctx, models.Edition{Name: "Commander"})
	require.NoError(t, err)

	seller := a.register("seller", loc.ID)
	buyer := a.register("buyer", "")

	rec := a.do(http.MethodPost, "/api/listings", seller.AccessToken, map[string]any{
		"cardId": card.ID, "editionId": ed.ID, "locationId": loc.ID,
		"condition": "mint", "price": 150.00, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	listing := decode[models.Listing](t, rec)
	assert.Contains(t, rec.Body.String(), `"price":150`)

	rec = a.do(http.MethodGet, "/api/listings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.Page[models.Listing]](t, rec).Total)

	rec = a.do(http.MethodPost, "/api/transactions", buyer.AccessToken, map[string]any{
		"listingId": listing.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	txn := decode[models.Transaction](t, rec)
	assert.Equal(t, models.TxnPending, txn.Status)

	rec = a.do(http.MethodGet, "/api/listings", "", nil)
	assert.Zero(t, decode[models.Page[models.Listing]](t, rec).Total)

	rec = a.do(http.MethodPost, "/api/transactions", buyer.AccessToken, map[string]any{
		"listingId": listing.ID, "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/api/messages/unread/count", seller.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())

	rec = a.do(http.MethodPut, "/api/transactions/"+txn.ID+"/status", buyer.AccessToken, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/api/transactions/"+txn.ID+"/cancel", seller.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/listings/"+listing.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[models.Listing](t, rec).Quantity)

	rec = a.do(http.MethodDelete, "/api/listings/"+listing.ID, seller.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_AuthAndErrors(t *testing.T) {
	a := newTestAPI(t)
	user := a.register("jace", "")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"me_without_token", http.MethodGet, "/api/auth/me", "", nil, http.StatusUnauthorized},
		{"me", http.MethodGet, "/api/auth/me", user.AccessToken, nil, http.StatusOK},
		{"profile", http.MethodGet, "/api/profile", user.AccessToken, nil, http.StatusOK},
		{"refresh_as_access", http.MethodGet, "/api/auth/me", user.RefreshToken, nil, http.StatusUnauthorized},
		{"duplicate_register", http.MethodPost, "/api/auth/register", "", map[string]string{"email": "jace@example.com", "username": "other", "password": "secret1"}, http.StatusConflict},
		{"bad_login", http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jace@example.com", "password": "nope123"}, http.StatusUnauthorized},
		{"unknown_field", http.MethodPost, "/api/auth/login", "", map[string]string{"mail": "x"}, http.StatusBadRequest},
		{"refresh", http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": user.RefreshToken}, http.StatusOK},
		{"card_bad_id", http.MethodGet, "/api/cards/42", "", nil, http.StatusBadRequest},
		{"card_missing", http.MethodGet, "/api/cards/00000000-0000-0000-0000-000000000000", "", nil, http.StatusNotFound},
		{"bad_query", http.MethodGet, "/api/listings?minPrice=cheap", "", nil, http.StatusBadRequest},
		{"search_empty", http.MethodGet, "/api/cards/search", "", nil, http.StatusOK},
		{"stats_requires_auth", http.MethodGet, "/api/listings/stats", "", nil, http.StatusUnauthorized},
		{"stats", http.MethodGet, "/api/listings/stats", user.AccessToken, nil, http.StatusOK},
		{"images_not_configured", http.MethodPost, "/api/images", user.AccessToken, nil, http.StatusServiceUnavailable},
		{"health", http.MethodGet, "/health", "", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "bad", "username": "x", "password": "1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "bad_request", body["code"])
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["details"])
}
