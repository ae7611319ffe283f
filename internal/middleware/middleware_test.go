package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/models"
)

func TestLimiter_PerClient(t *testing.T) {
	l := NewLimiter(2)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "buckets are per client")

	clock = clock.Add(500 * time.Millisecond)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	clock = clock.Add(2 * time.Minute)
	assert.True(t, l.Allow("c"))
	l.mu.Lock()
	assert.Len(t, l.buckets, 1, "idle buckets are swept")
	l.mu.Unlock()
}

func TestRateLimit_Returns429(t *testing.T) {
	h := RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

type fakeUsers map[string]*models.User

func (f fakeUsers) ValidateUser(_ context.Context, id string) (*models.User, error) {
	return f[id], nil
}

func TestAuthenticator(t *testing.T) {
	tm := auth.NewTokenManager("a", "r", "tradebinder", time.Minute, time.Hour)
	loc := "loc-1"
	users := fakeUsers{"u1": {ID: "u1", Username: "nissa", LocationID: &loc}}
	a := NewAuthenticator(tm, users)

	access, _, err := tm.GenerateAccess("u1")
	require.NoError(t, err)
	ghost, _, err := tm.GenerateAccess("u2")
	require.NoError(t, err)
	pair, err := tm.GeneratePair("u1")
	require.NoError(t, err)

	var seen auth.Principal
	var seenOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, seenOK = auth.PrincipalFrom(r.Context())
	})

	tests := []struct {
		name      string
		header    string
		required  int
		principal bool
	}{
		{"valid", "Bearer " + access, http.StatusOK, true},
		{"lowercase_scheme", "bearer " + access, http.StatusOK, true},
		{"missing", "", http.StatusUnauthorized, false},
		{"garbage", "Bearer nope", http.StatusUnauthorized, false},
		{"refresh_token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, false},
		{"unknown_user", "Bearer " + ghost, http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			seen, seenOK = auth.Principal{}, false
			rec := httptest.NewRecorder()
			a.Required(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.required, rec.Code)

			seen, seenOK = auth.Principal{}, false
			rec = httptest.NewRecorder()
			a.Optional(next).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.principal, seenOK)
			if tt.principal {
				assert.Equal(t, "u1", seen.UserID)
				assert.Equal(t, "loc-1", seen.LocationID)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, got, rec.Header().Get(RequestIDHeader))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, incoming, got)

	req.Header.Set(RequestIDHeader, "not-a-uuid\nforged")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "not-a-uuid\nforged", got)
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
	assert.NotContains(t, rec.Body.String(), "requestId")
}

func TestRecover_EchoesRequestID(t *testing.T) {
	h := RequestID(Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body.Code)
	id := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, body.Details["requestId"])
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic(http.ErrAbortHandler) }))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
