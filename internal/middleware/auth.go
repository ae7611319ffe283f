package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baharkarakas/tradebinder/internal/api/httpx"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/logger"
	"github.com/baharkarakas/tradebinder/internal/models"
)

// UserValidator resolves the subject of an access token to an active user, or nil.
type UserValidator interface {
	ValidateUser(ctx context.Context, id string) (*models.User, error)
}

type Authenticator struct {
	tm    *auth.TokenManager
	users UserValidator
}

func NewAuthenticator(tm *auth.TokenManager, users UserValidator) *Authenticator {
	return &Authenticator{tm: tm, users: users}
}

func bearerToken(r *http.Request) (string, bool) {
	ah := r.Header.Get("Authorization")
	if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(ah[len("Bearer "):])
	return token, token != ""
}

// principal validates the bearer token. ok is false when the request carries no usable credentials.
func (a *Authenticator) principal(r *http.Request) (auth.Principal, bool, error) {
	token, ok := bearerToken(r)
	if !ok {
		return auth.Principal{}, false, nil
	}
	claims, err := a.tm.ParseAccess(token)
	if err != nil {
		return auth.Principal{}, false, nil
	}
	u, err := a.users.ValidateUser(r.Context(), claims.UserID())
	if err != nil || u == nil {
		return auth.Principal{}, false, err
	}
	p := auth.Principal{UserID: u.ID, Email: u.Email, Username: u.Username}
	if u.LocationID != nil {
		p.LocationID = *u.LocationID
	}
	return p, true, nil
}

func (a *Authenticator) attach(r *http.Request, p auth.Principal) *http.Request {
	ctx := auth.WithPrincipal(r.Context(), p)
	ctx = logger.WithContext(ctx, logger.FromContext(ctx).With("user_id", p.UserID))
	return r.WithContext(ctx)
}

// Required rejects requests without a valid access token for an active user.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok, err := a.principal(r)
		if err != nil {
			httpx.WriteAppError(w, r, err)
			return
		}
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid or missing access token", nil)
			return
		}
		next.ServeHTTP(w, a.attach(r, p))
	})
}

// Optional attaches the principal when the request carries a valid token and lets anonymous requests through.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok, err := a.principal(r)
		if err != nil {
			logger.FromContext(r.Context()).Warn("optional auth lookup failed", "err", err)
		}
		if ok {
			r = a.attach(r, p)
		}
		next.ServeHTTP(w, r)
	})
}
