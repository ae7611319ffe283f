package handlers

import (
	"net/http"

	"github.com/baharkarakas/tradebinder/internal/api/httpx"
	"github.com/baharkarakas/tradebinder/internal/services"
)

type AuthHandler struct {
	svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	u, err := h.svc.Me(r.Context(), p)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// Profile is the legacy GET /profile envelope around Me.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	u, err := h.svc.Me(r.Context(), p)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Profile accessed successfully",
		"user":    u.Summary(),
	})
}
