package handlers

import (
	"net/http"

	"github.com/baharkarakas/tradebinder/internal/api/httpx"
	"github.com/baharkarakas/tradebinder/internal/services"
)

type MessageHandler struct {
	svc *services.MessageService
}

func NewMessageHandler(svc *services.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	var req services.CreateMessageInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	m, err := h.svc.Create(r.Context(), p, req)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	convs, err := h.svc.Conversations(r.Context(), p)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, convs)
}

func (h *MessageHandler) ByListing(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	listingID, err := pathID(r, "listingId")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	msgs, err := h.svc.FindByListing(r.Context(), p, listingID)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	m, err := h.svc.MarkAsRead(r.Context(), p, id)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *MessageHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	listingID, err := pathID(r, "listingId")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	n, err := h.svc.MarkAllAsRead(r.Context(), p, listingID)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "All messages have been marked as read",
		"count":   n,
	})
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	n, err := h.svc.UnreadCount(r.Context(), p)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}
