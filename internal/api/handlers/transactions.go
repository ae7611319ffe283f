package handlers

import (
	"net/http"

	"github.com/baharkarakas/tradebinder/internal/api/httpx"
	"github.com/baharkarakas/tradebinder/internal/models"
	"github.com/baharkarakas/tradebinder/internal/services"
)

type TransactionHandler struct {
	svc *services.TransactionService
}

func NewTransactionHandler(svc *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	var req services.CreateTransactionInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	t, err := h.svc.Create(r.Context(), p, req)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	q := newQuery(r)
	f := models.TransactionFilter{
		Role:      models.TransactionRole(q.str("type")),
		Status:    models.TransactionStatus(q.str("status")),
		ListingID: q.id("listingId"),
		BuyerID:   q.id("buyerId"),
		SellerID:  q.id("sellerId"),
		PageQuery: q.page(),
	}
	if q.err != nil {
		httpx.WriteAppError(w, r, q.err)
		return
	}
	page, err := h.svc.FindAll(r.Context(), p, f)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	t, err := h.svc.FindOne(r.Context(), p, id)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

type txnStatusReq struct {
	Status         models.TransactionStatus `json:"status"`
	TrackingNumber string                   `json:"trackingNumber"`
}

func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	var req txnStatusReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	t, err := h.svc.UpdateStatus(r.Context(), p, id, req.Status, req.TrackingNumber)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

type completeReq struct {
	TrackingNumber string `json:"trackingNumber"`
}

func (h *TransactionHandler) Complete(w http.ResponseWriter, r *http.Request) {
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
	var req completeReq
	// the body is optional
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			httpx.WriteAppError(w, r, err)
			return
		}
	}
	t, err := h.svc.Complete(r.Context(), p, id, req.TrackingNumber)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
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
	t, err := h.svc.Cancel(r.Context(), p, id)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}
