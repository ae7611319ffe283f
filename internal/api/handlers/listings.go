package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/tradebinder/internal/api/httpx"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/models"
	"github.com/baharkarakas/tradebinder/internal/services"
)

type ListingHandler struct {
	svc *services.ListingService
}

func NewListingHandler(svc *services.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

func listingFilter(r *http.Request) (models.ListingFilter, error) {
	q := newQuery(r)
	f := models.ListingFilter{
		CardName:   q.str("cardName"),
		CardID:     q.id("cardId"),
		EditionID:  q.id("editionId"),
		LocationID: q.id("locationId"),
		Condition:  models.Condition(q.str("condition")),
		IsFoil:     q.boolean("isFoil"),
		MinPrice:   q.number("minPrice"),
		MaxPrice:   q.number("maxPrice"),
		IsActive:   q.boolean("isActive"),
		PageQuery:  q.page(),
	}
	return f, q.err
}

// viewerLocation is the caller's location when a token was supplied on a public route.
func viewerLocation(r *http.Request) string {
	p, _ := auth.PrincipalFrom(r.Context())
	return p.LocationID
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	var req services.CreateListingInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	l, err := h.svc.Create(r.Context(), p, req)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, l)
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := listingFilter(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	page, err := h.svc.FindAll(r.Context(), f, viewerLocation(r))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// Available serves both /listings/available and /listings/search.
func (h *ListingHandler) Available(w http.ResponseWriter, r *http.Request) {
	f, err := listingFilter(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	page, err := h.svc.FindAvailable(r.Context(), f, viewerLocation(r))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *ListingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	p, err := actor(r)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	q := newQuery(r)
	pq := q.page()
	if q.err != nil {
		httpx.WriteAppError(w, r, q.err)
		return
	}
	page, err := h.svc.FindByOwner(r.Context(), p, pq)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *ListingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	l, err := h.svc.FindOne(r.Context(), id)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

type updateListingReq struct {
	LocationID  *string           `json:"locationId"`
	Condition   *models.Condition `json:"condition"`
	IsFoil      *bool             `json:"isFoil"`
	Price       *decimal.Decimal  `json:"price"`
	Quantity    *int              `json:"quantity"`
	Description *string           `json:"description"`
	Images      []string          `json:"images"`
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req updateListingReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	l, err := h.svc.Update(r.Context(), p, id, models.ListingPatch(req))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

type listingStatusReq struct {
	Status models.ListingStatus `json:"status"`
}

func (h *ListingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	var req listingStatusReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	l, err := h.svc.UpdateStatus(r.Context(), p, id, req.Status)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.Remove(r.Context(), p, id); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Message("Listing deleted successfully"))
}
