package handlers

import (
	"net/http"

	"github.com/baharkarakas/tradebinder/internal/api/httpx"
	"github.com/baharkarakas/tradebinder/internal/models"
	"github.com/baharkarakas/tradebinder/internal/services"
)

type CatalogHandler struct {
	cards    *services.CardService
	editions *services.EditionService
}

func NewCatalogHandler(cards *services.CardService, editions *services.EditionService) *CatalogHandler {
	return &CatalogHandler{cards: cards, editions: editions}
}

func (h *CatalogHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := models.CardFilter{
		Name:      q.str("name"),
		ManaCost:  q.str("manaCost"),
		Type:      q.str("type"),
		Subtype:   q.str("subtype"),
		Rarity:    q.str("rarity"),
		Artist:    q.str("artist"),
		Text:      q.str("text"),
		IsActive:  q.boolean("isActive"),
		PageQuery: q.page(),
	}
	if q.err != nil {
		httpx.WriteAppError(w, r, q.err)
		return
	}
	page, err := h.cards.FindAll(r.Context(), f)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	term, limit := q.str("q"), q.integer("limit")
	if q.err != nil {
		httpx.WriteAppError(w, r, q.err)
		return
	}
	cards, err := h.cards.Search(r.Context(), term, limit)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cards)
}

func (h *CatalogHandler) CardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cards.Stats(r.Context())
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *CatalogHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	c, err := h.cards.FindOne(r.Context(), id)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) ListEditions(w http.ResponseWriter, r *http.Request) {
	eds, err := h.editions.FindAll(r.Context())
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, eds)
}

func (h *CatalogHandler) GetEdition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	e, err := h.editions.FindOne(r.Context(), id)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, e)
}
