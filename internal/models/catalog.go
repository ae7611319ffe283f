package models

import "time"

type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type LocationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Card struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ManaCost   string    `json:"manaCost,omitempty"`
	Type       string    `json:"type,omitempty"`
	Subtype    string    `json:"subtype,omitempty"`
	Rarity     string    `json:"rarity,omitempty"`
	Text       string    `json:"text,omitempty"`
	FlavorText string    `json:"flavorText,omitempty"`
	Power      string    `json:"power,omitempty"`
	Toughness  string    `json:"toughness,omitempty"`
	Loyalty    *int      `json:"loyalty,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	Artist     string    `json:"artist,omitempty"`
	Number     string    `json:"number,omitempty"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CardSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ManaCost string `json:"manaCost,omitempty"`
	Type     string `json:"type,omitempty"`
	Rarity   string `json:"rarity,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (c Card) Summary() CardSummary {
	return CardSummary{ID: c.ID, Name: c.Name, ManaCost: c.ManaCost, Type: c.Type, Rarity: c.Rarity, ImageURL: c.ImageURL}
}

type CardFilter struct {
	Name     string
	ManaCost string
	Type     string
	Subtype  string
	Rarity   string
	Artist   string
	Text     string
	IsActive *bool
	PageQuery
}

var CardSortColumns = []string{"name", "manaCost", "type", "rarity", "createdAt"}

type Edition struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	HasFoil     bool       `json:"hasFoil"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type EditionSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	HasFoil     bool       `json:"hasFoil"`
}

func (e Edition) Summary() EditionSummary {
	return EditionSummary{ID: e.ID, Name: e.Name, ReleaseDate: e.ReleaseDate, HasFoil: e.HasFoil}
}

// Stats is the active/inactive breakdown served by the stats endpoints.
type Stats struct {
	Total    int64 `json:"total" msgpack:"total"`
	Active   int64 `json:"active" msgpack:"active"`
	Inactive int64 `json:"inactive" msgpack:"inactive"`
}
