// Package models defines the domain types for Jera.
package models

import "time"

// DefaultTitle is assigned to goals created without an explicit title.
const DefaultTitle = "Untitled"

// ColorTransparent is the sentinel a goal carries when it occupies dates
// without contributing a visual fill. It is equivalent to no color at all.
const ColorTransparent = "transparent"

// UserID identifies a goal owner. The identity provider is opaque to this
// service; a UserID is whatever the auth layer resolved for the request.
type UserID string

// Goal is a user-owned planning item optionally anchored to a single date
// or a date range on the yearly calendar.
type Goal struct {
	ID        string    `json:"id"`
	OwnerID   UserID    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"` // opaque rich-text payload, never parsed server-side
	Color     string    `json:"color,omitempty"`
	Range     DateRange `json:"range"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Uncolored reports whether the goal contributes no fill when rendered.
// An absent color and the transparent sentinel are treated identically.
func (g *Goal) Uncolored() bool {
	return g.Color == "" || g.Color == ColorTransparent
}
