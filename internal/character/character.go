// Package character defines the wiki's character records.
//
// Records are created by decoding remote API responses and are treated as
// immutable once stored. Reloads replace them wholesale.
package character

import "strings"

// Known status values reported by the remote API.
const (
	StatusAlive   = "Alive"
	StatusDead    = "Dead"
	StatusUnknown = "unknown"
)

// Place is a named origin or location. Only the name is kept.
type Place struct {
	Name string `json:"name"`
}

// Character is one fictional character fetched from the remote API.
type Character struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Species  string `json:"species"`
	Gender   string `json:"gender"`
	Origin   Place  `json:"origin"`
	Location Place  `json:"location"`
	Image    string `json:"image"`
}

// StatusClass returns a CSS modifier for the character's status.
// Anything outside the known values renders as unknown.
func (c Character) StatusClass() string {
	switch strings.ToLower(c.Status) {
	case "alive":
		return "status--alive"
	case "dead":
		return "status--dead"
	default:
		return "status--unknown"
	}
}

// PageInfo describes the pagination state of a list response.
type PageInfo struct {
	Count int    `json:"count"`
	Pages int    `json:"pages"`
	Page  int    `json:"page"`
	Next  string `json:"next,omitempty"`
	Prev  string `json:"prev,omitempty"`
}

// HasNext reports whether a following page exists.
func (p PageInfo) HasNext() bool {
	return p.Next != ""
}

// HasPrev reports whether a preceding page exists.
func (p PageInfo) HasPrev() bool {
	return p.Prev != ""
}

// Page is one page of characters from the list endpoint.
type Page struct {
	Info    PageInfo    `json:"info"`
	Results []Character `json:"results"`
}
