// Package models defines the domain types shared across repositories, services, and handlers.
package models

import "time"

// Book is the display shape of a catalog book, as surfaced in recommendation rows.
type Book struct {
	BookID        string  `json:"bookId"`
	Title         string  `json:"title"`
	Author        *string `json:"author"`
	Genre         *string `json:"genre"`
	Description   *string `json:"description"`
	CoverURL      *string `json:"coverUrl"`
	PageCount     *int    `json:"pageCount,omitempty"`
	PublishedDate *string `json:"publishedDate,omitempty"`
	ISBN          *string `json:"isbn,omitempty"`
}

// BookMetadata is the subset of book fields used to build embedding input text
// and stored alongside the vector for display.
type BookMetadata struct {
	Title       string  `json:"title"`
	Author      *string `json:"author"`
	Genre       *string `json:"genre"`
	Description *string `json:"description"`
	CoverURL    *string `json:"coverUrl"`
}

// BookEmbedding is one persisted embedding row: at most one per book_id.
type BookEmbedding struct {
	BookID      string    `json:"book_id"`
	Embedding   []float32 `json:"embedding"`
	Title       string    `json:"title"`
	Author      *string   `json:"author"`
	Genre       *string   `json:"genre"`
	Description *string   `json:"description"`
	CoverURL    *string   `json:"cover_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserBook is a book on one of the user's shelves, optionally rated.
// Shelf data is owned by the external shelf CRUD; this core only reads it.
// Rating is on a half-step scale {0.5, 1, ..., 5} or nil when the book is
// shelved but unrated.
type UserBook struct {
	BookID string   `json:"book_id"`
	Title  string   `json:"title"`
	Author *string  `json:"author"`
	Rating *float64 `json:"rating"`
}

// Rated reports whether the book carries a rating.
func (b UserBook) Rated() bool {
	return b.Rating != nil
}
