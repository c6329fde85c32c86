package main

import (
	"context"
	"time"
)

// Book represents a book record held by the store.
type Book struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Year       int       `json:"year"`
	Author     string    `json:"author"`
	Summary    string    `json:"summary"`
	Publisher  string    `json:"publisher"`
	PageCount  int       `json:"pageCount"`
	ReadPage   int       `json:"readPage"`
	Finished   bool      `json:"finished"`
	Reading    bool      `json:"reading"`
	InsertedAt time.Time `json:"insertedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BookSummary is the reduced view of a book returned when listing.
type BookSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

// BookPayload holds the client-supplied fields of a book
// creation or update request.
type BookPayload struct {
	Name      string `json:"name"`
	Year      int    `json:"year"`
	Author    string `json:"author"`
	Summary   string `json:"summary"`
	Publisher string `json:"publisher"`
	PageCount int    `json:"pageCount"`
	ReadPage  int    `json:"readPage"`
	Reading   bool   `json:"reading"`
}

// ToSummary projects the book to its listing view.
func (b Book) ToSummary() BookSummary {
	return BookSummary{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
}

// ChangeHook receives every committed change of the store. It runs under
// the store write lock so successive calls follow the order of the changes.
type ChangeHook func(ctx context.Context, qid string, book Book)

// BookStorer defines possible operations on the books collection.
type BookStorer interface {
	Create(ctx context.Context, payload BookPayload) (string, error)
	List(ctx context.Context, filters BookFilters) []BookSummary
	GetByID(ctx context.Context, id string) (Book, error)
	UpdateByID(ctx context.Context, id string, payload BookPayload) (Book, error)
	DeleteByID(ctx context.Context, id string) error
	OnChange(hook ChangeHook)
}
