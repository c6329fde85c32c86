package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

var _ BookStorer = (*BookStore)(nil) // ensure BookStore implements BookStorer.

// BookStore is the in-memory, insertion-ordered collection of books.
// A single RWMutex covers each operation so concurrent requests
// never observe a partially applied change.
type BookStore struct {
	logger     *zap.Logger
	clock      Clocker
	idsHandler UIDHandler

	mu    sync.RWMutex
	books []Book
	hook  ChangeHook
}

// NewBookStore provides an empty book store.
func NewBookStore(logger *zap.Logger, clock Clocker, idsHandler UIDHandler) *BookStore {
	return &BookStore{
		logger:     logger,
		clock:      clock,
		idsHandler: idsHandler,
		books:      []Book{},
	}
}

// OnChange registers the hook called on each successful mutation.
// A nil hook disables the notifications.
func (s *BookStore) OnChange(hook ChangeHook) {
	s.mu.Lock()
	s.hook = hook
	s.mu.Unlock()
}

// notify must be called with the write lock held.
func (s *BookStore) notify(ctx context.Context, qid string, book Book) {
	if s.hook != nil {
		s.hook(ctx, qid, book)
	}
}

// validatePayload checks the fields shared by creation and update.
func validatePayload(payload *BookPayload) error {
	if payload.Name == "" {
		return ErrMissingName
	}
	if payload.ReadPage > payload.PageCount {
		return ErrReadPageExceedsPageCount
	}
	return nil
}

// indexOf returns the position of the book with the given id or -1.
// Callers must hold the lock.
func (s *BookStore) indexOf(id string) int {
	for i := range s.books {
		if s.books[i].ID == id {
			return i
		}
	}
	return -1
}

// Create validates the payload then appends a new book and returns its id.
func (s *BookStore) Create(ctx context.Context, payload BookPayload) (string, error) {
	if err := validatePayload(&payload); err != nil {
		return "", err
	}

	now := s.clock.Now().UTC()
	book := Book{
		ID:         s.idsHandler.Generate(BookIDPrefix),
		Name:       payload.Name,
		Year:       payload.Year,
		Author:     payload.Author,
		Summary:    payload.Summary,
		Publisher:  payload.Publisher,
		PageCount:  payload.PageCount,
		ReadPage:   payload.ReadPage,
		Finished:   payload.PageCount == payload.ReadPage,
		Reading:    payload.Reading,
		InsertedAt: now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(book.ID) != -1 {
		s.logger.Error("store: generated book id already in use", zap.String("book.id", book.ID))
		return "", ErrBookNotInserted
	}
	s.books = append(s.books, book)
	if s.indexOf(book.ID) == -1 {
		return "", ErrBookNotInserted
	}
	s.notify(ctx, CreateQueue, book)
	return book.ID, nil
}

// List returns the summaries of all books matching the filters, in insertion order.
func (s *BookStore) List(_ context.Context, filters BookFilters) []BookSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]BookSummary, 0, len(s.books))
	for i := range s.books {
		if filters.Match(&s.books[i]) {
			summaries = append(summaries, s.books[i].ToSummary())
		}
	}
	return summaries
}

// GetByID retrieves a book record based on its ID.
func (s *BookStore) GetByID(_ context.Context, id string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i == -1 {
		return Book{}, ErrBookNotFound
	}
	return s.books[i], nil
}

// UpdateByID replaces every client-supplied field of an existing book.
// The id, the insertion time and the finished flag are kept as they were.
func (s *BookStore) UpdateByID(ctx context.Context, id string, payload BookPayload) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i == -1 {
		return Book{}, ErrBookNotFound
	}
	if err := validatePayload(&payload); err != nil {
		return Book{}, err
	}

	book := &s.books[i]
	now := s.clock.Now().UTC()
	if !now.After(book.UpdatedAt) {
		// updatedAt must move forward even if the clock did not.
		now = book.UpdatedAt.Add(time.Nanosecond)
	}
	book.Name = payload.Name
	book.Year = payload.Year
	book.Author = payload.Author
	book.Summary = payload.Summary
	book.Publisher = payload.Publisher
	book.PageCount = payload.PageCount
	book.ReadPage = payload.ReadPage
	book.Reading = payload.Reading
	book.UpdatedAt = now
	s.notify(ctx, UpdateQueue, *book)
	return *book, nil
}

// DeleteByID removes a book record and keeps the order of the remaining ones.
func (s *BookStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i == -1 {
		return ErrBookNotFound
	}
	s.books = append(s.books[:i], s.books[i+1:]...)
	s.notify(ctx, DeleteQueue, Book{ID: id})
	return nil
}

// Len returns the number of books in the collection.
func (s *BookStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
