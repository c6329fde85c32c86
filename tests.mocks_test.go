package main

import (
	"context"
	"sync"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

// MockBookStorer implements a fake BookStorer.
type MockBookStorer struct {
	CreateFunc     func(ctx context.Context, payload BookPayload) (string, error)
	ListFunc       func(ctx context.Context, filters BookFilters) []BookSummary
	GetByIDFunc    func(ctx context.Context, id string) (Book, error)
	UpdateByIDFunc func(ctx context.Context, id string, payload BookPayload) (Book, error)
	DeleteByIDFunc func(ctx context.Context, id string) error
	OnChangeFunc   func(hook ChangeHook)
}

// Create mocks the behavior of book creation by the store.
func (m *MockBookStorer) Create(ctx context.Context, payload BookPayload) (string, error) {
	return m.CreateFunc(ctx, payload)
}

// List mocks the behavior of listing books by the store.
func (m *MockBookStorer) List(ctx context.Context, filters BookFilters) []BookSummary {
	return m.ListFunc(ctx, filters)
}

// GetByID mocks the behavior of retrieving a book by the store.
func (m *MockBookStorer) GetByID(ctx context.Context, id string) (Book, error) {
	return m.GetByIDFunc(ctx, id)
}

// UpdateByID mocks the behavior of updating a book by the store.
func (m *MockBookStorer) UpdateByID(ctx context.Context, id string, payload BookPayload) (Book, error) {
	return m.UpdateByIDFunc(ctx, id, payload)
}

// DeleteByID mocks the behavior of deleting a book by the store.
func (m *MockBookStorer) DeleteByID(ctx context.Context, id string) error {
	return m.DeleteByIDFunc(ctx, id)
}

// OnChange mocks the registration of the store change hook.
func (m *MockBookStorer) OnChange(hook ChangeHook) {
	if m.OnChangeFunc != nil {
		m.OnChangeFunc(hook)
	}
}

// MockQueuer implements a fake Queuer.
type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, book Book) error
	PopFunc  func(ctx context.Context, qids ...string) (string, Book, error)
}

// Push mocks the behavior of pushing a book into a queue.
func (m *MockQueuer) Push(ctx context.Context, qid string, book Book) error {
	return m.PushFunc(ctx, qid, book)
}

// Pop mocks the behavior of popping a book from one of the queues.
func (m *MockQueuer) Pop(ctx context.Context, qids ...string) (string, Book, error) {
	return m.PopFunc(ctx, qids...)
}

// MockBookMirror implements a fake BookMirror.
type MockBookMirror struct {
	SaveFunc   func(ctx context.Context, book Book) error
	DeleteFunc func(ctx context.Context, id string) error
	GetOneFunc func(ctx context.Context, id string) (Book, error)
	GetAllFunc func(ctx context.Context) ([]Book, error)
}

// Save mocks the behavior of saving a book into the mirror.
func (m *MockBookMirror) Save(ctx context.Context, book Book) error {
	return m.SaveFunc(ctx, book)
}

// Delete mocks the behavior of deleting a book from the mirror.
func (m *MockBookMirror) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

// GetOne mocks the behavior of retrieving a mirrored book.
func (m *MockBookMirror) GetOne(ctx context.Context, id string) (Book, error) {
	return m.GetOneFunc(ctx, id)
}

// GetAll mocks the behavior of retrieving all mirrored books.
func (m *MockBookMirror) GetAll(ctx context.Context) ([]Book, error) {
	return m.GetAllFunc(ctx)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	mu      sync.Mutex
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{MockNow: time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	mck.mu.Lock()
	defer mck.mu.Unlock()
	return mck.MockNow
}

// Advance moves the mocked time forward.
func (mck *MockClocker) Advance(d time.Duration) {
	mck.mu.Lock()
	mck.MockNow = mck.MockNow.Add(d)
	mck.mu.Unlock()
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// recordedPush is a queue push captured by newRecordingQueuer.
type recordedPush struct {
	qid  string
	book Book
}

// newRecordingQueuer returns a MockQueuer which records every push.
func newRecordingQueuer() (*MockQueuer, func() []recordedPush) {
	var mu sync.Mutex
	var pushes []recordedPush
	q := &MockQueuer{
		PushFunc: func(_ context.Context, qid string, book Book) error {
			mu.Lock()
			pushes = append(pushes, recordedPush{qid, book})
			mu.Unlock()
			return nil
		},
	}
	return q, func() []recordedPush {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedPush(nil), pushes...)
	}
}
