package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestBookService_Publish ensures successful changes are published on their queue.
func TestBookService_Publish(t *testing.T) {
	store := NewBookStore(zap.NewNop(), NewMockClocker(), NewIDsHandler())
	queue, pushes := newRecordingQueuer()
	bs := NewBookService(zap.NewNop(), store, queue)

	id, err := bs.Create(context.Background(), BookPayload{Name: "A", PageCount: 3, ReadPage: 3})
	require.NoError(t, err)
	_, err = bs.Update(context.Background(), id, BookPayload{Name: "B"})
	require.NoError(t, err)
	require.NoError(t, bs.Delete(context.Background(), id))

	got := pushes()
	require.Len(t, got, 3)
	assert.Equal(t, CreateQueue, got[0].qid)
	assert.Equal(t, id, got[0].book.ID)
	assert.True(t, got[0].book.Finished)
	assert.Equal(t, UpdateQueue, got[1].qid)
	assert.Equal(t, "B", got[1].book.Name)
	assert.Equal(t, DeleteQueue, got[2].qid)
	assert.Equal(t, Book{ID: id}, got[2].book)
}

// TestBookService_NoPublishOnFailure ensures rejected operations are not published.
func TestBookService_NoPublishOnFailure(t *testing.T) {
	store := NewBookStore(zap.NewNop(), NewMockClocker(), NewIDsHandler())
	queue, pushes := newRecordingQueuer()
	bs := NewBookService(zap.NewNop(), store, queue)

	_, err := bs.Create(context.Background(), BookPayload{})
	assert.ErrorIs(t, err, ErrMissingName)
	_, err = bs.Update(context.Background(), testBookID, BookPayload{Name: "B"})
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.ErrorIs(t, bs.Delete(context.Background(), testBookID), ErrBookNotFound)
	assert.Empty(t, pushes())
}

// TestBookService_QueueFailure ensures a failing queue never fails the operation.
func TestBookService_QueueFailure(t *testing.T) {
	store := NewBookStore(zap.NewNop(), NewMockClocker(), NewIDsHandler())
	queue := &MockQueuer{
		PushFunc: func(ctx context.Context, qid string, book Book) error {
			return errors.New("queue failure")
		},
	}
	bs := NewBookService(zap.NewNop(), store, queue)

	id, err := bs.Create(context.Background(), BookPayload{Name: "A"})
	require.NoError(t, err)
	_, err = bs.Update(context.Background(), id, BookPayload{Name: "B"})
	require.NoError(t, err)
	require.NoError(t, bs.Delete(context.Background(), id))
}

// TestBookService_CancelledRequest ensures the publication outlives the request context.
func TestBookService_CancelledRequest(t *testing.T) {
	store := NewBookStore(zap.NewNop(), NewMockClocker(), NewIDsHandler())
	queue := NewMemoryQueue(4)
	bs := NewBookService(zap.NewNop(), store, queue)

	ctx, cancel := context.WithCancel(context.Background())
	id, err := store.Create(ctx, BookPayload{Name: "A"})
	require.NoError(t, err)
	cancel()
	_, err = bs.Update(ctx, id, BookPayload{Name: "B"})
	require.NoError(t, err)

	qid, book, err := queue.Pop(context.Background(), UpdateQueue)
	require.NoError(t, err)
	assert.Equal(t, UpdateQueue, qid)
	assert.Equal(t, "B", book.Name)
}

// TestBookService_ChangesOrdered ensures concurrent updates and deletes of the
// same books reach the queue in the order the store applied them, so replaying
// the queue leaves no deleted book behind.
func TestBookService_ChangesOrdered(t *testing.T) {
	store := NewBookStore(zap.NewNop(), NewMockClocker(), NewIDsHandler())
	queue, pushes := newRecordingQueuer()
	bs := NewBookService(zap.NewNop(), store, queue)
	ctx := context.Background()

	ids := make([]string, 100)
	for i := range ids {
		id, err := bs.Create(ctx, BookPayload{Name: "A"})
		require.NoError(t, err)
		ids[i] = id
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		id := id
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = bs.Update(ctx, id, BookPayload{Name: "B"})
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, bs.Delete(ctx, id))
		}()
	}
	wg.Wait()

	mirrored := map[string]Book{}
	for _, p := range pushes() {
		switch p.qid {
		case CreateQueue, UpdateQueue:
			mirrored[p.book.ID] = p.book
		case DeleteQueue:
			delete(mirrored, p.book.ID)
		}
	}
	assert.Empty(t, mirrored)
	assert.Zero(t, store.Len())
}

// TestBookService_NoQueue ensures the store hook is left unset without a queue.
func TestBookService_NoQueue(t *testing.T) {
	registered := false
	store := newPassThroughStorer()
	store.OnChangeFunc = func(hook ChangeHook) { registered = true }
	NewBookService(zap.NewNop(), store, nil)
	assert.False(t, registered)

	queue, _ := newRecordingQueuer()
	NewBookService(zap.NewNop(), store, queue)
	assert.True(t, registered)
}
