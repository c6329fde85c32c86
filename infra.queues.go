package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs.
const (
	CreateQueue = "books.creation"
	UpdateQueue = "books.updating"
	DeleteQueue = "books.deletion"
)

var ErrQueueFull = errors.New("queue: capacity reached")

var (
	_ Queuer = (*redisQueue)(nil)  // ensure redisQueue implements Queuer.
	_ Queuer = (*memoryQueue)(nil) // ensure memoryQueue implements Queuer.
)

// Queuer describes a queue of book change events.
type Queuer interface {
	Push(ctx context.Context, qid string, book Book) error
	Pop(ctx context.Context, qids ...string) (string, Book, error)
}

// redisQueue is a Queuer backed by redis lists.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues a book onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, bookBytes).Err()
}

// Pop returns the first dequeued book from the list of queue ids.
// It blocks until an item is available or the context is done.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, Book, error) {
	var book Book
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return "", book, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &book); err != nil {
		return "", book, err
	}
	return infos[0], book, nil
}

type queueItem struct {
	qid  string
	book Book
}

// memoryQueue is a bounded in-process Queuer. All queue ids share a single
// channel so items are popped in the order they were pushed.
type memoryQueue struct {
	items chan queueItem
}

func NewMemoryQueue(size int) Queuer {
	return &memoryQueue{items: make(chan queueItem, size)}
}

// Push enqueues a book without blocking. It fails once the capacity is reached.
func (q *memoryQueue) Push(ctx context.Context, qid string, book Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.items <- queueItem{qid: qid, book: book}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pop returns the next book pushed on one of the given queue ids. Items
// pushed on other ids are dropped.
func (q *memoryQueue) Pop(ctx context.Context, qids ...string) (string, Book, error) {
	for {
		select {
		case <-ctx.Done():
			return "", Book{}, ctx.Err()
		case item := <-q.items:
			for _, qid := range qids {
				if item.qid == qid {
					return item.qid, item.book, nil
				}
			}
		}
	}
}
