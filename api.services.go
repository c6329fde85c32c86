package main

import (
	"context"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Create(ctx context.Context, payload BookPayload) (string, error)
	List(ctx context.Context, filters BookFilters) []BookSummary
	GetOne(ctx context.Context, id string) (Book, error)
	Update(ctx context.Context, id string, payload BookPayload) (Book, error)
	Delete(ctx context.Context, id string) error
}

// BookService runs the books operations against the store. Every
// successful change is published on the mirror queue if any.
type BookService struct {
	logger *zap.Logger
	store  BookStorer
	queue  Queuer
}

// NewBookService provides a book service. A nil queue disables the
// publication of changes. Otherwise the service hooks into the store
// so changes reach the queue in the order the store applied them.
func NewBookService(logger *zap.Logger, store BookStorer, queue Queuer) BookServiceProvider {
	bs := &BookService{
		logger: logger,
		store:  store,
		queue:  queue,
	}
	if queue != nil {
		store.OnChange(bs.publish)
	}
	return bs
}

// publish pushes a change on the queue. Failures are only logged because
// the store remains the source of truth.
func (bs *BookService) publish(ctx context.Context, qid string, book Book) {
	if err := bs.queue.Push(context.WithoutCancel(ctx), qid, book); err != nil {
		bs.logger.Error("service: failed to push book to queue", zap.String("qid", qid), zap.String("book.id", book.ID), zap.Error(err))
	}
}

func (bs *BookService) Create(ctx context.Context, payload BookPayload) (string, error) {
	return bs.store.Create(ctx, payload)
}

func (bs *BookService) List(ctx context.Context, filters BookFilters) []BookSummary {
	return bs.store.List(ctx, filters)
}

func (bs *BookService) GetOne(ctx context.Context, id string) (Book, error) {
	return bs.store.GetByID(ctx, id)
}

func (bs *BookService) Update(ctx context.Context, id string, payload BookPayload) (Book, error) {
	return bs.store.UpdateByID(ctx, id, payload)
}

func (bs *BookService) Delete(ctx context.Context, id string) error {
	return bs.store.DeleteByID(ctx, id)
}
