package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var _ BookMirror = (*boltBookMirror)(nil) // ensure boltBookMirror implements BookMirror.

// BookMirror keeps a copy of the books collection outside of the store.
// It is fed by the queue consumer and only read by ops endpoints.
type BookMirror interface {
	Save(ctx context.Context, book Book) error
	Delete(ctx context.Context, id string) error
	GetOne(ctx context.Context, id string) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
}

type boltBookMirror struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient opens the database and provides a ready to use client with
// an empty bucket. The previous content is dropped so the mirror always
// starts as empty as the in-memory store.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	bucket := []byte(config.BoltDB.BucketName)
	err = db.Update(func(tx *bolt.Tx) error {
		if errB := tx.DeleteBucket(bucket); errB != nil && errB != bolt.ErrBucketNotFound {
			return fmt.Errorf("failed to reset %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		if _, errB := tx.CreateBucket(bucket); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltBookMirror provides an instance of bolt-based book mirror.
func NewBoltBookMirror(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) *boltBookMirror {
	return &boltBookMirror{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based book mirror.
func (bm *boltBookMirror) Close() error {
	return bm.client.Close()
}

// Save inserts or replaces a book record into boltdb store.
func (bm *boltBookMirror) Save(_ context.Context, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return bm.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bm.config.BucketName)).Put([]byte(book.ID), bookBytes)
	})
}

// GetOne retrieves a book record based on its ID from boltdb store.
func (bm *boltBookMirror) GetOne(_ context.Context, id string) (Book, error) {
	var book Book
	// initialize a readable transaction.
	tx, err := bm.client.Begin(false)
	if err != nil {
		return book, err
	}
	defer tx.Rollback()

	result := tx.Bucket([]byte(bm.config.BucketName)).Get([]byte(id))
	if result == nil {
		return book, ErrBookNotFound
	}
	err = json.Unmarshal(result, &book)
	return book, err
}

// Delete removes a book record based on its ID from boltdb store.
func (bm *boltBookMirror) Delete(_ context.Context, id string) error {
	return bm.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bm.config.BucketName)).Delete([]byte(id))
	})
}

// GetAll retrieves all mirrored books ordered by their id.
func (bm *boltBookMirror) GetAll(_ context.Context) ([]Book, error) {
	tx, err := bm.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := tx.Bucket([]byte(bm.config.BucketName)).Cursor()

	books := []Book{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var book Book
		if err = json.Unmarshal(v, &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}
