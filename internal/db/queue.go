package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ad/go-telegram-wow/internal/models"
)

type DBTask struct {
	Ctx  context.Context
	Exec func(context.Context, *sql.DB) (any, error)
	Resp chan DBResult
}

type DBResult struct {
	Data any
	Err  error
}

// DBQueue serializes all access to one database through a single worker.
type DBQueue struct {
	tasks      chan DBTask
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
	testMode   bool
}

type QueueOption func(*DBQueue)

func WithMaxRetry(n int) QueueOption {
	return func(q *DBQueue) {
		if n > 0 {
			q.maxRetry = n
		}
	}
}

func NewDBQueue(db *sql.DB, opts ...QueueOption) *DBQueue {
	q := &DBQueue{
		tasks:      make(chan DBTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.worker()
	return q
}

func NewDBQueueForTest(db *sql.DB) *DBQueue {
	q := NewDBQueue(db)
	q.retryDelay = 1 * time.Millisecond
	q.testMode = true
	return q
}

func (q *DBQueue) Execute(ctx context.Context, task func(context.Context, *sql.DB) (any, error)) (any, error) {
	resp := make(chan DBResult, 1)
	select {
	case q.tasks <- DBTask{Ctx: ctx, Exec: task, Resp: resp}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-resp:
		return result.Data, result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Query runs task on the queue and returns its typed result.
func Query[T any](ctx context.Context, q *DBQueue, task func(context.Context, *sql.DB) (T, error)) (T, error) {
	var zero T
	data, err := q.Execute(ctx, func(ctx context.Context, db *sql.DB) (any, error) {
		return task(ctx, db)
	})
	if err != nil {
		return zero, err
	}
	res, ok := data.(T)
	if !ok {
		return zero, nil
	}
	return res, nil
}

func (q *DBQueue) worker() {
	for task := range q.tasks {
		task.Resp <- q.executeWithRetry(task)
	}
}

func (q *DBQueue) executeWithRetry(task DBTask) DBResult {
	var lastErr error
	for attempt := 0; attempt < q.maxRetry; attempt++ {
		if err := task.Ctx.Err(); err != nil {
			return DBResult{Err: err}
		}
		data, err := task.Exec(task.Ctx, q.db)
		if err == nil {
			return DBResult{Data: data}
		}
		if isPermanent(err) {
			return DBResult{Err: err}
		}
		lastErr = err
		if attempt < q.maxRetry-1 {
			if q.testMode {
				time.Sleep(q.retryDelay)
			} else {
				time.Sleep(time.Duration(attempt+1) * q.retryDelay)
			}
		}
	}
	return DBResult{Err: lastErr}
}

// isPermanent reports errors a retry cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (q *DBQueue) Close() {
	close(q.tasks)
}
