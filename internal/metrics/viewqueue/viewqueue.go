// Package viewqueue records book detail views in book_view_events off the
// request path. Events are best-effort: a full buffer drops them.
package viewqueue

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

type event struct {
	bookID   string
	viewedAt time.Time
}

const (
	batchSize  = 100
	flushEvery = 250 * time.Millisecond
	writeTO    = 500 * time.Millisecond
)

var pg = goqu.Dialect("postgres")

type Queue struct {
	db      *sql.DB
	ch      chan event
	done    chan struct{}
	wg      sync.WaitGroup
	start   sync.Once
	stop    sync.Once
	dropped atomic.Int64
	now     func() time.Time
}

// New makes a queue with a buffer of buf events. Suggested: buf=10000.
func New(db *sql.DB, buf int) *Queue {
	if buf <= 0 {
		buf = 10000
	}
	return &Queue{
		db:   db,
		ch:   make(chan event, buf),
		done: make(chan struct{}),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Start spins up the workers. Calls after the first are no-ops.
func (q *Queue) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	q.start.Do(func() {
		for i := 0; i < workers; i++ {
			q.wg.Add(1)
			go q.worker()
		}
	})
}

// Enqueue queues a view without blocking.
func (q *Queue) Enqueue(bookID string) {
	if q == nil || bookID == "" {
		return
	}
	select {
	case q.ch <- event{bookID: bookID, viewedAt: q.now()}:
	default:
		q.dropped.Add(1)
	}
}

// Dropped counts events lost to a full buffer.
func (q *Queue) Dropped() int64 { return q.dropped.Load() }

// Shutdown stops the workers after they flush what is buffered.
func (q *Queue) Shutdown() {
	q.stop.Do(func() { close(q.done) })
	q.wg.Wait()
	if n := q.Dropped(); n > 0 {
		log.Printf("[viewqueue] dropped %d events (buffer full)", n)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	tk := time.NewTicker(flushEvery)
	defer tk.Stop()

	batch := make([]event, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := q.insertBatch(batch); err != nil {
			log.Printf("[viewqueue] insert %d events: %v", len(batch), err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-q.done:
			for {
				select {
				case ev := <-q.ch:
					batch = append(batch, ev)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case ev := <-q.ch:
			batch = append(batch, ev)
			if len(batch) >= batchSize {
				flush()
			}
		case <-tk.C:
			flush()
		}
	}
}

func (q *Queue) insertBatch(batch []event) error {
	rows := make([]any, 0, len(batch))
	for _, ev := range batch {
		rows = append(rows, goqu.Record{"book_id": ev.bookID, "viewed_at": ev.viewedAt})
	}
	query, args, err := pg.Insert("book_view_events").Rows(rows...).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTO)
	defer cancel()
	_, err = q.db.ExecContext(ctx, query, args...)
	return err
}
