package maintenance

import (
	"context"
	"database/sql"
	"log"
	"strconv"
	"strings"
	"time"
)

// StartViewEventsRetention runs a daily job at localTime ("HH:MM") in tzName
// that deletes book_view_events older than keep.
// Call once at startup: maintenance.StartViewEventsRetention(ctx, db, 90*24*time.Hour, "03:00", "UTC")
func StartViewEventsRetention(ctx context.Context, db *sql.DB, keep time.Duration, localTime string, tzName string) {
	if keep <= 0 {
		keep = 90 * 24 * time.Hour
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		loc = time.Local
	}
	h, m := parseClock(localTime)

	go func() {
		ensureIdx(ctx, db)
		for {
			timer := time.NewTimer(time.Until(nextRun(time.Now().In(loc), h, m)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				n, err := PruneViewEvents(ctx, db, keep)
				if err != nil {
					log.Printf("[retention] delete old book_view_events failed: %v", err)
					continue
				}
				log.Printf("[retention] book_view_events pruned: %d rows older than %s", n, keep)
			}
		}
	}()
}

// PruneViewEvents deletes view events older than keep and reports how many went.
func PruneViewEvents(ctx context.Context, db *sql.DB, keep time.Duration) (int64, error) {
	const q = `DELETE FROM book_view_events WHERE viewed_at < now() - make_interval(secs => $1)`
	res, err := db.ExecContext(ctx, q, keep.Seconds())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func ensureIdx(ctx context.Context, db *sql.DB) {
	const q = `CREATE INDEX IF NOT EXISTS idx_book_view_events_viewed_at ON book_view_events (viewed_at);`
	if _, err := db.ExecContext(ctx, q); err != nil {
		log.Printf("[retention] ensure index failed: %v", err)
	}
}

// parseClock reads "HH:MM", falling back to 03:00.
func parseClock(s string) (int, int) {
	h, m := 3, 0
	if parts := strings.Split(s, ":"); len(parts) == 2 {
		if v, err := strconv.Atoi(parts[0]); err == nil && v >= 0 && v < 24 {
			h = v
		}
		if v, err := strconv.Atoi(parts[1]); err == nil && v >= 0 && v < 60 {
			m = v
		}
	}
	return h, m
}

// nextRun is the next h:m strictly after now, in now's location.
func nextRun(now time.Time, h, m int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
