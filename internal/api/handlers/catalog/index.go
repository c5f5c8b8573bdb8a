package catalog

import (
	"context"
	"net/http"

	"github.com/5w1tchy/locallibrary/internal/api/httpx"
	"github.com/5w1tchy/locallibrary/internal/models"
	"github.com/5w1tchy/locallibrary/internal/session"
)

// Index: GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := h.counts(ctx)
	if err != nil {
		storeError(w, r, err, "count catalog")
		return
	}

	httpx.OK(w, httpx.Context{
		"num_books":               counts.Books,
		"num_instances":           counts.Instances,
		"num_instances_available": counts.InstancesAvailable,
		"num_authors":             counts.Authors,
		"num_visits":              h.visit(ctx, session.KeyIndexVisits),
	})
}

func (h *Handler) counts(ctx context.Context) (models.Counts, error) {
	var key string
	if h.Stats != nil {
		c, k, ok := h.Stats.Counts(ctx)
		if ok {
			return c, nil
		}
		key = k
	}
	c, err := h.Store.Counts(ctx)
	if err != nil {
		return models.Counts{}, err
	}
	if h.Stats != nil {
		h.Stats.StoreCounts(ctx, key, c)
	}
	return c, nil
}

// countsChanged drops cached counts after a write that moves them.
func (h *Handler) countsChanged(ctx context.Context) {
	if h.Stats != nil {
		h.Stats.Invalidate(ctx)
	}
}
