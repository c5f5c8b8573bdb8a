package catalogstore

import (
	"context"

	"github.com/5w1tchy/locallibrary/internal/models"
)

// Counts returns the four home-page totals in one round trip.
func (s *Store) Counts(ctx context.Context) (models.Counts, error) {
	var c models.Counts
	err := s.db.QueryRowContext(ctx, qCounts, string(models.StatusAvailable)).
		Scan(&c.Books, &c.Instances, &c.InstancesAvailable, &c.Authors)
	return c, err
}
