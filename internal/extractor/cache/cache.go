// Package cache stores successful extraction results keyed by the
// normalized source URL. Only successes are cached; a URL that failed
// extraction is re-attempted on its next request.
package cache

import (
	"context"

	"jobtrail-utils/pkg/models"
)

// Store is the result cache contract. Get reports a miss rather than
// an error when the backend is unreachable, so cache trouble can never
// fail an extraction. Writes are upserts; entries live until Delete or
// Clear removes them.
type Store interface {
	Get(ctx context.Context, key string) (*models.Job, bool)
	Put(ctx context.Context, key string, job *models.Job) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
