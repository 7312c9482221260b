package admin

import "context"

// Repo computes the platform-wide analytics.
type Repo interface {
	Analytics(ctx context.Context) (Analytics, error)
}
