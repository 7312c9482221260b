package resumes

import "context"

// Repo defines persistence operations for resume records.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, userEmail, id string) (Record, error)
	ListByUser(ctx context.Context, userEmail string, limit, offset int) ([]Record, int, error)
	UpdateAnalysis(ctx context.Context, rec Record) error
	Delete(ctx context.Context, userEmail, id string) error
}
