package resumes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores resume records in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Record)}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ensureLists(&rec)
	r.byID[rec.ID] = rec
	return nil
}

// GetByID returns a record owned by the given user.
func (r *MemoryRepo) GetByID(ctx context.Context, userEmail, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok || rec.UserEmail != userEmail {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// ListByUser returns one page of the user's records, newest first, without
// raw text, along with the total count.
func (r *MemoryRepo) ListByUser(ctx context.Context, userEmail string, limit, offset int) ([]Record, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]Record, 0)
	for _, rec := range r.byID {
		if rec.UserEmail == userEmail {
			owned = append(owned, rec.Summary())
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	total := len(owned)
	if offset >= total {
		return []Record{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

// All returns every stored record. Used by the admin aggregation when no
// database is configured.
func (r *MemoryRepo) All(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateAnalysis overwrites the derived fields of an existing record.
func (r *MemoryRepo) UpdateAnalysis(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[rec.ID]
	if !ok || stored.UserEmail != rec.UserEmail {
		return ErrNotFound
	}
	stored.Name = rec.Name
	stored.Email = rec.Email
	stored.Skills = rec.Skills
	stored.Education = rec.Education
	stored.Readiness = rec.Readiness
	stored.SkillGap = rec.SkillGap
	stored.RecommendedJobs = rec.RecommendedJobs
	stored.UpdatedAt = rec.UpdatedAt
	ensureLists(&stored)
	r.byID[rec.ID] = stored
	return nil
}

// Delete removes a record owned by the given user.
func (r *MemoryRepo) Delete(ctx context.Context, userEmail, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok || rec.UserEmail != userEmail {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
var _ Repo = (*PGRepo)(nil)
