package jobs

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"resumelens-backend/internal/shared/storage/kv"
	"resumelens-backend/internal/shared/telemetry"
	"resumelens-backend/internal/shared/util"
)

const searchCacheTTL = 10 * time.Minute

// Searcher abstracts the upstream client so the service can be tested
// without RapidAPI.
type Searcher interface {
	Search(ctx context.Context, query string, page int) ([]Job, error)
}

// Service caches job searches on top of the upstream client.
type Service struct {
	Client Searcher
	Cache  kv.Store
}

// NewService constructs a Service.
func NewService(client Searcher, cache kv.Store) *Service {
	return &Service{Client: client, Cache: cache}
}

// Search returns postings for the keywords, optionally biased to remote
// roles and a location. Results are cached briefly per exact search.
func (s *Service) Search(ctx context.Context, query, location string, remote bool, page int) ([]Job, error) {
	keywords := query
	if remote {
		keywords += " remote"
	}
	if location != "" {
		keywords += " " + location
	}
	keywords = strings.TrimSpace(keywords)
	if page < 1 {
		page = 1
	}

	cacheKey := kv.JobsCachePrefix + util.Fingerprint(keywords+":"+strconv.Itoa(page))
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	found, err := s.Client.Search(ctx, keywords, page)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, found)
	return found, nil
}

// SearchBySkills finds postings matching a resume's strongest skills.
func (s *Service) SearchBySkills(ctx context.Context, skills []string) ([]Job, error) {
	if len(skills) > 3 {
		skills = skills[:3]
	}
	return s.Search(ctx, strings.Join(skills, " "), "", false, 1)
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]Job, bool) {
	if s.Cache == nil {
		return nil, false
	}
	raw, found, err := s.Cache.Get(ctx, key)
	if err != nil || !found {
		return nil, false
	}
	var cached []Job
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, false
	}
	return cached, true
}

func (s *Service) cacheSet(ctx context.Context, key string, found []Job) {
	if s.Cache == nil {
		return
	}
	payload, err := json.Marshal(found)
	if err != nil {
		return
	}
	if err := s.Cache.SetEX(ctx, key, string(payload), searchCacheTTL); err != nil {
		telemetry.Warn("jobs cache write failed", map[string]any{"error": err.Error()})
	}
}
