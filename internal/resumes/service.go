package resumes

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"resumelens-backend/internal/llm"
	"resumelens-backend/internal/pdfx"
	"resumelens-backend/internal/ratelimit"
	"resumelens-backend/internal/shared/metrics"
	"resumelens-backend/internal/shared/storage/kv"
	"resumelens-backend/internal/shared/telemetry"
)

// MaxUploadBytes bounds the accepted resume file size.
const MaxUploadBytes = 5 << 20

const (
	listCacheTTL      = 5 * time.Minute
	dashboardCacheTTL = 5 * time.Minute
	dashboardTopN     = 10
)

// Service runs the resume pipeline: optimize, extract, structure, persist.
type Service struct {
	Repo    Repo
	LLM     llm.Client
	Limiter *ratelimit.Limiter
	Cache   kv.Store

	extractText func(ctx context.Context, data []byte) (string, error)
}

// NewService constructs a Service.
func NewService(repo Repo, llmClient llm.Client, limiter *ratelimit.Limiter, cache kv.Store) *Service {
	return &Service{
		Repo:        repo,
		LLM:         llmClient,
		Limiter:     limiter,
		Cache:       cache,
		extractText: pdfx.ExtractText,
	}
}

// Upload runs the full pipeline on an already-validated PDF payload. The
// rate-limit counter increments here, after validation, so rejected files
// never consume the user's budget. The returned ratelimit.Result carries
// remaining/TTL for response headers even on success.
func (s *Service) Upload(ctx context.Context, userEmail string, data []byte) (Record, ratelimit.Result, error) {
	limit := s.Limiter.Check(ctx, "upload", userEmail, "")
	if limit.Limited {
		metrics.IncUploadFailed()
		return Record{}, limit, ErrRateLimited
	}

	optimized := pdfx.Optimize(data)

	text, err := s.extractText(ctx, optimized)
	if err != nil {
		metrics.IncUploadFailed()
		return Record{}, limit, err
	}

	started := time.Now()
	analysis, err := s.LLM.Analyze(ctx, text)
	if err != nil {
		metrics.IncUploadFailed()
		return Record{}, limit, err
	}
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))

	rec := NewRecord(uuid.NewString(), userEmail, text, analysis)
	if err := s.Repo.Create(ctx, rec); err != nil {
		metrics.IncUploadFailed()
		return Record{}, limit, err
	}

	metrics.IncUpload()
	s.invalidateUserCaches(ctx, userEmail)
	return rec, limit, nil
}

// Get returns one record, raw text included.
func (s *Service) Get(ctx context.Context, userEmail, id string) (Record, error) {
	return s.Repo.GetByID(ctx, userEmail, id)
}

// List returns one page of the user's resume history. Pages are cached
// briefly; uploads, re-analyses and deletes invalidate the whole namespace
// for the user.
func (s *Service) List(ctx context.Context, userEmail string, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	cacheKey := listCacheKey(userEmail, page, limit)
	if cached, ok := s.cacheGetPage(ctx, cacheKey); ok {
		return cached, nil
	}

	records, total, err := s.Repo.ListByUser(ctx, userEmail, limit, (page-1)*limit)
	if err != nil {
		return Page{}, err
	}
	for i := range records {
		records[i] = records[i].Summary()
	}

	pages := (total + limit - 1) / limit
	result := Page{
		Data: records,
		Pagination: Pagination{
			Total:       total,
			Pages:       pages,
			CurrentPage: page,
			Limit:       limit,
			HasNext:     page < pages,
			HasPrev:     page > 1,
		},
	}

	s.cacheSetJSON(ctx, cacheKey, result, listCacheTTL)
	return result, nil
}

// Reanalyze re-runs the model on the stored raw text and overwrites the
// derived fields. Ownership, raw text and creation time are untouched.
func (s *Service) Reanalyze(ctx context.Context, userEmail, id string) (Record, error) {
	rec, err := s.Repo.GetByID(ctx, userEmail, id)
	if err != nil {
		return Record{}, err
	}

	started := time.Now()
	analysis, err := s.LLM.Analyze(ctx, rec.RawText)
	if err != nil {
		return Record{}, err
	}
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))

	rec.ApplyAnalysis(analysis)
	if err := s.Repo.UpdateAnalysis(ctx, rec); err != nil {
		return Record{}, err
	}

	s.invalidateUserCaches(ctx, userEmail)
	return rec, nil
}

// Delete removes a record and invalidates the user's cached views.
func (s *Service) Delete(ctx context.Context, userEmail, id string) error {
	if err := s.Repo.Delete(ctx, userEmail, id); err != nil {
		return err
	}
	s.invalidateUserCaches(ctx, userEmail)
	return nil
}

// Dashboard aggregates the user's resumes for the overview screen. Readiness,
// skill gap and recommendations come from the newest resume; skill counts
// span all of them.
func (s *Service) Dashboard(ctx context.Context, userEmail string) (Dashboard, error) {
	cacheKey := kv.DashboardCachePrefix + userEmail
	if s.Cache != nil {
		if raw, found, err := s.Cache.Get(ctx, cacheKey); err == nil && found {
			var cached Dashboard
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	records, total, err := s.Repo.ListByUser(ctx, userEmail, 100, 0)
	if err != nil {
		return Dashboard{}, err
	}

	dash := Dashboard{
		TotalResumes:    total,
		TopSkills:       topSkills(records, dashboardTopN),
		Readiness:       []llm.Readiness{},
		SkillGap:        []llm.SkillGap{},
		RecommendedJobs: []llm.RecommendedJob{},
	}
	if len(records) > 0 {
		latest := records[0]
		dash.Readiness = latest.Readiness
		dash.SkillGap = latest.SkillGap
		dash.RecommendedJobs = latest.RecommendedJobs
	}

	s.cacheSetJSON(ctx, cacheKey, dash, dashboardCacheTTL)
	return dash, nil
}

// LatestSkills returns the skill list of the user's newest resume, or nil
// when the user has no resumes yet.
func (s *Service) LatestSkills(ctx context.Context, userEmail string) ([]string, error) {
	records, _, err := s.Repo.ListByUser(ctx, userEmail, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].Skills, nil
}

func topSkills(records []Record, n int) []SkillCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, rec := range records {
		for _, skill := range rec.Skills {
			if counts[skill] == 0 {
				order = append(order, skill)
			}
			counts[skill]++
		}
	}
	// Count desc, first-seen order breaks ties.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	out := make([]SkillCount, 0, len(order))
	for _, skill := range order {
		out = append(out, SkillCount{Skill: skill, Count: counts[skill]})
	}
	return out
}

func listCacheKey(userEmail string, page, limit int) string {
	return kv.ResumeListPrefix + userEmail + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(limit)
}

func (s *Service) cacheGetPage(ctx context.Context, key string) (Page, bool) {
	if s.Cache == nil {
		return Page{}, false
	}
	raw, found, err := s.Cache.Get(ctx, key)
	if err != nil || !found {
		return Page{}, false
	}
	var page Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return Page{}, false
	}
	return page, true
}

func (s *Service) cacheSetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if s.Cache == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.Cache.SetEX(ctx, key, string(payload), ttl); err != nil {
		telemetry.Warn("resume cache write failed", map[string]any{"key": key, "error": err.Error()})
	}
}

// invalidateUserCaches drops the user's dashboard and list pages. Failures
// are logged, not returned; a stale page beats a failed upload.
func (s *Service) invalidateUserCaches(ctx context.Context, userEmail string) {
	if s.Cache == nil {
		return
	}
	keys := []string{kv.DashboardCachePrefix + userEmail}
	// List pages vary by page/limit; drop the common first pages.
	for page := 1; page <= 5; page++ {
		keys = append(keys, listCacheKey(userEmail, page, 10))
	}
	if err := s.Cache.Del(ctx, keys...); err != nil {
		telemetry.Warn("resume cache invalidation failed", map[string]any{
			"user_email": userEmail,
			"error":      err.Error(),
		})
	}
}
