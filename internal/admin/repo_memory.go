package admin

import (
	"context"
	"sort"

	"resumelens-backend/internal/resumes"
	"resumelens-backend/internal/users"
)

// MemoryRepo computes the analytics from the in-memory feature repos. Used
// when no database is configured.
type MemoryRepo struct {
	Users   *users.MemoryRepo
	Resumes *resumes.MemoryRepo
}

// Analytics walks both stores and aggregates in memory.
func (r *MemoryRepo) Analytics(ctx context.Context) (Analytics, error) {
	accounts, err := r.Users.All(ctx)
	if err != nil {
		return Analytics{}, err
	}
	records, err := r.Resumes.All(ctx)
	if err != nil {
		return Analytics{}, err
	}

	out := Analytics{
		TotalUsers:     len(accounts),
		TotalResumes:   len(records),
		ProviderCounts: map[string]int{},
		UploadsByMonth: []MonthlyCount{},
		TopSkills:      []SkillFrequency{},
	}

	for _, account := range accounts {
		provider := account.Provider
		if provider == "" {
			provider = users.ProviderCredentials
		}
		out.ProviderCounts[provider]++
	}

	if len(records) > 0 {
		latest := records[0].CreatedAt.UTC()
		out.LatestUpload = &latest
	}

	monthly := map[string]int{}
	skillFreq := map[string]int{}
	for _, rec := range records {
		monthly[rec.CreatedAt.UTC().Format("2006-01")]++
		for _, skill := range rec.Skills {
			skillFreq[skill]++
		}
	}

	months := make([]string, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Strings(months)
	for _, month := range months {
		out.UploadsByMonth = append(out.UploadsByMonth, MonthlyCount{Month: month, Value: monthly[month]})
	}

	skills := make([]string, 0, len(skillFreq))
	for skill := range skillFreq {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		if skillFreq[skills[i]] != skillFreq[skills[j]] {
			return skillFreq[skills[i]] > skillFreq[skills[j]]
		}
		return skills[i] < skills[j]
	})
	if len(skills) > topSkillLimit {
		skills = skills[:topSkillLimit]
	}
	for _, skill := range skills {
		out.TopSkills = append(out.TopSkills, SkillFrequency{Name: skill, Value: skillFreq[skill]})
	}

	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
