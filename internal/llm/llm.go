// Package llm abstracts the language-model provider that structures resume
// text into the fixed analysis shape.
package llm

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// Client abstracts LLM providers for resume structuring.
type Client interface {
	Analyze(ctx context.Context, resumeText string) (Analysis, error)
}

// Year tolerates both string and numeric JSON values, since models emit
// either ("2021–2023" or 2021).
type Year string

func (y *Year) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*y = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*y = Year(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*y = Year(n.String())
	return nil
}

func (y Year) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(y))), nil
}

// Education is one education history entry.
type Education struct {
	Year       Year   `json:"year"`
	Degree     string `json:"degree"`
	University string `json:"university"`
}

// Readiness scores job-readiness for a role as a percentage.
type Readiness struct {
	Role    string  `json:"role"`
	Percent float64 `json:"percent"`
}

// SkillGap marks how much a skill is lacking for market relevance.
type SkillGap struct {
	Skill   string  `json:"skill"`
	Missing float64 `json:"missing"`
}

// RecommendedJob is a suggested position with a skills-match percentage.
type RecommendedJob struct {
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	SkillsMatch float64 `json:"skillsMatch"`
}

// Analysis is the fixed-shape structured result of one resume.
type Analysis struct {
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Skills          []string         `json:"skills"`
	Education       []Education      `json:"education"`
	Readiness       []Readiness      `json:"readiness"`
	SkillGap        []SkillGap       `json:"skillGap"`
	RecommendedJobs []RecommendedJob `json:"recommendedJobs"`
}

// FallbackName marks an analysis that could not be produced by the model.
const FallbackName = "Unable to parse"

// Fallback returns the deterministic placeholder record used when the model
// call or its parse fails. Persisting it keeps the upload usable; the user
// retries via re-analysis.
func Fallback() Analysis {
	a := Analysis{Name: FallbackName}
	a.Normalize()
	return a
}

type fallbackClient struct{}

func (fallbackClient) Analyze(ctx context.Context, resumeText string) (Analysis, error) {
	return Fallback(), nil
}

// NewFallbackClient returns a Client that always produces the placeholder
// record. Used when no provider is configured so the pipeline still runs.
func NewFallbackClient() Client {
	return fallbackClient{}
}

// Normalize enforces the record invariants: list fields are empty rather
// than absent, and numeric scores never go negative.
func (a *Analysis) Normalize() {
	if a.Skills == nil {
		a.Skills = []string{}
	}
	if a.Education == nil {
		a.Education = []Education{}
	}
	if a.Readiness == nil {
		a.Readiness = []Readiness{}
	}
	if a.SkillGap == nil {
		a.SkillGap = []SkillGap{}
	}
	if a.RecommendedJobs == nil {
		a.RecommendedJobs = []RecommendedJob{}
	}
	for i := range a.Readiness {
		a.Readiness[i].Percent = clampNonNegative(a.Readiness[i].Percent)
	}
	for i := range a.SkillGap {
		a.SkillGap[i].Missing = clampNonNegative(a.SkillGap[i].Missing)
	}
	for i := range a.RecommendedJobs {
		a.RecommendedJobs[i].SkillsMatch = clampNonNegative(a.RecommendedJobs[i].SkillsMatch)
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
