package resumes

import (
	"time"

	"resumelens-backend/internal/llm"
)

// Record is one analyzed resume owned by a user.
type Record struct {
	ID              string               `json:"id"`
	UserEmail       string               `json:"userEmail"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Skills          []string             `json:"skills"`
	Education       []llm.Education      `json:"education"`
	Readiness       []llm.Readiness      `json:"readiness"`
	SkillGap        []llm.SkillGap       `json:"skillGap"`
	RecommendedJobs []llm.RecommendedJob `json:"recommendedJobs"`
	RawText         string               `json:"rawText,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// NewRecord builds a record from an analysis and the text it was derived from.
func NewRecord(id, userEmail, rawText string, analysis llm.Analysis) Record {
	now := time.Now().UTC()
	rec := Record{
		ID:        id,
		UserEmail: userEmail,
		RawText:   rawText,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rec.ApplyAnalysis(analysis)
	return rec
}

// ApplyAnalysis overwrites the derived fields. Ownership, raw text and
// creation time are preserved.
func (r *Record) ApplyAnalysis(analysis llm.Analysis) {
	analysis.Normalize()
	r.Name = analysis.Name
	r.Email = analysis.Email
	r.Skills = analysis.Skills
	r.Education = analysis.Education
	r.Readiness = analysis.Readiness
	r.SkillGap = analysis.SkillGap
	r.RecommendedJobs = analysis.RecommendedJobs
	r.UpdatedAt = time.Now().UTC()
}

// Summary strips the raw text for list responses. List fields stay non-nil
// so clients always see arrays.
func (r Record) Summary() Record {
	out := r
	out.RawText = ""
	return out
}

// Pagination describes one page of a list response.
type Pagination struct {
	Total       int  `json:"total"`
	Pages       int  `json:"pages"`
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// Page is a paginated list of resume summaries.
type Page struct {
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Dashboard aggregates a user's resumes for the overview screen.
type Dashboard struct {
	TotalResumes    int                  `json:"totalResumes"`
	TopSkills       []SkillCount         `json:"topSkills"`
	Readiness       []llm.Readiness      `json:"readiness"`
	SkillGap        []llm.SkillGap       `json:"skillGap"`
	RecommendedJobs []llm.RecommendedJob `json:"recommendedJobs"`
}

// SkillCount is a skill with the number of resumes mentioning it.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}
