// Package admin exposes platform-wide analytics to admin accounts.
package admin

import "time"

// Analytics is the platform-wide overview.
type Analytics struct {
	TotalUsers     int             `json:"totalUsers"`
	TotalResumes   int             `json:"totalResumes"`
	LatestUpload   *time.Time      `json:"latestUpload,omitempty"`
	ProviderCounts map[string]int  `json:"providerCounts"`
	UploadsByMonth []MonthlyCount  `json:"uploadsByMonth"`
	TopSkills      []SkillFrequency `json:"topSkills"`
}

// MonthlyCount is the number of uploads in one YYYY-MM month.
type MonthlyCount struct {
	Month string `json:"month"`
	Value int    `json:"value"`
}

// SkillFrequency is a skill with the number of resumes mentioning it.
type SkillFrequency struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
