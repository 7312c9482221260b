package admin

import (
	"context"
	"database/sql"
	"errors"
)

const topSkillLimit = 5

// PGRepo computes the analytics with aggregate queries.
type PGRepo struct {
	DB *sql.DB
}

// Analytics runs the aggregate queries and assembles the overview.
func (r *PGRepo) Analytics(ctx context.Context) (Analytics, error) {
	out := Analytics{
		ProviderCounts: map[string]int{},
		UploadsByMonth: []MonthlyCount{},
		TopSkills:      []SkillFrequency{},
	}

	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&out.TotalUsers); err != nil {
		return Analytics{}, err
	}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes`).Scan(&out.TotalResumes); err != nil {
		return Analytics{}, err
	}

	var latest sql.NullTime
	err := r.DB.QueryRowContext(ctx, `SELECT MAX(created_at) FROM resumes`).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Analytics{}, err
	}
	if latest.Valid {
		t := latest.Time.UTC()
		out.LatestUpload = &t
	}

	if err := r.scanProviders(ctx, &out); err != nil {
		return Analytics{}, err
	}
	if err := r.scanMonthly(ctx, &out); err != nil {
		return Analytics{}, err
	}
	if err := r.scanTopSkills(ctx, &out); err != nil {
		return Analytics{}, err
	}
	return out, nil
}

func (r *PGRepo) scanProviders(ctx context.Context, out *Analytics) error {
	rows, err := r.DB.QueryContext(ctx, `SELECT provider, COUNT(*) FROM users GROUP BY provider`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var provider string
		var count int
		if err := rows.Scan(&provider, &count); err != nil {
			return err
		}
		out.ProviderCounts[provider] = count
	}
	return rows.Err()
}

func (r *PGRepo) scanMonthly(ctx context.Context, out *Analytics) error {
	const query = `
SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
FROM resumes
GROUP BY month
ORDER BY month`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var mc MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Value); err != nil {
			return err
		}
		out.UploadsByMonth = append(out.UploadsByMonth, mc)
	}
	return rows.Err()
}

func (r *PGRepo) scanTopSkills(ctx context.Context, out *Analytics) error {
	const query = `
SELECT skill, COUNT(*) AS freq
FROM resumes, jsonb_array_elements_text(skills) AS skill
GROUP BY skill
ORDER BY freq DESC, skill
LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, topSkillLimit)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var sf SkillFrequency
		if err := rows.Scan(&sf.Name, &sf.Value); err != nil {
			return err
		}
		out.TopSkills = append(out.TopSkills, sf)
	}
	return rows.Err()
}

var _ Repo = (*PGRepo)(nil)
