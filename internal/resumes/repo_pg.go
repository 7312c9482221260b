package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"resumelens-backend/internal/llm"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new resume record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO resumes (
	id, user_email, name, email, skills, education, readiness, skill_gap,
	recommended_jobs, raw_text, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	payloads, err := marshalDerived(rec)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserEmail,
		rec.Name,
		rec.Email,
		payloads.skills,
		payloads.education,
		payloads.readiness,
		payloads.skillGap,
		payloads.recommendedJobs,
		rec.RawText,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

// GetByID returns a record owned by the given user.
func (r *PGRepo) GetByID(ctx context.Context, userEmail, id string) (Record, error) {
	const query = `
SELECT id, user_email, name, email, skills, education, readiness, skill_gap,
       recommended_jobs, raw_text, created_at, updated_at
FROM resumes
WHERE id = $1 AND user_email = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, id, userEmail)
	rec, err := scanRecord(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// ListByUser returns one page of the user's records, newest first, without
// raw text, along with the total count.
func (r *PGRepo) ListByUser(ctx context.Context, userEmail string, limit, offset int) ([]Record, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resumes WHERE user_email = $1`, userEmail,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
SELECT id, user_email, name, email, skills, education, readiness, skill_gap,
       recommended_jobs, created_at, updated_at
FROM resumes
WHERE user_email = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userEmail, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// UpdateAnalysis overwrites the derived fields of an existing record.
func (r *PGRepo) UpdateAnalysis(ctx context.Context, rec Record) error {
	const query = `
UPDATE resumes
SET name = $3, email = $4, skills = $5, education = $6, readiness = $7,
    skill_gap = $8, recommended_jobs = $9, updated_at = $10
WHERE id = $1 AND user_email = $2`
	payloads, err := marshalDerived(rec)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserEmail,
		rec.Name,
		rec.Email,
		payloads.skills,
		payloads.education,
		payloads.readiness,
		payloads.skillGap,
		payloads.recommendedJobs,
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record owned by the given user.
func (r *PGRepo) Delete(ctx context.Context, userEmail, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM resumes WHERE id = $1 AND user_email = $2`, id, userEmail)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type derivedPayloads struct {
	skills          []byte
	education       []byte
	readiness       []byte
	skillGap        []byte
	recommendedJobs []byte
}

func marshalDerived(rec Record) (derivedPayloads, error) {
	var p derivedPayloads
	var err error
	if p.skills, err = marshalJSONB(rec.Skills); err != nil {
		return p, err
	}
	if p.education, err = marshalJSONB(rec.Education); err != nil {
		return p, err
	}
	if p.readiness, err = marshalJSONB(rec.Readiness); err != nil {
		return p, err
	}
	if p.skillGap, err = marshalJSONB(rec.SkillGap); err != nil {
		return p, err
	}
	p.recommendedJobs, err = marshalJSONB(rec.RecommendedJobs)
	return p, err
}

func marshalJSONB(v any) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, withRawText bool) (Record, error) {
	var rec Record
	var skills, education, readiness, skillGap, recommendedJobs []byte
	dest := []any{
		&rec.ID, &rec.UserEmail, &rec.Name, &rec.Email,
		&skills, &education, &readiness, &skillGap, &recommendedJobs,
	}
	if withRawText {
		dest = append(dest, &rec.RawText)
	}
	dest = append(dest, &rec.CreatedAt, &rec.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return Record{}, err
	}

	if err := unmarshalJSONB(skills, &rec.Skills); err != nil {
		return Record{}, err
	}
	if err := unmarshalJSONB(education, &rec.Education); err != nil {
		return Record{}, err
	}
	if err := unmarshalJSONB(readiness, &rec.Readiness); err != nil {
		return Record{}, err
	}
	if err := unmarshalJSONB(skillGap, &rec.SkillGap); err != nil {
		return Record{}, err
	}
	if err := unmarshalJSONB(recommendedJobs, &rec.RecommendedJobs); err != nil {
		return Record{}, err
	}
	ensureLists(&rec)
	return rec, nil
}

func unmarshalJSONB(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func ensureLists(rec *Record) {
	if rec.Skills == nil {
		rec.Skills = []string{}
	}
	if rec.Education == nil {
		rec.Education = []llm.Education{}
	}
	if rec.Readiness == nil {
		rec.Readiness = []llm.Readiness{}
	}
	if rec.SkillGap == nil {
		rec.SkillGap = []llm.SkillGap{}
	}
	if rec.RecommendedJobs == nil {
		rec.RecommendedJobs = []llm.RecommendedJob{}
	}
}
