package resumes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resumelens-backend/internal/llm"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateMarshalsDerivedFields(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := NewRecord("resume-1", "jane@example.com", "raw text", llm.Analysis{
		Name:   "Jane Doe",
		Email:  "jane@example.com",
		Skills: []string{"Go"},
	})

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(
			rec.ID,
			rec.UserEmail,
			rec.Name,
			rec.Email,
			[]byte(`["Go"]`),
			[]byte(`[]`), // education
			[]byte(`[]`), // readiness
			[]byte(`[]`), // skill_gap
			[]byte(`[]`), // recommended_jobs
			rec.RawText,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScopedToOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	columns := []string{
		"id", "user_email", "name", "email", "skills", "education", "readiness",
		"skill_gap", "recommended_jobs", "raw_text", "created_at", "updated_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("resume-1", "jane@example.com").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"resume-1", "jane@example.com", "Jane Doe", "jane@example.com",
			[]byte(`["Go","PostgreSQL"]`), []byte(`[]`), []byte(`[{"role":"Backend Developer","percent":80}]`),
			[]byte(`[]`), []byte(`[]`), "raw text", now, now,
		))

	rec, err := repo.GetByID(context.Background(), "jane@example.com", "resume-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.Name != "Jane Doe" || len(rec.Skills) != 2 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Readiness[0].Percent != 80 {
		t.Fatalf("readiness: %+v", rec.Readiness)
	}
	if rec.RawText != "raw text" {
		t.Fatalf("raw text: %q", rec.RawText)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDMissingReturnsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("missing", "jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "jane@example.com", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByUserReturnsPageAndTotal(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	columns := []string{
		"id", "user_email", "name", "email", "skills", "education", "readiness",
		"skill_gap", "recommended_jobs", "created_at", "updated_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("jane@example.com", 10, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("resume-2", "jane@example.com", "Jane Doe", "jane@example.com",
				[]byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), now, now).
			AddRow("resume-1", "jane@example.com", "Jane Doe", "jane@example.com",
				[]byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), now.Add(-time.Hour), now))

	records, total, err := repo.ListByUser(context.Background(), "jane@example.com", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 12 || len(records) != 2 {
		t.Fatalf("total=%d len=%d", total, len(records))
	}
	if records[0].Skills == nil {
		t.Fatal("skills must default to an empty list")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateAnalysisMissingReturnsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := NewRecord("missing", "jane@example.com", "raw", llm.Fallback())

	mock.ExpectExec("UPDATE resumes").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateAnalysis(context.Background(), rec); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM resumes").
		WithArgs("resume-1", "jane@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "jane@example.com", "resume-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mock.ExpectExec("DELETE FROM resumes").
		WithArgs("missing", "jane@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "jane@example.com", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
