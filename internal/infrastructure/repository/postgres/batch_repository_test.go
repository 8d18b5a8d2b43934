package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/pkg/api"
)

func TestBatchRepositoryListBatchesForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewBatchRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "status", "analysis_type", "total_docs", "processed_docs", "ai_provider", "ai_threshold", "created_at"}).
		AddRow("b-2", "u-1", "completed", "both", 3, 3, "local", 0.5, time.Now()).
		AddRow("b-1", "u-1", "queued", "ai", 1, 0, "openai", 0.7, time.Now())

	mock.ExpectQuery("FROM batches").
		WithArgs("u-1").
		WillReturnRows(rows)

	batches, err := repo.ListBatchesForUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListBatchesForUser() error = %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].AnalysisType != api.AnalysisBoth || batches[1].AIProvider != api.ProviderOpenAI {
		t.Fatalf("typed columns not mapped: %+v", batches)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBatchRepositoryListBatchesEmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewBatchRepository(db)
	mock.ExpectQuery("FROM batches").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "analysis_type", "total_docs", "processed_docs", "ai_provider", "ai_threshold", "created_at"}))

	batches, err := repo.ListBatchesForUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListBatchesForUser() error = %v", err)
	}
	if batches == nil || len(batches) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", batches)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBatchRepositoryGetBatchForUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewBatchRepository(db)
	mock.ExpectQuery("FROM batches").
		WithArgs("missing", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "analysis_type", "total_docs", "processed_docs", "ai_provider", "ai_threshold", "created_at"}))

	_, err = repo.GetBatchForUser(context.Background(), "missing", "u-1")
	if !domain.IsKind(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected batch not found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBatchRepositoryFinishBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewBatchRepository(db)
	mock.ExpectExec("UPDATE batches").
		WithArgs("b-1", "completed", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.FinishBatch(context.Background(), "b-1", "completed", 3); err != nil {
		t.Fatalf("FinishBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
