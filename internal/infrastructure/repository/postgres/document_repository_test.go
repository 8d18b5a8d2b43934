package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ivmarkin/veridoc/internal/core/domain"
)

func TestDocumentRepositoryListByBatchNullScore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewDocumentRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "batch_id", "filename", "storage_path", "status", "error_message", "ai_score", "ai_confidence", "ai_provider", "created_at", "updated_at"}).
		AddRow("d-1", "b-1", "a.txt", "b-1/a.txt", "completed", "", 0.72, 0.9, "local", now, now).
		AddRow("d-2", "b-1", "b.txt", "b-1/b.txt", "queued", "", nil, nil, "", now, now)

	mock.ExpectQuery("FROM documents").
		WithArgs("b-1").
		WillReturnRows(rows)

	docs, err := repo.ListByBatch(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("ListByBatch() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].AIScore == nil || *docs[0].AIScore != 0.72 {
		t.Fatalf("expected score 0.72, got %v", docs[0].AIScore)
	}
	if docs[1].AIScore != nil {
		t.Fatalf("pending document must have nil score, got %v", *docs[1].AIScore)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentRepositorySaveDetection(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewDocumentRepository(db)
	mock.ExpectExec("UPDATE documents").
		WithArgs("d-1", 0.42, 0.8, "together", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SaveDetection(context.Background(), "d-1", domain.Detection{Score: 0.42, Confidence: 0.8, Provider: "together"})
	if err != nil {
		t.Fatalf("SaveDetection() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentRepositoryListMatchesOrdering(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows([]string{"filename", "similarity"}).
		AddRow("b.txt", 0.91).
		AddRow("c.txt", 0.44)

	mock.ExpectQuery("FROM comparisons").
		WithArgs("d-1").
		WillReturnRows(rows)

	matches, err := repo.ListMatches(context.Background(), "d-1")
	if err != nil {
		t.Fatalf("ListMatches() error = %v", err)
	}
	if len(matches) != 2 || matches[0].SimilarDocument != "b.txt" || matches[0].Similarity != 0.91 {
		t.Fatalf("unexpected matches %+v", matches)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentRepositoryCountDocumentsForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewDocumentRepository(db)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountDocumentsForUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("CountDocumentsForUser() error = %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
