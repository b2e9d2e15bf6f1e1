package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	cred := Credential{
		ID:          "cred-1",
		Type:        "degree",
		Institution: "Example University",
		HolderName:  "Ada Lovelace",
		CID:         "deadbeef",
		MimeType:    "application/pdf",
		SizeBytes:   1024,
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs(
			cred.ID,
			cred.Type,
			cred.Institution,
			cred.HolderName,
			cred.CID,
			cred.MimeType,
			cred.SizeBytes,
			cred.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: database}
	if err := repo.Create(context.Background(), cred); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	mock.ExpectQuery("SELECT id, type, institution, holder_name, cid").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "institution", "holder_name", "cid", "mime_type", "size_bytes", "created_at"}))

	repo := &PGRepo{DB: database}
	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDScansNullables(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, type, institution, holder_name, cid").
		WithArgs("cred-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "institution", "holder_name", "cid", "mime_type", "size_bytes", "created_at"}).
			AddRow("cred-1", "degree", nil, "Ada", "deadbeef", nil, nil, now))

	repo := &PGRepo{DB: database}
	cred, err := repo.GetByID(context.Background(), "cred-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if cred.Institution != "" || cred.MimeType != "" || cred.SizeBytes != 0 {
		t.Fatalf("expected zero values for null columns, got %+v", cred)
	}
	if cred.HolderName != "Ada" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}
