package importer

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/itam-io/itam-server/internal/repo"
)

func TestDiffFields_LooseComparison(t *testing.T) {
	before := map[string]any{"tag_id": "T1", "monthly_price": 5, "status": "active"}
	after := map[string]any{"tag_id": "T2", "monthly_price": "5", "status": "active"}

	changes := DiffFields(before, after)
	if len(changes) != 1 {
		t.Fatalf("changes: got %d, want 1 (%+v)", len(changes), changes)
	}
	if changes[0].Field != "tag_id" || changes[0].OldValue != "T1" || changes[0].NewValue != "T2" {
		t.Errorf("unexpected change: %+v", changes[0])
	}
}

func TestDiffFields_NilEqualsEmpty(t *testing.T) {
	var nilID *int
	changes := DiffFields(
		map[string]any{"recipient_id": nilID},
		map[string]any{"recipient_id": ""},
	)
	if len(changes) != 0 {
		t.Errorf("expected no changes, got %+v", changes)
	}
}

func TestDiffFields_InsertEmitsAllFields(t *testing.T) {
	changes := DiffFields(nil, map[string]any{"serial_number": "SN1", "tag_id": "T1"})
	if len(changes) != 2 {
		t.Fatalf("changes: got %d, want 2", len(changes))
	}
}

func TestAuditRecorder_ZeroChangesWriteNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	rec := NewAuditRecorder(repo.NewChangeLogRepo(db), slog.Default())
	same := map[string]any{"status": "active"}
	rec.Record(context.Background(), SystemUser, "assets", 1, "UPDATE", "no-op", same, same)

	// No INSERT expectations were registered; any write would have failed.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuditRecorder_BestEffort(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO change_logs`).
		WillReturnError(errors.New("audit store down"))

	rec := NewAuditRecorder(repo.NewChangeLogRepo(db), slog.Default())
	// Must not panic or propagate the failure.
	rec.Record(context.Background(), SystemUser, "assets", 1, "INSERT", "import",
		nil, map[string]any{"serial_number": "SN1"})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuditRecorder_RecordsChangedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO change_logs`).
		WithArgs(7, "jdoe", "assets", 3, "UPDATE", "reassigned").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`INSERT INTO change_log_fields`).
		WithArgs(11, "recipient_id", "4", "9").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO change_log_fields`).
		WithArgs(11, "status", "active", "repair").
		WillReturnResult(sqlmock.NewResult(2, 1))

	rec := NewAuditRecorder(repo.NewChangeLogRepo(db), slog.Default())
	rec.Record(context.Background(), User{ID: 7, Name: "jdoe"}, "assets", 3, "UPDATE", "reassigned",
		map[string]any{"recipient_id": 4, "status": "active", "tag_id": "T1"},
		map[string]any{"recipient_id": 9, "status": "repair", "tag_id": "T1"})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
