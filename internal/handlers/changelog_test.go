package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/itam-io/itam-server/internal/models"
	"github.com/itam-io/itam-server/internal/repo"
)

func TestListChangeLog_ClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, username, table_name, record_id, action`).
		WithArgs(50, 0). // 9999 is over the cap, the default applies
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "username", "table_name", "record_id", "action", "description", "created_at",
		}).AddRow(1, 7, "jdoe", "assets", 3, "INSERT", "Imported asset SN1", now))
	mock.ExpectQuery(`SELECT id, log_id, field`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "log_id", "field", "old_value", "new_value"}).
			AddRow(10, 1, "serial_number", "", "SN1"))

	h := &ChangeLogHandler{Repo: repo.NewChangeLogRepo(db)}
	req := httptest.NewRequest(http.MethodGet, "/v1/changelog?limit=9999", nil)
	rec := httptest.NewRecorder()
	h.ListChangeLog(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var entries []models.ChangeLogEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "jdoe" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if len(entries[0].Changes) != 1 || entries[0].Changes[0].NewValue != "SN1" {
		t.Errorf("unexpected changes: %+v", entries[0].Changes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestListChangeLog_StoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, username, table_name, record_id, action`).
		WillReturnError(sqlmock.ErrCancelled)

	h := &ChangeLogHandler{Repo: repo.NewChangeLogRepo(db)}
	req := httptest.NewRequest(http.MethodGet, "/v1/changelog", nil)
	rec := httptest.NewRecorder()
	h.ListChangeLog(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
