package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestCatalogRepo_ResolveCategory_Existing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Case-insensitive: "laptop" matches the stored "Laptop" row.
	mock.ExpectQuery(`SELECT id FROM categories WHERE LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs("laptop").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	repo := NewCatalogRepo(db)
	id, err := repo.ResolveCategory(context.Background(), "laptop")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if id != 7 {
		t.Errorf("id: got %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCatalogRepo_ResolveCategory_Creates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM categories`).WithArgs("Laptop").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO categories`).WithArgs("Laptop").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	repo := NewCatalogRepo(db)
	id, err := repo.ResolveCategory(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if id != 3 {
		t.Errorf("id: got %d, want 3", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCatalogRepo_ResolveCategory_LostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Our insert loses to a concurrent writer; the retry lookup returns the
	// id that writer created. Exactly one catalog row survives.
	mock.ExpectQuery(`SELECT id FROM categories`).WithArgs("Laptop").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO categories`).WithArgs("Laptop").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(`SELECT id FROM categories`).WithArgs("Laptop").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	repo := NewCatalogRepo(db)
	id, err := repo.ResolveCategory(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if id != 9 {
		t.Errorf("id: got %d, want 9", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCatalogRepo_ResolveCategory_RetryMissPropagates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM categories`).WithArgs("Laptop").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO categories`).WithArgs("Laptop").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(`SELECT id FROM categories`).WithArgs("Laptop").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewCatalogRepo(db)
	if _, err := repo.ResolveCategory(context.Background(), "Laptop"); err == nil {
		t.Fatal("expected error when retry lookup also misses")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCatalogRepo_ResolveModel_BackfillsCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, category_id FROM models`).WithArgs("ThinkPad T14").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id"}).AddRow(4, nil))
	mock.ExpectExec(`UPDATE models SET category_id = \$1 WHERE id = \$2 AND category_id IS NULL`).
		WithArgs(2, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCatalogRepo(db)
	cat := 2
	id, err := repo.ResolveModel(context.Background(), "ThinkPad T14", &cat)
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	if id != 4 {
		t.Errorf("id: got %d, want 4", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCatalogRepo_ResolveModel_ExistingCategoryKept(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// The model already has a category; no update runs even though the
	// caller supplies a different one.
	mock.ExpectQuery(`SELECT id, category_id FROM models`).WithArgs("ThinkPad T14").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id"}).AddRow(4, 1))

	repo := NewCatalogRepo(db)
	cat := 2
	id, err := repo.ResolveModel(context.Background(), "ThinkPad T14", &cat)
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	if id != 4 {
		t.Errorf("id: got %d, want 4", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCatalogRepo_ResolveModel_CreatesWithCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, category_id FROM models`).WithArgs("ThinkPad T14").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id"}))
	mock.ExpectQuery(`INSERT INTO models`).WithArgs("ThinkPad T14", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))

	repo := NewCatalogRepo(db)
	cat := 2
	id, err := repo.ResolveModel(context.Background(), "ThinkPad T14", &cat)
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	if id != 8 {
		t.Errorf("id: got %d, want 8", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCatalogRepo_ResolveRecipient_UpdatesOnlySuppliedPosition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, COALESCE\(position, ''\)`).
		WithArgs("Jane Cruz", "Finance").
		WillReturnRows(sqlmock.NewRows([]string{"id", "position"}).AddRow(5, "Analyst"))
	mock.ExpectExec(`UPDATE recipients SET position = \$1 WHERE id = \$2`).
		WithArgs("Senior Analyst", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCatalogRepo(db)
	id, err := repo.ResolveRecipient(context.Background(), "Jane Cruz", "Finance", "Senior Analyst")
	if err != nil {
		t.Fatalf("ResolveRecipient: %v", err)
	}
	if id != 5 {
		t.Errorf("id: got %d, want 5", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCatalogRepo_ResolveRecipient_EmptyPositionNeverClears(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// No UPDATE expectation: an empty position must not touch the row.
	mock.ExpectQuery(`SELECT id, COALESCE\(position, ''\)`).
		WithArgs("Jane Cruz", "Finance").
		WillReturnRows(sqlmock.NewRows([]string{"id", "position"}).AddRow(5, "Analyst"))

	repo := NewCatalogRepo(db)
	if _, err := repo.ResolveRecipient(context.Background(), "Jane Cruz", "Finance", ""); err != nil {
		t.Fatalf("ResolveRecipient: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCatalogRepo_MissingNames_RejectsUnknownTable(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewCatalogRepo(db)
	if _, err := repo.MissingNames(context.Background(), "users; DROP TABLE users", []string{"x"}); err == nil {
		t.Fatal("expected error for unknown table")
	}
}
