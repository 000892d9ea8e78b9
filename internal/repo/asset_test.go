package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/itam-io/itam-server/internal/models"
	"github.com/lib/pq"
)

func TestAssetRepo_GetBySerial_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, serial_number, tag_id, item_name, status`).
		WithArgs("SN404").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewAssetRepo(db)
	asset, err := repo.GetBySerial(context.Background(), "SN404")
	if err != nil {
		t.Fatalf("GetBySerial: %v", err)
	}
	if asset != nil {
		t.Errorf("expected nil asset, got %+v", asset)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_GetBySerial_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, serial_number, tag_id, item_name, status`).
		WithArgs("SN1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "serial_number", "tag_id", "item_name", "status",
			"category_id", "model_id", "recipient_id",
			"windows", "microsoft_office", "monthly_price", "created_at",
		}).AddRow(1, "SN1", "T1", "Laptop", "active", nil, nil, nil, "", "", "0", now))

	repo := NewAssetRepo(db)
	asset, err := repo.GetBySerial(context.Background(), "SN1")
	if err != nil {
		t.Fatalf("GetBySerial: %v", err)
	}
	if asset == nil || asset.ID != 1 || asset.SerialNumber != "SN1" {
		t.Errorf("unexpected asset: %+v", asset)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Create_DuplicateSerial(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO assets`).
		WillReturnError(&pq.Error{Code: "23505"})

	repo := NewAssetRepo(db)
	_, err = repo.Create(context.Background(), models.Asset{
		SerialNumber: "SN1", TagID: "T1", ItemName: "Laptop", Status: "active",
	})
	if !errors.Is(err, ErrDuplicateSerial) {
		t.Errorf("expected ErrDuplicateSerial, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_OrphanSerials(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT a.serial_number\s+FROM assets a\s+LEFT JOIN inventory_links`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"serial_number"}).AddRow("SN7").AddRow("SN8"))

	repo := NewAssetRepo(db)
	serials, err := repo.OrphanSerials(context.Background(), 100)
	if err != nil {
		t.Fatalf("OrphanSerials: %v", err)
	}
	if len(serials) != 2 || serials[0] != "SN7" {
		t.Errorf("unexpected serials: %+v", serials)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
