package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/itam-io/itam-server/internal/models"
	"github.com/lib/pq"
)

// ErrDuplicateSerial is returned by Create when an asset with the same serial
// number already exists.
var ErrDuplicateSerial = errors.New("duplicate serial number")

// ========================
// REPOSITORY STRUCT
// ========================

type AssetRepo struct {
	DB *sql.DB
}

func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{DB: db}
}

// ========================
// GET BY SERIAL
// ========================

// GetBySerial returns the asset with the given serial number, or (nil, nil)
// when no such asset exists. The mode detector relies on the nil/nil shape.
func (r *AssetRepo) GetBySerial(ctx context.Context, serial string) (*models.Asset, error) {
	var a models.Asset
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, serial_number, tag_id, item_name, status, category_id, model_id, recipient_id,
		        COALESCE(windows, ''), COALESCE(microsoft_office, ''), monthly_price, created_at
		 FROM assets
		 WHERE serial_number = $1`,
		serial,
	).Scan(
		&a.ID,
		&a.SerialNumber,
		&a.TagID,
		&a.ItemName,
		&a.Status,
		&a.CategoryID,
		&a.ModelID,
		&a.RecipientID,
		&a.Windows,
		&a.MicrosoftOffice,
		&a.MonthlyPrice,
		&a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ========================
// CREATE ASSET
// ========================

func (r *AssetRepo) Create(ctx context.Context, a models.Asset) (models.Asset, error) {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO assets (serial_number, tag_id, item_name, status, category_id, model_id, recipient_id,
		                     windows, microsoft_office, monthly_price)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		a.SerialNumber, a.TagID, a.ItemName, a.Status, a.CategoryID, a.ModelID, a.RecipientID,
		a.Windows, a.MicrosoftOffice, a.MonthlyPrice,
	).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return models.Asset{}, ErrDuplicateSerial
	}
	if err != nil {
		return models.Asset{}, err
	}
	return a, nil
}

// ========================
// SOFTWARE LINKS
// ========================

// AddSoftware links a software catalog entry to an asset. Re-linking the same
// pair is a no-op.
func (r *AssetRepo) AddSoftware(ctx context.Context, assetID, softwareID int) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO asset_software (asset_id, software_id)
		 VALUES ($1, $2)
		 ON CONFLICT (asset_id, software_id) DO NOTHING`,
		assetID, softwareID,
	)
	return err
}

// ========================
// ORPHANS
// ========================

// OrphanSerials returns serial numbers of assets that have no inventory link.
// An orphan is a detected error state for imports, not a terminal one.
func (r *AssetRepo) OrphanSerials(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT a.serial_number
		 FROM assets a
		 LEFT JOIN inventory_links il ON il.asset_id = a.id
		 WHERE il.id IS NULL
		 ORDER BY a.id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var serials []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		serials = append(serials, s)
	}
	return serials, rows.Err()
}

// CountOrphans returns the number of assets that have no inventory link.
func (r *AssetRepo) CountOrphans(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM assets a
		 LEFT JOIN inventory_links il ON il.asset_id = a.id
		 WHERE il.id IS NULL`,
	).Scan(&n)
	return n, err
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
