package repo

import (
	"context"
	"database/sql"

	"github.com/itam-io/itam-server/internal/models"
)

// ==========================
// PeripheralRepo
// ==========================
type PeripheralRepo struct {
	DB *sql.DB
}

func NewPeripheralRepo(db *sql.DB) *PeripheralRepo {
	return &PeripheralRepo{DB: db}
}

// ==========================
// Duplicate Check
// ==========================

// Exists reports whether the asset already has a peripheral of the same type
// and serial code. When serial is empty the match is on type alone among
// peripherals that also carry no serial.
func (r *PeripheralRepo) Exists(ctx context.Context, assetID, typeID int, serial string) (bool, error) {
	var query string
	var args []any
	if serial == "" {
		query = `SELECT 1 FROM peripherals
		         WHERE asset_id = $1 AND type_id = $2 AND COALESCE(serial_code, '') = ''`
		args = []any{assetID, typeID}
	} else {
		query = `SELECT 1 FROM peripherals
		         WHERE asset_id = $1 AND type_id = $2 AND serial_code = $3`
		args = []any{assetID, typeID, serial}
	}

	var one int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ==========================
// Create Peripheral
// ==========================
func (r *PeripheralRepo) Create(ctx context.Context, p models.Peripheral) (models.Peripheral, error) {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO peripherals (asset_id, type_id, serial_code, condition, remarks)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		p.AssetID, p.TypeID, p.SerialCode, p.Condition, p.Remarks,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return models.Peripheral{}, err
	}
	return p, nil
}

// ==========================
// List For Asset
// ==========================
func (r *PeripheralRepo) ListForAsset(ctx context.Context, assetID int) ([]models.Peripheral, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, asset_id, type_id, COALESCE(serial_code, ''), COALESCE(condition, ''), COALESCE(remarks, ''), created_at
		 FROM peripherals
		 WHERE asset_id = $1
		 ORDER BY id`,
		assetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Peripheral
	for rows.Next() {
		var p models.Peripheral
		if err := rows.Scan(&p.ID, &p.AssetID, &p.TypeID, &p.SerialCode, &p.Condition, &p.Remarks, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
