package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itam-io/itam-server/internal/models"
)

// ErrProjectNotFound is returned when a project reference number does not
// match any project. Imports cannot link a row to a non-existent project.
var ErrProjectNotFound = errors.New("project not found")

// CustomerRepo resolves projects and customers and maintains the inventory
// links bridging assets into the project/customer hierarchy.
type CustomerRepo struct {
	DB *sql.DB
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{DB: db}
}

// ==========================
// Project
// ==========================

func (r *CustomerRepo) ProjectByRef(ctx context.Context, referenceNum string) (*models.Project, error) {
	var p models.Project
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, reference_num, COALESCE(name, '') FROM projects WHERE reference_num = $1`,
		referenceNum,
	).Scan(&p.ID, &p.ReferenceNum, &p.Name)
	if err == sql.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ==========================
// Customer
// ==========================

// ResolveCustomer finds or creates the customer for (name, branch).
// Resolution order: exact (name, branch) match; any customer with the same
// name regardless of branch (branchMismatch true); otherwise a new customer
// with a generated reference number. The same-name fallback knowingly reuses
// a customer row across branches.
func (r *CustomerRepo) ResolveCustomer(ctx context.Context, name, branch string) (id int, branchMismatch bool, err error) {
	id, branchMismatch, err = r.findCustomer(ctx, name, branch)
	if err == nil || err != sql.ErrNoRows {
		return id, branchMismatch, err
	}

	refNum, err := r.nextReferenceNum(ctx)
	if err != nil {
		return 0, false, err
	}

	err = r.DB.QueryRowContext(ctx,
		`INSERT INTO customers (name, branch, reference_num) VALUES ($1, $2, $3) RETURNING id`,
		name, branch, refNum,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !isUniqueViolation(err) {
		return 0, false, err
	}

	// Concurrent writer beat us to either the (name, branch) pair or the
	// reference number. Re-resolve once.
	id, branchMismatch, err = r.findCustomer(ctx, name, branch)
	if err == sql.ErrNoRows {
		return 0, false, fmt.Errorf("resolve customer %q/%q: lost insert race and retry lookup found nothing", name, branch)
	}
	return id, branchMismatch, err
}

func (r *CustomerRepo) findCustomer(ctx context.Context, name, branch string) (int, bool, error) {
	var id int
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM customers
		 WHERE LOWER(name) = LOWER($1) AND LOWER(COALESCE(branch, '')) = LOWER($2)`,
		name, branch,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, err
	}

	err = r.DB.QueryRowContext(ctx,
		`SELECT id FROM customers WHERE LOWER(name) = LOWER($1) ORDER BY id LIMIT 1`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// nextReferenceNum derives the next generated customer reference number from
// the current maximum matching the M-prefixed pattern, e.g. M0042 -> M0043.
func (r *CustomerRepo) nextReferenceNum(ctx context.Context) (string, error) {
	var max int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(CAST(SUBSTRING(reference_num FROM 2) AS INTEGER)), 0)
		 FROM customers
		 WHERE reference_num ~ '^M[0-9]+$'`,
	).Scan(&max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("M%04d", max+1), nil
}

// ==========================
// Inventory Links
// ==========================

// AttachAsset links an asset to (project, customer). An existing link row
// with a free asset slot is back-filled first; otherwise a new link row is
// inserted already populated with the asset.
func (r *CustomerRepo) AttachAsset(ctx context.Context, projectID, customerID, assetID int) error {
	var linkID int
	err := r.DB.QueryRowContext(ctx,
		`UPDATE inventory_links SET asset_id = $3
		 WHERE id = (
		     SELECT id FROM inventory_links
		     WHERE project_id = $1 AND customer_id = $2 AND asset_id IS NULL
		     ORDER BY id LIMIT 1
		 )
		 RETURNING id`,
		projectID, customerID, assetID,
	).Scan(&linkID)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO inventory_links (project_id, customer_id, asset_id) VALUES ($1, $2, $3)`,
		projectID, customerID, assetID,
	)
	return err
}
