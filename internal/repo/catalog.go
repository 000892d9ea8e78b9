package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CatalogRepo implements race-safe get-or-create over the shared lookup
// tables (categories, models, software, peripheral_types, recipients).
//
// The pattern is always: case-insensitive lookup, insert on miss, and on a
// unique violation re-run the lookup and return the id the other writer
// created. Concurrent row tasks (possibly in other processes) share these
// tables, so no in-process locking is used.
type CatalogRepo struct {
	DB *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{DB: db}
}

// ========================
// SIMPLE NAMED CATALOGS
// ========================

func (r *CatalogRepo) ResolveCategory(ctx context.Context, name string) (int, error) {
	return r.resolveNamed(ctx, "categories", name)
}

func (r *CatalogRepo) ResolveSoftware(ctx context.Context, name string) (int, error) {
	return r.resolveNamed(ctx, "software", name)
}

func (r *CatalogRepo) ResolvePeripheralType(ctx context.Context, name string) (int, error) {
	return r.resolveNamed(ctx, "peripheral_types", name)
}

// resolveNamed is the generic get-or-create for single-column catalogs.
// The table name is always one of the fixed identifiers above, never input.
func (r *CatalogRepo) resolveNamed(ctx context.Context, table, name string) (int, error) {
	lookup := fmt.Sprintf(`SELECT id FROM %s WHERE LOWER(name) = LOWER($1)`, table)

	var id int
	err := r.DB.QueryRowContext(ctx, lookup, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	insert := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id`, table)
	err = r.DB.QueryRowContext(ctx, insert, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !isUniqueViolation(err) {
		return 0, err
	}

	// Another writer created the same name between our lookup and insert.
	if err := r.DB.QueryRowContext(ctx, lookup, name).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("resolve %s %q: lost insert race and retry lookup found nothing", table, name)
		}
		return 0, err
	}
	return id, nil
}

// ========================
// MODEL
// ========================

// ResolveModel resolves a model by name. categoryID is optional: an existing
// model with no category link is back-filled when one is supplied; a new
// model is created with the supplied category immediately.
func (r *CatalogRepo) ResolveModel(ctx context.Context, name string, categoryID *int) (int, error) {
	const lookup = `SELECT id, category_id FROM models WHERE LOWER(name) = LOWER($1)`

	var id int
	var existingCat sql.NullInt64
	err := r.DB.QueryRowContext(ctx, lookup, name).Scan(&id, &existingCat)
	if err == nil {
		if !existingCat.Valid && categoryID != nil {
			if _, err := r.DB.ExecContext(ctx,
				`UPDATE models SET category_id = $1 WHERE id = $2 AND category_id IS NULL`,
				*categoryID, id,
			); err != nil {
				return 0, err
			}
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	err = r.DB.QueryRowContext(ctx,
		`INSERT INTO models (name, category_id) VALUES ($1, $2) RETURNING id`,
		name, categoryID,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !isUniqueViolation(err) {
		return 0, err
	}

	if err := r.DB.QueryRowContext(ctx, lookup, name).Scan(&id, &existingCat); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("resolve model %q: lost insert race and retry lookup found nothing", name)
		}
		return 0, err
	}
	return id, nil
}

// ========================
// RECIPIENT
// ========================

// ResolveRecipient matches on (name, department). On an existing recipient
// only an explicitly supplied position is written; an empty position never
// clears the stored one.
func (r *CatalogRepo) ResolveRecipient(ctx context.Context, name, department, position string) (int, error) {
	const lookup = `SELECT id, COALESCE(position, '')
	                FROM recipients
	                WHERE LOWER(name) = LOWER($1) AND LOWER(COALESCE(department, '')) = LOWER($2)`

	var id int
	var existingPos string
	err := r.DB.QueryRowContext(ctx, lookup, name, department).Scan(&id, &existingPos)
	if err == nil {
		if position != "" && position != existingPos {
			if _, err := r.DB.ExecContext(ctx,
				`UPDATE recipients SET position = $1 WHERE id = $2`,
				position, id,
			); err != nil {
				return 0, err
			}
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	err = r.DB.QueryRowContext(ctx,
		`INSERT INTO recipients (name, department, position) VALUES ($1, $2, $3) RETURNING id`,
		name, department, position,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !isUniqueViolation(err) {
		return 0, err
	}

	if err := r.DB.QueryRowContext(ctx, lookup, name, department).Scan(&id, &existingPos); err != nil {
		if err == sql.ErrNoRows {
			return 0, errors.New("resolve recipient: lost insert race and retry lookup found nothing")
		}
		return 0, err
	}
	return id, nil
}

// ========================
// EXISTENCE CHECKS (PREVIEW)
// ========================

// MissingNames returns, for a fixed catalog table, which of the given names
// are not present yet. Used by the import preview; writes nothing.
func (r *CatalogRepo) MissingNames(ctx context.Context, table string, names []string) ([]string, error) {
	switch table {
	case "categories", "models", "software", "peripheral_types":
	default:
		return nil, fmt.Errorf("unknown catalog table %q", table)
	}

	lookup := fmt.Sprintf(`SELECT 1 FROM %s WHERE LOWER(name) = LOWER($1)`, table)

	var missing []string
	for _, name := range names {
		var one int
		err := r.DB.QueryRowContext(ctx, lookup, name).Scan(&one)
		if err == sql.ErrNoRows {
			missing = append(missing, name)
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return missing, nil
}
