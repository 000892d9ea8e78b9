package repo

import (
	"context"
	"database/sql"

	"github.com/itam-io/itam-server/internal/models"
)

// ChangeLogRepo persists change-log entries and their per-field change rows.
// Callers that must not fail on audit errors wrap these calls themselves; the
// repo reports errors normally.
type ChangeLogRepo struct {
	db *sql.DB
}

func NewChangeLogRepo(db *sql.DB) *ChangeLogRepo {
	return &ChangeLogRepo{db: db}
}

// CreateLog inserts one change-log entry and returns its id.
func (r *ChangeLogRepo) CreateLog(ctx context.Context, e models.ChangeLogEntry) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO change_logs (user_id, username, table_name, record_id, action, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		e.UserID, e.Username, e.TableName, e.RecordID, e.Action, e.Description,
	).Scan(&id)
	return id, err
}

// CreateChanges inserts the per-field change rows for a log entry.
func (r *ChangeLogRepo) CreateChanges(ctx context.Context, logID int, changes []models.FieldChange) error {
	for _, c := range changes {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO change_log_fields (log_id, field, old_value, new_value)
			 VALUES ($1, $2, $3, $4)`,
			logID, c.Field, c.OldValue, c.NewValue,
		); err != nil {
			return err
		}
	}
	return nil
}

// List returns recent change-log entries, newest first, each with its field
// changes attached.
func (r *ChangeLogRepo) List(ctx context.Context, limit, offset int) ([]models.ChangeLogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, username, table_name, record_id, action, COALESCE(description, ''), created_at
		 FROM change_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ChangeLogEntry
	for rows.Next() {
		var e models.ChangeLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.TableName, &e.RecordID, &e.Action, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		changes, err := r.listChanges(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Changes = changes
	}
	return entries, nil
}

func (r *ChangeLogRepo) listChanges(ctx context.Context, logID int) ([]models.FieldChange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, log_id, field, COALESCE(old_value, ''), COALESCE(new_value, '')
		 FROM change_log_fields
		 WHERE log_id = $1
		 ORDER BY id`,
		logID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []models.FieldChange
	for rows.Next() {
		var c models.FieldChange
		if err := rows.Scan(&c.ID, &c.LogID, &c.Field, &c.OldValue, &c.NewValue); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
