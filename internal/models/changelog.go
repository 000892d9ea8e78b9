package models

import "time"

// Change-log actions.
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// ChangeLogEntry is one audit row: who did what to which record. Each entry
// owns zero or more FieldChange rows describing the per-field delta.
type ChangeLogEntry struct {
	ID          int           `json:"id"`
	UserID      int           `json:"user_id"`
	Username    string        `json:"username"`
	TableName   string        `json:"table_name"`
	RecordID    int           `json:"record_id"`
	Action      string        `json:"action"` // INSERT, UPDATE, DELETE
	Description string        `json:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Changes     []FieldChange `json:"changes,omitempty"`
}

type FieldChange struct {
	ID       int    `json:"id"`
	LogID    int    `json:"log_id"`
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}
