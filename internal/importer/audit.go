package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/itam-io/itam-server/internal/models"
	"github.com/itam-io/itam-server/internal/repo"
)

// AuditRecorder writes change-log entries for the mutations the batch writer
// performs. All writes are best-effort: a failure is logged operationally and
// swallowed, never propagated to the primary mutation. The Record signature
// returns nothing so callers cannot accidentally fail on it.
type AuditRecorder struct {
	Logs   *repo.ChangeLogRepo
	Logger *slog.Logger
}

func NewAuditRecorder(logs *repo.ChangeLogRepo, logger *slog.Logger) *AuditRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditRecorder{Logs: logs, Logger: logger}
}

// Record diffs before against after and persists one change-log entry owning
// one FieldChange per changed field. Zero detected changes write nothing.
func (a *AuditRecorder) Record(ctx context.Context, user User, table string, recordID int, action, description string, before, after map[string]any) {
	if a == nil || a.Logs == nil {
		return
	}

	changes := DiffFields(before, after)
	if len(changes) == 0 {
		return
	}

	logID, err := a.Logs.CreateLog(ctx, models.ChangeLogEntry{
		UserID:      user.ID,
		Username:    user.Name,
		TableName:   table,
		RecordID:    recordID,
		Action:      action,
		Description: description,
	})
	if err != nil {
		a.Logger.Warn("audit log write failed",
			"table", table, "record_id", recordID, "action", action, "error", err)
		return
	}

	if err := a.Logs.CreateChanges(ctx, logID, changes); err != nil {
		a.Logger.Warn("audit field changes write failed",
			"log_id", logID, "table", table, "record_id", recordID, "error", err)
	}
}

// DiffFields compares two field maps with loose, type-coercing inequality:
// both sides are stringified before comparing, so 5 and "5" are equal and
// nil equals the empty string. Fields are emitted in stable name order.
func DiffFields(before, after map[string]any) []models.FieldChange {
	fields := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		fields[k] = struct{}{}
	}
	for k := range after {
		fields[k] = struct{}{}
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var changes []models.FieldChange
	for _, name := range names {
		oldVal := stringifyValue(before[name])
		newVal := stringifyValue(after[name])
		if oldVal == newVal {
			continue
		}
		changes = append(changes, models.FieldChange{Field: name, OldValue: oldVal, NewValue: newVal})
	}
	return changes
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *int:
		if t == nil {
			return ""
		}
		return fmt.Sprintf("%d", *t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
