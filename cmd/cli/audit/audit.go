package audit

import (
	"encoding/json"
	"fmt"
	"net/http"

	cliconfig "github.com/itam-io/itam-server/cmd/cli/config"
	"github.com/itam-io/itam-server/cmd/cli/output"
	"github.com/itam-io/itam-server/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// Init Audit
// ==========================
func InitAudit(rootCmd *cobra.Command) {

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Change-audit trail",
	}

	auditCmd.AddCommand(listAuditCmd())

	rootCmd.AddCommand(auditCmd)
}

// ==========================
// LIST
// ==========================
func listAuditCmd() *cobra.Command {

	var limit int
	var showChanges bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent change-log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/v1/changelog?limit=%d", cliconfig.APIURL(), limit)
			req, err := http.NewRequest("GET", url, nil)
			if err != nil {
				return err
			}
			if token := cliconfig.Token(); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API returned status %d", resp.StatusCode)
			}

			var entries []models.ChangeLogEntry
			if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []interface{}{
					e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.Username, e.Action, e.TableName, e.RecordID, e.Description,
				})
			}
			output.RenderTable([]string{"id", "time", "user", "action", "table", "record", "description"}, rows)

			if showChanges {
				for _, e := range entries {
					if len(e.Changes) == 0 {
						continue
					}
					fmt.Printf("Entry %d field changes:\n", e.ID)
					changeRows := make([][]interface{}, 0, len(e.Changes))
					for _, c := range e.Changes {
						changeRows = append(changeRows, []interface{}{c.Field, c.OldValue, c.NewValue})
					}
					output.RenderTable([]string{"field", "old", "new"}, changeRows)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to fetch")
	cmd.Flags().BoolVar(&showChanges, "changes", false, "also print per-field changes")

	return cmd
}
