package imports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	cliconfig "github.com/itam-io/itam-server/cmd/cli/config"
	"github.com/itam-io/itam-server/cmd/cli/output"
	"github.com/itam-io/itam-server/internal/importer"
	"github.com/itam-io/itam-server/internal/xlsx"
	"github.com/spf13/cobra"
)

// ==========================
// Init Imports
// ==========================
func InitImports(rootCmd *cobra.Command) {

	importsCmd := &cobra.Command{
		Use:   "imports",
		Short: "Bulk asset imports",
	}

	importsCmd.AddCommand(
		runImportCmd(),
		previewImportCmd(),
	)

	rootCmd.AddCommand(importsCmd)
}

// loadRows reads import rows from an .xlsx worksheet or a .json array.
func loadRows(path string) ([]importer.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return xlsx.ParseRows(f)
	}

	var rows []importer.RawRow
	if err := json.NewDecoder(f).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rows, nil
}

func post(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", cliconfig.APIURL()+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := cliconfig.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("API %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// ==========================
// RUN
// ==========================
func runImportCmd() *cobra.Command {

	var file string
	var mode string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a bulk asset import from a spreadsheet or JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadRows(file)
			if err != nil {
				return err
			}

			payload := map[string]any{
				"rows":       rows,
				"importMode": mode,
			}

			var summary importer.Summary
			if err := post("/v1/imports/assets", payload, &summary); err != nil {
				return err
			}

			fmt.Printf("Batch %s finished in mode %s\n", summary.BatchID, summary.Mode)
			output.RenderTable(
				[]string{"total", "imported", "failed", "assets created", "peripherals added", "duplicates"},
				[][]interface{}{{
					summary.Total, summary.Imported, summary.Failed,
					summary.AssetsCreated, summary.PeripheralsAdded, summary.Duplicates,
				}},
			)

			if len(summary.Errors) > 0 {
				fmt.Println("Errors:")
				rows := make([][]interface{}, 0, len(summary.Errors))
				for _, e := range summary.Errors {
					rows = append(rows, []interface{}{e.Row, e.SerialNumber, e.Message})
				}
				output.RenderTable([]string{"row", "serial", "error"}, rows)
			}
			if len(summary.Warnings) > 0 {
				fmt.Println("Warnings:")
				rows := make([][]interface{}, 0, len(summary.Warnings))
				for _, wrn := range summary.Warnings {
					rows = append(rows, []interface{}{wrn.Row, wrn.SerialNumber, wrn.Message})
				}
				output.RenderTable([]string{"row", "serial", "warning"}, rows)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to .xlsx or .json rows file")
	cmd.Flags().StringVar(&mode, "mode", "auto", "import mode: auto, new_assets, or add_peripherals")
	cmd.MarkFlagRequired("file")

	return cmd
}

// ==========================
// PREVIEW
// ==========================
func previewImportCmd() *cobra.Command {

	var file string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "List catalog values the file references that do not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadRows(file)
			if err != nil {
				return err
			}

			var result importer.PreviewResult
			if err := post("/v1/imports/assets/preview", map[string]any{"rows": rows}, &result); err != nil {
				return err
			}

			sections := []struct {
				label string
				names []string
			}{
				{"category", result.Categories},
				{"model", result.Models},
				{"software", result.Software},
				{"windows", result.Windows},
				{"microsoft office", result.MicrosoftOffice},
				{"peripheral type", result.PeripheralTypes},
			}

			var tableRows [][]interface{}
			for _, s := range sections {
				for _, name := range s.names {
					tableRows = append(tableRows, []interface{}{s.label, name})
				}
			}

			if len(tableRows) == 0 {
				fmt.Println("All catalog values already exist")
				return nil
			}
			output.RenderTable([]string{"kind", "missing value"}, tableRows)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to .xlsx or .json rows file")
	cmd.MarkFlagRequired("file")

	return cmd
}
