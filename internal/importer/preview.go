package importer

import (
	"context"
	"strings"
)

// PreviewResult lists the catalog values a batch references that are not
// present yet. Callers show it to an operator before committing an import.
type PreviewResult struct {
	Categories      []string `json:"categories"`
	Models          []string `json:"models"`
	Software        []string `json:"software"`
	Windows         []string `json:"windows"`
	MicrosoftOffice []string `json:"microsoft_office"`
	PeripheralTypes []string `json:"peripheral_types"`
}

// Preview validates a batch against the catalogs without writing anything.
func (e *Engine) Preview(ctx context.Context, rows []RawRow) (PreviewResult, error) {
	if len(rows) == 0 {
		return PreviewResult{}, ErrEmptyBatch
	}

	records := NormalizeAll(rows)

	var categories, modelNames, software, windows, office, peripheralTypes collector
	for _, rec := range records {
		categories.add(rec.Category)
		modelNames.add(rec.ModelName)
		software.add(rec.Software)
		windows.add(rec.Windows)
		office.add(rec.MicrosoftOffice)
		for _, p := range rec.Peripherals {
			peripheralTypes.add(p.TypeName)
		}
	}

	var result PreviewResult
	var err error
	if result.Categories, err = e.Catalog.MissingNames(ctx, "categories", categories.names); err != nil {
		return PreviewResult{}, err
	}
	if result.Models, err = e.Catalog.MissingNames(ctx, "models", modelNames.names); err != nil {
		return PreviewResult{}, err
	}
	if result.Software, err = e.Catalog.MissingNames(ctx, "software", software.names); err != nil {
		return PreviewResult{}, err
	}
	// Windows and Office values live in the software catalog too.
	if result.Windows, err = e.Catalog.MissingNames(ctx, "software", windows.names); err != nil {
		return PreviewResult{}, err
	}
	if result.MicrosoftOffice, err = e.Catalog.MissingNames(ctx, "software", office.names); err != nil {
		return PreviewResult{}, err
	}
	if result.PeripheralTypes, err = e.Catalog.MissingNames(ctx, "peripheral_types", peripheralTypes.names); err != nil {
		return PreviewResult{}, err
	}
	return result, nil
}

// collector accumulates distinct names case-insensitively, keeping the first
// spelling seen.
type collector struct {
	seen  map[string]struct{}
	names []string
}

func (c *collector) add(name string) {
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.names = append(c.names, name)
}
