package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Accepted spellings per canonical field. The first alias is the canonical
// name used in documentation and error messages.
var fieldAliases = map[string][]string{
	"serial_number":         {"serial_number", "serialNumber", "serial_no", "serial"},
	"tag_id":                {"tag_id", "tagId", "tag", "asset_tag"},
	"item_name":             {"item_name", "itemName", "item", "name"},
	"status":                {"status"},
	"category":              {"category", "category_name", "categoryName"},
	"model":                 {"model", "model_name", "modelName"},
	"recipient_name":        {"recipient_name", "recipientName", "recipient"},
	"department_name":       {"department_name", "departmentName", "department"},
	"position":              {"position"},
	"software":              {"software", "software_name"},
	"windows":               {"windows"},
	"microsoft_office":      {"microsoft_office", "microsoftOffice", "ms_office", "office"},
	"monthly_prices":        {"monthly_prices", "monthly_price", "monthlyPrice", "price"},
	"project_reference_num": {"project_reference_num", "projectReferenceNum", "project_ref", "project_reference"},
	"customer_name":         {"customer_name", "customerName", "customer"},
	"branch":                {"branch", "branch_name", "branchName"},
	"peripheral_name":       {"peripheral_name", "peripheralName", "peripheral", "peripheral_names"},
	"serial_code":           {"serial_code", "serialCode", "peripheral_serial", "serial_codes"},
}

// Normalize converts one raw row into its canonical record. It has no side
// effects and never touches the store.
func Normalize(row RawRow) CanonicalAssetRecord {
	rec := CanonicalAssetRecord{
		SerialNumber:        stringField(row, "serial_number"),
		TagID:               stringField(row, "tag_id"),
		ItemName:            stringField(row, "item_name"),
		Status:              stringField(row, "status"),
		Category:            stringField(row, "category"),
		ModelName:           stringField(row, "model"),
		RecipientName:       stringField(row, "recipient_name"),
		DepartmentName:      stringField(row, "department_name"),
		Position:            stringField(row, "position"),
		Software:            stringField(row, "software"),
		Windows:             stringField(row, "windows"),
		MicrosoftOffice:     stringField(row, "microsoft_office"),
		ProjectReferenceNum: stringField(row, "project_reference_num"),
		CustomerName:        stringField(row, "customer_name"),
		Branch:              stringField(row, "branch"),
	}

	if raw := stringField(row, "monthly_prices"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			rec.MonthlyPrice = d
		}
	}

	rec.Peripherals = normalizePeripherals(row)
	return rec
}

// NormalizeAll normalizes a whole batch, in input order.
func NormalizeAll(rows []RawRow) []CanonicalAssetRecord {
	records := make([]CanonicalAssetRecord, len(rows))
	for i, row := range rows {
		records[i] = Normalize(row)
	}
	return records
}

// normalizePeripherals accepts either a nested peripherals list or flat
// comma-joined peripheral_name/serial_code fields. Both absent means the
// asset has no peripherals.
func normalizePeripherals(row RawRow) []PeripheralSpec {
	if nested, ok := row["peripherals"]; ok {
		if list, ok := nested.([]any); ok {
			return normalizeNested(list)
		}
	}
	return normalizeFlat(stringField(row, "peripheral_name"), stringField(row, "serial_code"))
}

func normalizeNested(list []any) []PeripheralSpec {
	var specs []PeripheralSpec
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		raw := RawRow(m)
		spec := PeripheralSpec{
			TypeName:   cleanToken(stringField(raw, "peripheral_name")),
			SerialCode: cleanToken(stringField(raw, "serial_code")),
			Condition:  stringField(raw, "condition"),
			Remarks:    stringField(raw, "remarks"),
		}
		if spec.TypeName == "" {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// normalizeFlat splits comma-joined names and serials into index-aligned
// pairs; the shorter list pads with empty values.
func normalizeFlat(names, serials string) []PeripheralSpec {
	if names == "" && serials == "" {
		return nil
	}
	nameTokens := splitTokens(names)
	serialTokens := splitTokens(serials)

	n := len(nameTokens)
	if len(serialTokens) > n {
		n = len(serialTokens)
	}

	var specs []PeripheralSpec
	for i := 0; i < n; i++ {
		var name, serial string
		if i < len(nameTokens) {
			name = nameTokens[i]
		}
		if i < len(serialTokens) {
			serial = serialTokens[i]
		}
		if name == "" {
			continue
		}
		specs = append(specs, PeripheralSpec{TypeName: name, SerialCode: serial})
	}
	return specs
}

// splitTokens splits on commas, trims, and blanks placeholder tokens.
func splitTokens(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = cleanToken(p)
	}
	return out
}

// cleanToken trims a token and discards the "n/a"/"none" placeholders.
func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "n/a", "none":
		return ""
	}
	return s
}

// stringField returns the first present alias of the canonical field,
// stringified and trimmed.
func stringField(row RawRow, canonical string) string {
	for _, alias := range fieldAliases[canonical] {
		v, ok := row[alias]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			return strings.TrimSpace(s)
		case float64:
			// JSON numbers decode as float64; render integers without a
			// trailing ".000000".
			if s == float64(int64(s)) {
				return fmt.Sprintf("%d", int64(s))
			}
			return fmt.Sprintf("%v", s)
		default:
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	}
	return ""
}
