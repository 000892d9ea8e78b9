package importer

import "testing"

func TestNormalize_FlatPeripherals(t *testing.T) {
	rec := Normalize(RawRow{
		"serial_number":   "SN1",
		"tag_id":          "T1",
		"item_name":       "Laptop",
		"peripheral_name": "Mouse, Keyboard, n/a",
		"serial_code":     "S1, none",
	})

	if len(rec.Peripherals) != 2 {
		t.Fatalf("peripherals: got %d, want 2 (%+v)", len(rec.Peripherals), rec.Peripherals)
	}
	if rec.Peripherals[0].TypeName != "Mouse" || rec.Peripherals[0].SerialCode != "S1" {
		t.Errorf("first peripheral: %+v", rec.Peripherals[0])
	}
	// "none" serial becomes empty; Keyboard is kept without a serial.
	if rec.Peripherals[1].TypeName != "Keyboard" || rec.Peripherals[1].SerialCode != "" {
		t.Errorf("second peripheral: %+v", rec.Peripherals[1])
	}
}

func TestNormalize_FlatAlignment(t *testing.T) {
	// More serials than names: the extra serial has no name and is dropped.
	rec := Normalize(RawRow{
		"serial_number":   "SN1",
		"tag_id":          "T1",
		"item_name":       "Laptop",
		"peripheral_name": "Mouse",
		"serial_code":     "S1, S2, S3",
	})
	if len(rec.Peripherals) != 1 {
		t.Fatalf("peripherals: got %d, want 1", len(rec.Peripherals))
	}

	// More names than serials: trailing names pad with empty serials.
	rec = Normalize(RawRow{
		"serial_number":   "SN1",
		"tag_id":          "T1",
		"item_name":       "Laptop",
		"peripheral_name": "Mouse, Keyboard, Headset",
		"serial_code":     "S1",
	})
	if len(rec.Peripherals) != 3 {
		t.Fatalf("peripherals: got %d, want 3", len(rec.Peripherals))
	}
	if rec.Peripherals[2].TypeName != "Headset" || rec.Peripherals[2].SerialCode != "" {
		t.Errorf("third peripheral: %+v", rec.Peripherals[2])
	}
}

func TestNormalize_NestedPeripherals(t *testing.T) {
	rec := Normalize(RawRow{
		"serial_number": "SN1",
		"tag_id":        "T1",
		"item_name":     "Laptop",
		"peripherals": []any{
			map[string]any{"peripheral_name": "Monitor", "serial_code": "M1", "condition": "good"},
			map[string]any{"peripheral_name": "n/a", "serial_code": "X"},
			map[string]any{"serial_code": "Y"},
		},
	})
	if len(rec.Peripherals) != 1 {
		t.Fatalf("peripherals: got %d, want 1 (%+v)", len(rec.Peripherals), rec.Peripherals)
	}
	p := rec.Peripherals[0]
	if p.TypeName != "Monitor" || p.SerialCode != "M1" || p.Condition != "good" {
		t.Errorf("unexpected peripheral: %+v", p)
	}
}

func TestNormalize_FieldAliases(t *testing.T) {
	rec := Normalize(RawRow{
		"serialNumber": "SN9",
		"tag":          "T9",
		"item":         "Printer",
		"category":     "Office",
		"project_ref":  "P001",
		"customer":     "Acme",
		"branch_name":  "HQ",
		"ms_office":    "Office 2021",
	})
	if rec.SerialNumber != "SN9" || rec.TagID != "T9" || rec.ItemName != "Printer" {
		t.Errorf("identity fields: %+v", rec)
	}
	if rec.ProjectReferenceNum != "P001" || rec.CustomerName != "Acme" || rec.Branch != "HQ" {
		t.Errorf("linking fields: %+v", rec)
	}
	if rec.MicrosoftOffice != "Office 2021" {
		t.Errorf("office alias: %q", rec.MicrosoftOffice)
	}
}

func TestNormalize_NoPeripherals(t *testing.T) {
	rec := Normalize(RawRow{
		"serial_number": "SN1",
		"tag_id":        "T1",
		"item_name":     "Laptop",
	})
	if len(rec.Peripherals) != 0 {
		t.Errorf("expected zero peripherals, got %+v", rec.Peripherals)
	}
}

func TestNormalize_MonthlyPrice(t *testing.T) {
	rec := Normalize(RawRow{
		"serial_number":  "SN1",
		"tag_id":         "T1",
		"item_name":      "Laptop",
		"monthly_prices": "149.99",
	})
	if rec.MonthlyPrice.String() != "149.99" {
		t.Errorf("monthly price: %s", rec.MonthlyPrice)
	}
}
