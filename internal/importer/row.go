package importer

import "github.com/shopspring/decimal"

// RawRow is one import row as received: arbitrary field-name aliases,
// peripherals either nested or as flat comma-joined strings. RawRow is
// transient; only the normalizer ever looks inside one.
type RawRow map[string]any

// PeripheralSpec is the normalized shape of one peripheral on a row.
type PeripheralSpec struct {
	TypeName   string `json:"peripheral_name"`
	SerialCode string `json:"serial_code,omitempty"`
	Condition  string `json:"condition,omitempty"`
	Remarks    string `json:"remarks,omitempty"`
}

// CanonicalAssetRecord is the alias-free representation of one import row.
// It is built once by the normalizer and immutable afterward; every
// downstream component sees only this shape, never the raw input.
type CanonicalAssetRecord struct {
	SerialNumber string `validate:"required"`
	TagID        string `validate:"required"`
	ItemName     string `validate:"required"`
	Status       string

	Category       string
	ModelName      string
	RecipientName  string
	DepartmentName string
	Position       string

	Software        string
	Windows         string
	MicrosoftOffice string
	MonthlyPrice    decimal.Decimal

	Peripherals []PeripheralSpec

	ProjectReferenceNum string
	CustomerName        string
	Branch              string
}

// Import modes. ModeAuto defers the decision to the mode detector.
type Mode string

const (
	ModeAuto           Mode = "auto"
	ModeNewAssets      Mode = "new_assets"
	ModeAddPeripherals Mode = "add_peripherals"
	ModeMixed          Mode = "mixed"
)

// ValidMode reports whether m is a mode callers may request. ModeMixed is
// detector output only.
func ValidMode(m Mode) bool {
	switch m {
	case ModeAuto, ModeNewAssets, ModeAddPeripherals:
		return true
	}
	return false
}

// Per-row actions assigned by the mode detector.
type RowAction string

const (
	ActionCreateAsset   RowAction = "create_asset"
	ActionAddPeripheral RowAction = "add_peripheral"
	ActionSkip          RowAction = "skip"
)

// Row lifecycle states. A row never retries within one batch invocation;
// Written and Failed are terminal.
type RowState string

const (
	StatePending    RowState = "pending"
	StateNormalized RowState = "normalized"
	StateClassified RowState = "classified"
	StateResolving  RowState = "resolving"
	StateWritten    RowState = "written"
	StateFailed     RowState = "failed"
)

// User identifies the actor an import runs as, for audit attribution.
type User struct {
	ID   int
	Name string
}

// SystemUser is the sentinel identity used when no authenticated user is
// present.
var SystemUser = User{ID: 0, Name: "System"}
