package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Asset struct {
	ID              int             `json:"id"`
	SerialNumber    string          `json:"serial_number"`
	TagID           string          `json:"tag_id"`
	ItemName        string          `json:"item_name"`
	Status          string          `json:"status"`
	CategoryID      *int            `json:"category_id,omitempty"`
	ModelID         *int            `json:"model_id,omitempty"`
	RecipientID     *int            `json:"recipient_id,omitempty"`
	Windows         string          `json:"windows,omitempty"`
	MicrosoftOffice string          `json:"microsoft_office,omitempty"`
	MonthlyPrice    decimal.Decimal `json:"monthly_price"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Peripheral is a device attached to exactly one asset.
type Peripheral struct {
	ID         int       `json:"id"`
	AssetID    int       `json:"asset_id"`
	TypeID     int       `json:"type_id"`
	SerialCode string    `json:"serial_code,omitempty"`
	Condition  string    `json:"condition,omitempty"`
	Remarks    string    `json:"remarks,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
