package importer

import (
	"context"

	"github.com/itam-io/itam-server/internal/repo"
)

// RowDetail is the detector's per-row classification, parallel to the batch.
type RowDetail struct {
	Index        int       `json:"index"`
	SerialNumber string    `json:"serial_number"`
	Exists       bool      `json:"exists"`
	AssetID      int       `json:"asset_id,omitempty"`
	Action       RowAction `json:"action"`
}

// DetectMode classifies a batch by looking up each row's serial number in
// the store. All rows new means new_assets; all existing means
// add_peripherals; both present means mixed. Each row gets its own action:
// create_asset when the serial is unseen, add_peripheral when it exists and
// the row carries peripheral data, skip otherwise.
func DetectMode(ctx context.Context, assets *repo.AssetRepo, records []CanonicalAssetRecord) (Mode, []RowDetail, error) {
	details := make([]RowDetail, len(records))
	existing, unseen := 0, 0

	for i, rec := range records {
		d := RowDetail{Index: i, SerialNumber: rec.SerialNumber}

		asset, err := assets.GetBySerial(ctx, rec.SerialNumber)
		if err != nil {
			return "", nil, err
		}

		if asset == nil {
			unseen++
			d.Action = ActionCreateAsset
		} else {
			existing++
			d.Exists = true
			d.AssetID = asset.ID
			if len(rec.Peripherals) > 0 {
				d.Action = ActionAddPeripheral
			} else {
				d.Action = ActionSkip
			}
		}
		details[i] = d
	}

	mode := ModeMixed
	switch {
	case existing == 0:
		mode = ModeNewAssets
	case unseen == 0:
		mode = ModeAddPeripherals
	}
	return mode, details, nil
}
