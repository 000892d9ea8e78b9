package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/itam-io/itam-server/internal/metrics"
	"github.com/itam-io/itam-server/internal/models"
	"github.com/itam-io/itam-server/internal/repo"
)

// ErrEmptyBatch is returned when a batch call carries no rows. It is the only
// error that fails a whole import; everything else is caught per row.
var ErrEmptyBatch = errors.New("batch contains no rows")

const (
	defaultChunkSize = 10
	maxIssues        = 50
	defaultStatus    = "active"
)

// Engine is the transactional batch writer. It splits a batch into
// fixed-size chunks, runs the rows of each chunk concurrently, and runs the
// chunks sequentially to bound load on the shared catalog tables. Rows share
// nothing in memory; every shared mutation goes through the repos' race-safe
// get-or-create pattern.
type Engine struct {
	Assets      *repo.AssetRepo
	Catalog     *repo.CatalogRepo
	Peripherals *repo.PeripheralRepo
	Customers   *repo.CustomerRepo
	Audit       *AuditRecorder

	// ChunkSize is the number of rows in flight at once (default 10).
	ChunkSize int
	Logger    *slog.Logger

	validate *validator.Validate
}

func NewEngine(assets *repo.AssetRepo, catalog *repo.CatalogRepo, peripherals *repo.PeripheralRepo, customers *repo.CustomerRepo, audit *AuditRecorder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Assets:      assets,
		Catalog:     catalog,
		Peripherals: peripherals,
		Customers:   customers,
		Audit:       audit,
		ChunkSize:   defaultChunkSize,
		Logger:      logger,
		validate:    validator.New(),
	}
}

// RowIssue is one entry in the summary's error or warning list.
type RowIssue struct {
	Row          int    `json:"row"`
	SerialNumber string `json:"serial_number,omitempty"`
	Message      string `json:"error"`
}

// Summary aggregates the per-row outcomes of one batch. Counts are
// commutative; error and warning lists keep only the first 50 entries.
type Summary struct {
	BatchID          string     `json:"batch_id"`
	Mode             Mode       `json:"mode"`
	Total            int        `json:"total"`
	Imported         int        `json:"imported"`
	Failed           int        `json:"failed"`
	AssetsCreated    int        `json:"assetsCreated"`
	PeripheralsAdded int        `json:"peripheralsAdded"`
	Duplicates       int        `json:"duplicates"`
	Errors           []RowIssue `json:"errors"`
	Warnings         []RowIssue `json:"warnings"`
}

// rowResult is the outcome of one row task. err set means the row failed;
// created/peripherals/duplicates feed the commutative counters either way.
type rowResult struct {
	state       RowState
	serial      string
	created     bool
	skipped     bool
	peripherals int
	duplicates  int
	warnings    []string
	err         error
}

// Run imports one batch on behalf of user. Per-row failures are recorded in
// the summary and never abort sibling rows; only an empty batch or an
// invalid requested mode fails the call outright.
func (e *Engine) Run(ctx context.Context, rows []RawRow, requested Mode, user User) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrEmptyBatch
	}
	if requested == "" {
		requested = ModeAuto
	}
	if !ValidMode(requested) {
		return Summary{}, fmt.Errorf("invalid import mode %q", requested)
	}

	batchID := uuid.NewString()
	start := time.Now()
	metrics.ImportBatchesRunning.Inc()
	defer metrics.ImportBatchesRunning.Dec()

	records := NormalizeAll(rows)

	mode := requested
	var details []RowDetail
	if requested == ModeAuto {
		detected, d, err := DetectMode(ctx, e.Assets, records)
		if err != nil {
			return Summary{}, fmt.Errorf("detect import mode: %w", err)
		}
		mode, details = detected, d
	} else {
		details = forcedDetails(records, requested)
	}

	chunk := e.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}

	results := make([]rowResult, len(records))
	for lo := 0; lo < len(records); lo += chunk {
		hi := lo + chunk
		if hi > len(records) {
			hi = len(records)
		}
		var wg sync.WaitGroup
		for i := lo; i < hi; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = e.processRow(ctx, records[i], details[i], mode, user, batchID)
			}(i)
		}
		wg.Wait()
	}

	summary := e.aggregate(batchID, mode, results)
	metrics.ObserveBatch(string(mode), time.Since(start).Seconds())
	e.Logger.Info("import batch finished",
		"batch_id", batchID,
		"mode", mode,
		"total", summary.Total,
		"imported", summary.Imported,
		"failed", summary.Failed,
		"assets_created", summary.AssetsCreated,
		"peripherals_added", summary.PeripheralsAdded,
		"duplicates", summary.Duplicates,
		"duration_ms", time.Since(start).Milliseconds())
	return summary, nil
}

// forcedDetails builds the per-row detail list when the caller pinned the
// mode and the detector did not run. Asset ids are resolved lazily on the
// augment path.
func forcedDetails(records []CanonicalAssetRecord, mode Mode) []RowDetail {
	details := make([]RowDetail, len(records))
	for i, rec := range records {
		d := RowDetail{Index: i, SerialNumber: rec.SerialNumber, Action: ActionCreateAsset}
		if mode == ModeAddPeripherals {
			d.Exists = true
			if len(rec.Peripherals) > 0 {
				d.Action = ActionAddPeripheral
			} else {
				d.Action = ActionSkip
			}
		}
		details[i] = d
	}
	return details
}

func (e *Engine) processRow(ctx context.Context, rec CanonicalAssetRecord, detail RowDetail, mode Mode, user User, batchID string) rowResult {
	res := rowResult{state: StateClassified, serial: rec.SerialNumber}

	if err := e.validate.Struct(rec); err != nil {
		res.state = StateFailed
		res.err = validationError(err)
		return res
	}

	res.state = StateResolving
	switch detail.Action {
	case ActionSkip:
		res.skipped = true
		res.state = StateWritten
		res.warnings = append(res.warnings, "asset already exists and row carries no peripheral data; skipped")
	case ActionAddPeripheral:
		e.augmentAsset(ctx, rec, detail.AssetID, user, batchID, &res)
	default:
		e.createAsset(ctx, rec, mode, user, batchID, &res)
	}
	return res
}

// createAsset runs the full create pipeline for one row: resolve catalog
// entities, insert the asset, write peripherals and software links, link
// into the project/customer hierarchy, then audit.
func (e *Engine) createAsset(ctx context.Context, rec CanonicalAssetRecord, mode Mode, user User, batchID string, res *rowResult) {
	asset := models.Asset{
		SerialNumber:    rec.SerialNumber,
		TagID:           rec.TagID,
		ItemName:        rec.ItemName,
		Status:          rec.Status,
		Windows:         rec.Windows,
		MicrosoftOffice: rec.MicrosoftOffice,
		MonthlyPrice:    rec.MonthlyPrice,
	}
	if asset.Status == "" {
		asset.Status = defaultStatus
	}

	var categoryID *int
	if rec.Category != "" {
		id, err := e.Catalog.ResolveCategory(ctx, rec.Category)
		if err != nil {
			res.fail(fmt.Errorf("resolve category %q: %w", rec.Category, err))
			return
		}
		categoryID = &id
		asset.CategoryID = categoryID
	}
	if rec.ModelName != "" {
		id, err := e.Catalog.ResolveModel(ctx, rec.ModelName, categoryID)
		if err != nil {
			res.fail(fmt.Errorf("resolve model %q: %w", rec.ModelName, err))
			return
		}
		asset.ModelID = &id
	}
	if rec.RecipientName != "" {
		id, err := e.Catalog.ResolveRecipient(ctx, rec.RecipientName, rec.DepartmentName, rec.Position)
		if err != nil {
			res.fail(fmt.Errorf("resolve recipient %q: %w", rec.RecipientName, err))
			return
		}
		asset.RecipientID = &id
	}

	created, err := e.Assets.Create(ctx, asset)
	if errors.Is(err, repo.ErrDuplicateSerial) {
		if mode == ModeNewAssets {
			res.fail(fmt.Errorf("duplicate serial number %q", rec.SerialNumber))
			return
		}
		// Another row or writer created this serial after classification;
		// route to the augmentation path instead of erroring.
		e.augmentAsset(ctx, rec, 0, user, batchID, res)
		return
	}
	if err != nil {
		res.fail(fmt.Errorf("insert asset %q: %w", rec.SerialNumber, err))
		return
	}
	res.created = true

	e.Audit.Record(ctx, user, "assets", created.ID, models.ActionInsert,
		fmt.Sprintf("Imported asset %s (batch %s)", created.SerialNumber, batchID),
		nil, assetFields(created))

	for _, spec := range rec.Peripherals {
		if err := e.addPeripheral(ctx, created.ID, spec, user, batchID, res, false); err != nil {
			res.fail(fmt.Errorf("peripheral %q: %w", spec.TypeName, err))
			return
		}
	}

	for _, name := range softwareNames(rec) {
		id, err := e.Catalog.ResolveSoftware(ctx, name)
		if err != nil {
			res.fail(fmt.Errorf("resolve software %q: %w", name, err))
			return
		}
		if err := e.Assets.AddSoftware(ctx, created.ID, id); err != nil {
			res.fail(fmt.Errorf("link software %q: %w", name, err))
			return
		}
	}

	if err := e.linkAsset(ctx, rec, created.ID, res); err != nil {
		// The asset row exists but has no inventory link; the row is
		// reported failed rather than silently leaving an orphan.
		res.fail(fmt.Errorf("asset %q created but not linked: %w", rec.SerialNumber, err))
		return
	}

	res.state = StateWritten
}

// augmentAsset adds the row's peripherals to an already-existing asset.
// assetID zero means look the asset up by serial first.
func (e *Engine) augmentAsset(ctx context.Context, rec CanonicalAssetRecord, assetID int, user User, batchID string, res *rowResult) {
	if assetID == 0 {
		asset, err := e.Assets.GetBySerial(ctx, rec.SerialNumber)
		if err != nil {
			res.fail(fmt.Errorf("look up asset %q: %w", rec.SerialNumber, err))
			return
		}
		if asset == nil {
			res.fail(fmt.Errorf("asset %q not found", rec.SerialNumber))
			return
		}
		assetID = asset.ID
	}

	for _, spec := range rec.Peripherals {
		if err := e.addPeripheral(ctx, assetID, spec, user, batchID, res, true); err != nil {
			res.fail(fmt.Errorf("peripheral %q: %w", spec.TypeName, err))
			return
		}
	}

	res.state = StateWritten
}

// addPeripheral resolves the peripheral type and inserts one peripheral.
// With dedupe set (augment flows), an already-present (type, serial) pair is
// counted as a duplicate and skipped instead of inserted.
func (e *Engine) addPeripheral(ctx context.Context, assetID int, spec PeripheralSpec, user User, batchID string, res *rowResult, dedupe bool) error {
	typeID, err := e.Catalog.ResolvePeripheralType(ctx, spec.TypeName)
	if err != nil {
		return fmt.Errorf("resolve type: %w", err)
	}

	if dedupe {
		exists, err := e.Peripherals.Exists(ctx, assetID, typeID, spec.SerialCode)
		if err != nil {
			return fmt.Errorf("duplicate check: %w", err)
		}
		if exists {
			res.duplicates++
			res.warnings = append(res.warnings,
				fmt.Sprintf("peripheral %q (serial %q) already attached; skipped", spec.TypeName, spec.SerialCode))
			return nil
		}
	}

	p, err := e.Peripherals.Create(ctx, models.Peripheral{
		AssetID:    assetID,
		TypeID:     typeID,
		SerialCode: spec.SerialCode,
		Condition:  spec.Condition,
		Remarks:    spec.Remarks,
	})
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	res.peripherals++

	e.Audit.Record(ctx, user, "peripherals", p.ID, models.ActionInsert,
		fmt.Sprintf("Added peripheral %s to asset %d (batch %s)", spec.TypeName, assetID, batchID),
		nil, map[string]any{
			"asset_id":    assetID,
			"type":        spec.TypeName,
			"serial_code": spec.SerialCode,
			"condition":   spec.Condition,
			"remarks":     spec.Remarks,
		})
	return nil
}

// linkAsset ties the asset into the project/customer hierarchy. Any failure
// here is fatal for the row.
func (e *Engine) linkAsset(ctx context.Context, rec CanonicalAssetRecord, assetID int, res *rowResult) error {
	if rec.ProjectReferenceNum == "" {
		return errors.New("missing project reference number")
	}
	if rec.CustomerName == "" {
		return errors.New("missing customer name")
	}

	project, err := e.Customers.ProjectByRef(ctx, rec.ProjectReferenceNum)
	if err != nil {
		return fmt.Errorf("project %q: %w", rec.ProjectReferenceNum, err)
	}

	customerID, branchMismatch, err := e.Customers.ResolveCustomer(ctx, rec.CustomerName, rec.Branch)
	if err != nil {
		return fmt.Errorf("customer %q/%q: %w", rec.CustomerName, rec.Branch, err)
	}
	if branchMismatch {
		res.warnings = append(res.warnings,
			fmt.Sprintf("customer %q matched on name only; existing row from another branch reused (wanted branch %q)", rec.CustomerName, rec.Branch))
	}

	return e.Customers.AttachAsset(ctx, project.ID, customerID, assetID)
}

func (e *Engine) aggregate(batchID string, mode Mode, results []rowResult) Summary {
	summary := Summary{BatchID: batchID, Mode: mode, Total: len(results)}
	for i, r := range results {
		switch {
		case r.err != nil:
			summary.Failed++
			metrics.RecordImportRow("failed")
			appendIssue(&summary.Errors, RowIssue{Row: i + 1, SerialNumber: r.serial, Message: r.err.Error()})
		case r.skipped:
			metrics.RecordImportRow("skipped")
		default:
			summary.Imported++
			metrics.RecordImportRow("imported")
		}

		if r.created {
			summary.AssetsCreated++
		}
		summary.PeripheralsAdded += r.peripherals
		summary.Duplicates += r.duplicates
		for n := 0; n < r.peripherals; n++ {
			metrics.RecordPeripheral("added")
		}
		for n := 0; n < r.duplicates; n++ {
			metrics.RecordPeripheral("duplicate")
		}

		for _, w := range r.warnings {
			appendIssue(&summary.Warnings, RowIssue{Row: i + 1, SerialNumber: r.serial, Message: w})
		}
	}
	return summary
}

func (r *rowResult) fail(err error) {
	r.state = StateFailed
	r.err = err
}

func appendIssue(list *[]RowIssue, issue RowIssue) {
	if len(*list) >= maxIssues {
		return
	}
	*list = append(*list, issue)
}

// softwareNames collects the row's software, windows, and office values;
// each resolves against the software catalog.
func softwareNames(rec CanonicalAssetRecord) []string {
	var names []string
	for _, n := range []string{rec.Software, rec.Windows, rec.MicrosoftOffice} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// assetFields is the audit field map for an asset row.
func assetFields(a models.Asset) map[string]any {
	return map[string]any{
		"serial_number":    a.SerialNumber,
		"tag_id":           a.TagID,
		"item_name":        a.ItemName,
		"status":           a.Status,
		"category_id":      a.CategoryID,
		"model_id":         a.ModelID,
		"recipient_id":     a.RecipientID,
		"windows":          a.Windows,
		"microsoft_office": a.MicrosoftOffice,
		"monthly_price":    a.MonthlyPrice,
	}
}

// validationError flattens validator output into a readable per-row message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("missing required field(s): %s", strings.Join(fields, ", "))
}
