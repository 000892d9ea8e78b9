package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/itam-io/itam-server/internal/metrics"
	"github.com/itam-io/itam-server/internal/repo"
	"github.com/robfig/cron/v3"
)

const sweepSerialsLimit = 100

// Run starts the background orphan-asset sweep: at each cron tick it counts
// assets that have no inventory link, exports the count as a gauge, and logs
// the offending serials. Orphans are a detected error state left for an
// operator; the sweep never mutates anything. Returns the started cron so
// the caller can Stop it on shutdown.
func Run(assets *repo.AssetRepo, cronExpr string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(cronExpr, func() { sweep(assets) }); err != nil {
		return nil, err
	}
	c.Start()
	slog.Info("orphan sweep scheduled", "cron", cronExpr)
	return c, nil
}

func sweep(assets *repo.AssetRepo) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := assets.CountOrphans(ctx)
	if err != nil {
		slog.Error("orphan sweep: count", "error", err)
		return
	}
	metrics.SetOrphanAssets(count)

	if count == 0 {
		slog.Info("orphan sweep: no orphan assets")
		return
	}

	serials, err := assets.OrphanSerials(ctx, sweepSerialsLimit)
	if err != nil {
		slog.Error("orphan sweep: list serials", "error", err)
		return
	}
	slog.Warn("orphan sweep: assets without inventory link",
		"count", count,
		"serials", serials)
}
