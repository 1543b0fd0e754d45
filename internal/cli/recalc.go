package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/eshaffer321/resale-ledger/internal/application/recalc"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/config"
)

// RunRecalc recalculates (or previews) one session or all of them and prints
// the allocation tables to out.
func RunRecalc(ctx context.Context, cfg *config.Config, flags RecalcFlags, logger *slog.Logger, out io.Writer) error {
	if err := flags.Validate(); err != nil {
		return err
	}

	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = backends.Close() }()

	svc := recalc.NewService(backends.Store, backends.Locker, logger)

	target := flags.SessionID
	if flags.All {
		target = "all sessions"
	}
	PrintHeader(out, target, flags.DryRun)

	if !flags.All {
		var res *recalc.Result
		if flags.DryRun {
			res, err = svc.Preview(ctx, flags.SessionID)
		} else {
			res, err = svc.Recalculate(ctx, flags.SessionID)
		}
		if err != nil {
			return err
		}
		PrintResult(out, res)
		return nil
	}

	var batch *recalc.BatchResult
	if flags.DryRun {
		batch, err = svc.PreviewAll(ctx)
	} else {
		batch, err = svc.RecalculateAll(ctx)
	}
	if err != nil {
		return err
	}
	for _, res := range batch.Succeeded {
		PrintResult(out, res)
	}
	PrintBatchSummary(out, batch)
	if len(batch.Failed) > 0 {
		return fmt.Errorf("%d of %d sessions failed", len(batch.Failed), len(batch.Failed)+len(batch.Succeeded))
	}
	return nil
}
