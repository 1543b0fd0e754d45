package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/eshaffer321/resale-ledger/internal/application/recalc"
)

// PrintHeader prints the application header
func PrintHeader(out io.Writer, target string, dryRun bool) {
	mode := "WRITE"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Fprintf(out, "resale-ledger recalc: %s (%s mode)\n\n", target, mode)
}

// PrintResult prints one session's allocation as a table, one row per store
// purchase.
func PrintResult(out io.Writer, res *recalc.Result) {
	mode := "written"
	if res.DryRun {
		mode = "dry run"
	}
	plan := res.Plan

	fmt.Fprintf(out, "Session %s (%s)\n", res.SessionID, mode)
	fmt.Fprintf(out, "  common cost %d, apportioned %d (drift %+d)\n",
		plan.CommonCost, plan.ApportionedTotal, plan.ApportionDrift())

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STORE\tSUBTOTAL\tSHARE\tTOTAL\tITEMS\tEXPECTED\tPER ITEM\tDRIFT\t")
	for _, sp := range plan.StorePurchases {
		name := sp.StoreName
		if name == "" {
			name = sp.StorePurchaseID
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t\n",
			name, sp.Subtotal, sp.ApportionedShare, sp.TotalCost,
			sp.RegisteredItems, sp.ExpectedItems, sp.PerItemCost, sp.RoundingDrift)
	}
	_ = tw.Flush()
	fmt.Fprintln(out)
}

// PrintBatchSummary prints the outcome of a RecalculateAll run.
func PrintBatchSummary(out io.Writer, batch *recalc.BatchResult) {
	items := 0
	for _, res := range batch.Succeeded {
		items += res.ItemsUpdated
	}

	fmt.Fprintln(out, strings.Repeat("-", 60))
	fmt.Fprintf(out, "Summary: Sessions=%d Items=%d Failed=%d\n",
		len(batch.Succeeded), items, len(batch.Failed))

	if len(batch.Failed) > 0 {
		fmt.Fprintln(out, "\nErrors:")
		for _, f := range batch.Failed {
			fmt.Fprintf(out, "  - %s: %v\n", f.SessionID, f.Err)
		}
	}
}
