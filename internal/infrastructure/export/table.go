package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/printchain/backend/internal/domain/reconciliation"
)

// WriteTable writes an aligned text table followed by the summary
func WriteTable(w io.Writer, report *reconciliation.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(Header, "\t")))
	for _, row := range report.Rows {
		fmt.Fprintln(tw, strings.Join(Record(row), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npairs: %d  in sync: %d  mismatched: %d  missing invoices: %d  cancelled unbilled: %d  repaired: %d  in sync: %s%%\n",
		report.TotalPairs, report.InSync, report.Mismatched, report.MissingInvoices, report.CancelledUnbilled, report.Repaired,
		report.PercentInSync.StringFixed(2))
	return err
}
