package export

import (
	"encoding/csv"
	"io"

	"github.com/printchain/backend/internal/domain/reconciliation"
)

// WriteCSV writes a header line and one line per pair
func WriteCSV(w io.Writer, report *reconciliation.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := cw.Write(Record(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
