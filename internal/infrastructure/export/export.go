// Package export renders audit reports as CSV, XLSX or a plain text table.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/printchain/backend/internal/domain/reconciliation"
)

// Format is an export file format
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want table, csv or xlsx)", s)
	}
}

// ContentType returns the media type of f
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension of f without the dot
func (f Format) Extension() string {
	if f == FormatTable {
		return "txt"
	}
	return string(f)
}

// Header is the column order of every export
var Header = []string{
	"job_no",
	"po_number",
	"po_origin",
	"po_target",
	"po_vendor_amount",
	"invoice_no",
	"invoice_from",
	"invoice_to",
	"invoice_amount",
	"mismatch",
	"missing_invoice",
	"difference",
}

// Record renders a row as strings in Header order. Amounts keep two decimals.
func Record(row reconciliation.PairRow) []string {
	invoiceAmount := ""
	if row.InvoiceAmount != nil {
		invoiceAmount = row.InvoiceAmount.StringFixed(2)
	}
	return []string{
		row.JobNo,
		row.PONumber,
		row.POOrigin,
		row.POTarget,
		row.POVendorAmount.StringFixed(2),
		row.InvoiceNo,
		row.InvoiceFrom,
		row.InvoiceTo,
		invoiceAmount,
		strconv.FormatBool(row.Mismatch),
		strconv.FormatBool(row.MissingInvoice),
		row.Difference.StringFixed(2),
	}
}

// Write renders report to w in format f
func Write(w io.Writer, f Format, report *reconciliation.Report) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, report)
	case FormatXLSX:
		return WriteXLSX(w, report)
	case FormatTable:
		return WriteTable(w, report)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}
