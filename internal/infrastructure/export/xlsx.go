package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/printchain/backend/internal/domain/reconciliation"
	"github.com/xuri/excelize/v2"
)

const (
	pairsSheet   = "Pairs"
	summarySheet = "Summary"
)

// amountColumns are the Header positions written as numbers
var amountColumns = map[int]bool{4: true, 8: true, 11: true}

// WriteXLSX writes a workbook with a Pairs sheet and a Summary sheet.
// Mismatched rows are filled red and rows without an invoice amber.
func WriteXLSX(w io.Writer, report *reconciliation.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", pairsSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	mismatch, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F8CBAD"}},
	})
	if err != nil {
		return err
	}
	missing, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFE699"}},
	})
	if err != nil {
		return err
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(pairsSheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(Header))
	if err := f.SetCellStyle(pairsSheet, "A1", last+"1", bold); err != nil {
		return err
	}

	for i, row := range report.Rows {
		rowNo := i + 2
		cells := make([]any, len(Header))
		for col, v := range Record(row) {
			cells[col] = v
			if amountColumns[col] && v != "" {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					cells[col] = n
				}
			}
		}
		cell := fmt.Sprintf("A%d", rowNo)
		if err := f.SetSheetRow(pairsSheet, cell, &cells); err != nil {
			return err
		}
		style := 0
		switch {
		case row.Mismatch:
			style = mismatch
		case row.MissingInvoice:
			style = missing
		}
		if style != 0 {
			if err := f.SetCellStyle(pairsSheet, cell, fmt.Sprintf("%s%d", last, rowNo), style); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(pairsSheet, "A", last, 18); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	summary := [][]any{
		{"generated_at", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{"total_pairs", report.TotalPairs},
		{"in_sync", report.InSync},
		{"mismatched", report.Mismatched},
		{"missing_invoices", report.MissingInvoices},
		{"cancelled_unbilled", report.CancelledUnbilled},
		{"repaired", report.Repaired},
		{"percent_in_sync", report.PercentInSync.StringFixed(2)},
	}
	for i, line := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &line); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}
