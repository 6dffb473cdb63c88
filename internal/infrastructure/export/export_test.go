package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/reconciliation"
	"github.com/printchain/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *reconciliation.Report {
	pair := func(jobNo, poNumber, vendor string, invoice *string) reconciliation.PairRow {
		row := reconciliation.PairRow{
			JobID:           uuid.New(),
			JobNo:           jobNo,
			PurchaseOrderID: uuid.New(),
			PONumber:        poNumber,
			POOrigin:        "Northline Brokerage",
			POTarget:        "Acme Print Services",
			POVendorAmount:  decimal.RequireFromString(vendor),
		}
		if invoice != nil {
			id := uuid.New()
			amount := decimal.RequireFromString(*invoice)
			row.InvoiceID = &id
			row.InvoiceNo = "INV-2026-000001"
			row.InvoiceFrom = "Acme Print Services"
			row.InvoiceTo = "Northline Brokerage"
			row.InvoiceAmount = &amount
		}
		reconciliation.ComparePair(&row, valueobject.CentTolerance)
		return row
	}
	same, drifted := "604.25", "600"
	return reconciliation.NewReport([]reconciliation.PairRow{
		pair("J-000001", "PO-J-000001-1", "604.25", &same),
		pair("J-000001", "PO-J-000001-2", "347.4", &drifted),
		pair("J-000002", "PO-J-000002-1", "100", nil),
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: " XLSX ", want: FormatXLSX},
		{in: "", want: FormatTable},
		{in: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "txt", FormatTable.Extension())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{
		"J-000001", "PO-J-000001-2", "Northline Brokerage", "Acme Print Services", "347.40",
		"INV-2026-000001", "Acme Print Services", "Northline Brokerage", "600.00",
		"true", "false", "252.60",
	}, records[2])
	assert.Equal(t, "", records[3][8])
	assert.Equal(t, "true", records[3][10])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleReport()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{pairsSheet, summarySheet}, f.GetSheetList())
	rows, err := f.GetRows(pairsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "PO-J-000001-1", rows[1][1])
	assert.Equal(t, "604.25", rows[1][4])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"percent_in_sync", "33.33"}, summary[7])
	assert.Equal(t, []string{"cancelled_unbilled", "0"}, summary[5])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, sampleReport()))
	out := buf.String()
	assert.Contains(t, out, "JOB_NO")
	assert.Contains(t, out, "PO-J-000002-1")
	assert.Contains(t, out, "mismatched: 1")
	assert.Contains(t, out, "missing invoices: 1")
	assert.Contains(t, out, "33.33%")
}
