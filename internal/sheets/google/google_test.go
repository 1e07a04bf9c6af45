package google

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "mywallet/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNew_UnreadableCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: "/does/not/exist.json"})
	assert.ErrorContains(t, err, "read service account file")
}

func TestFindRow(t *testing.T) {
	values := [][]any{{"ID"}, {"7"}, {}, {" 12 "}, {float64(3)}}

	assert.Equal(t, 2, findRow(values, 7))
	assert.Equal(t, 4, findRow(values, 12))
	assert.Equal(t, 5, findRow(values, 3))
	assert.Equal(t, 0, findRow(values, 99))
	assert.Equal(t, 0, findRow(nil, 1))
}

func TestRowRange(t *testing.T) {
	assert.Equal(t, "Journal!A4:J4", rowRange("Journal", 4))
}

func TestClient_UninitializedService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Journal"}

	_, err := c.Upsert(context.Background(), ports.JournalRow{TransactionID: 1})
	assert.EqualError(t, err, "sheets service not initialized")
	assert.EqualError(t, c.Remove(context.Background(), 1), "sheets service not initialized")
}

func TestToCells(t *testing.T) {
	cells := toCells(ports.JournalRow{TransactionID: 5, Date: "2024-01-01", Debit: "3.00"}.Values())
	require.Len(t, cells, len(ports.Header))
	assert.Equal(t, "5", cells[0])
	assert.Equal(t, "3.00", cells[6])
}
