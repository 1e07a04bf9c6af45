package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywallet/internal/sheets"
)

func TestJournal_UpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	j := New()

	ref, err := j.Upsert(ctx, sheets.JournalRow{TransactionID: 1, Remarks: "a"})
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)
	_, err = j.Upsert(ctx, sheets.JournalRow{TransactionID: 2})
	require.NoError(t, err)

	ref, err = j.Upsert(ctx, sheets.JournalRow{TransactionID: 1, Remarks: "b"})
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref, "existing row is replaced in place")

	rows := j.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].Remarks)

	require.NoError(t, j.Remove(ctx, 1))
	require.NoError(t, j.Remove(ctx, 42))
	rows = j.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].TransactionID)
}
