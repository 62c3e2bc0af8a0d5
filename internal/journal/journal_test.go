package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesfrais/internal/core"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordScan(ctx, core.ScanEntry{ID: "a", FileName: "t1.jpg", Outcome: "applied", Applied: []string{"amount", "date"}, RawText: "TOTAL 12,50", CreatedAt: base}))
	require.NoError(t, j.RecordScan(ctx, core.ScanEntry{ID: "b", FileName: "t2.jpg", Outcome: "partial", Message: "rien", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, j.RecordScan(ctx, core.ScanEntry{ID: "c", FileName: "t3.jpg", Outcome: "server", CreatedAt: base.Add(2 * time.Minute)}))

	all, err := j.Recent(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)
	assert.Equal(t, []string{"amount", "date"}, all[2].Applied)
	assert.Equal(t, "TOTAL 12,50", all[2].RawText)
	assert.True(t, base.Equal(all[2].CreatedAt))
	assert.Nil(t, all[1].Applied)

	partial, err := j.Recent(ctx, 10, "partial")
	require.NoError(t, err)
	require.Len(t, partial, 1)
	assert.Equal(t, "rien", partial[0].Message)

	limited, err := j.Recent(ctx, 2, "")
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, j.RecordScan(context.Background(), core.ScanEntry{ID: "x", FileName: "f", Outcome: "transport"}))
	require.NoError(t, j.Close())

	j, err = Open(path, nil)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.Recent(context.Background(), 0, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestDuplicateIDFails(t *testing.T) {
	j := openTemp(t)
	e := core.ScanEntry{ID: "dup", FileName: "f", Outcome: "applied"}
	require.NoError(t, j.RecordScan(context.Background(), e))
	assert.Error(t, j.RecordScan(context.Background(), e))
}
