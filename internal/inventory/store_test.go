package inventory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittoscan/ditto/internal/model"
)

func testRecord(container string, seq int, name string, value float64) model.InventoryRecord {
	return model.InventoryRecord{
		ID:          name,
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ContainerID: container,
		Sequence:    seq,
		ItemName:    name,
		Status:      model.StatusSuccess,
		Analysis: &model.Analysis{
			ItemName:          name,
			Category:          model.CategoryVideoGameSoftware,
			Confidence:        model.ConfidenceHigh,
			EstimatedValueUSD: value,
			PricingBasis:      model.BasisLooseCart,
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	// Missing file reads back empty.
	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, store.Append(testRecord("TOTE-001", 1, "Chrono Trigger", 120)))
	require.NoError(t, store.Append(testRecord("TOTE-001", 2, "Earthbound", 250)))

	records, err = store.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Chrono Trigger", records[0].ItemName)
	assert.Equal(t, 2, records[1].Sequence)
}

func TestStoreCSVRecomputedOnEveryWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Append(testRecord("TOTE-001", 1, "Chrono Trigger", 120)))

	failed := model.InventoryRecord{
		ContainerID:  "TOTE-001",
		Sequence:     2,
		Status:       model.StatusFailed,
		Error:        "lens: send request: timeout",
		OriginalFile: "/scans/img002.png",
	}
	require.NoError(t, store.Append(failed))

	data, err := os.ReadFile(filepath.Join(dir, "inventory.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "tote_id,item_sequence,item_name,category,grade,grader,estimated_value_usd,confidence,manual_review,status", lines[0])
	assert.Contains(t, lines[1], "Chrono Trigger")
	assert.Contains(t, lines[1], "success")
	// Failed rows keep container and sequence, nothing else.
	assert.Contains(t, lines[2], "TOTE-001,2,,,")
	assert.Contains(t, lines[2], "failed")
}

func TestStoreSaveIsAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save([]model.InventoryRecord{testRecord("TOTE-001", 1, "A", 10)}))
	require.NoError(t, store.Save([]model.InventoryRecord{
		testRecord("TOTE-001", 1, "A", 10),
		testRecord("TOTE-001", 2, "B", 20),
	}))

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// The rename-over-target write must not strand temp files.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"inventory.json", "inventory.csv", "inventory.lock"}, names)
}

func TestWriteFileAtomicReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeFileAtomic(path, []byte("first")))
	require.NoError(t, writeFileAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestStoreRemoveResequences(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Append(testRecord("TOTE-001", 1, "A", 10)))
	require.NoError(t, store.Append(testRecord("TOTE-001", 2, "B", 20)))
	require.NoError(t, store.Append(testRecord("TOTE-001", 3, "C", 30)))
	require.NoError(t, store.Append(testRecord("TOTE-002", 1, "D", 40)))

	removed, err := store.Remove("TOTE-001", 2)
	require.NoError(t, err)
	assert.Equal(t, "B", removed.ItemName)

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// TOTE-001 is contiguous again; TOTE-002 untouched.
	seqs := map[string][]int{}
	for _, r := range records {
		seqs[r.ContainerID] = append(seqs[r.ContainerID], r.Sequence)
	}
	assert.Equal(t, []int{1, 2}, seqs["TOTE-001"])
	assert.Equal(t, []int{1}, seqs["TOTE-002"])

	_, err = store.Remove("TOTE-001", 9)
	assert.Error(t, err)
}

func TestMaxSequence(t *testing.T) {
	t.Parallel()

	records := []model.InventoryRecord{
		testRecord("TOTE-001", 1, "A", 10),
		testRecord("TOTE-001", 7, "B", 20),
		testRecord("TOTE-002", 3, "C", 30),
	}
	assert.Equal(t, 7, MaxSequence(records, "TOTE-001"))
	assert.Equal(t, 3, MaxSequence(records, "TOTE-002"))
	assert.Equal(t, 0, MaxSequence(records, "TOTE-003"))
}

func TestTotalValueSkipsFailed(t *testing.T) {
	t.Parallel()

	records := []model.InventoryRecord{
		testRecord("TOTE-001", 1, "A", 10),
		{ContainerID: "TOTE-001", Sequence: 2, Status: model.StatusFailed},
		testRecord("TOTE-001", 3, "C", 30),
	}
	assert.Equal(t, 40.0, TotalValue(records))
}

func TestStoreBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append(testRecord("TOTE-001", 1, "A", 10)))

	backupDir := filepath.Join(dir, "backups")
	path, err := store.Backup(backupDir)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "inventory_backup_"))
}
