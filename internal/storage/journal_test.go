package storage

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestBeginAndFinishRun(t *testing.T) {
	j := openJournal(t)

	run, err := j.BeginRun("encrypt", "/data")
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.False(t, run.Done())

	run.Processed = 3
	run.Failed = 1
	require.NoError(t, j.FinishRun(run))

	got, err := j.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "encrypt", got.Operation)
	assert.Equal(t, "/data", got.Root)
	assert.Equal(t, 3, got.Processed)
	assert.Equal(t, 1, got.Failed)
	assert.True(t, got.Done())
}

func TestFinishUnknownRun(t *testing.T) {
	j := openJournal(t)
	err := j.FinishRun(&Run{ID: "does-not-exist"})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRecordEntries(t *testing.T) {
	j := openJournal(t)
	run, err := j.BeginRun("decrypt", "/data")
	require.NoError(t, err)

	require.NoError(t, j.Record(run.ID, Entry{Input: "a.enc", Output: "a", Status: StatusProcessed}))
	require.NoError(t, j.Record(run.ID, Entry{Input: "b", Status: StatusSkipped, Reason: "not encrypted"}))
	require.NoError(t, j.Record(run.ID, Entry{Input: "c.enc", Status: StatusFailed, Error: "decryption failed"}))

	entries, err := j.Entries(run.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.enc", entries[0].Input)
	assert.Equal(t, uint64(1), entries[0].Seq)
	assert.Equal(t, StatusSkipped, entries[1].Status)
	assert.Equal(t, "decryption failed", entries[2].Error)
	for _, e := range entries {
		assert.Equal(t, run.ID, e.RunID)
		assert.False(t, e.Time.IsZero())
	}

	assert.ErrorIs(t, j.Record("missing", Entry{Input: "x"}), ErrRunNotFound)
}

func TestConcurrentRecord(t *testing.T) {
	j := openJournal(t)
	run, err := j.BeginRun("encrypt", "/data")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, j.Record(run.ID, Entry{Input: "f", Status: StatusProcessed}))
		}()
	}
	wg.Wait()

	entries, err := j.Entries(run.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestRunsOrderAndPrefix(t *testing.T) {
	j := openJournal(t)

	first, err := j.BeginRun("encrypt", "/a")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := j.BeginRun("shred", "/b")
	require.NoError(t, err)

	runs, err := j.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, second.ID, runs[1].ID)

	got, err := j.GetRun(second.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = j.GetRun("zzzz")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = j.GetRun("")
	assert.ErrorIs(t, err, ErrInvalidRun)
}

func TestDeleteRunAndClear(t *testing.T) {
	j := openJournal(t)
	a, err := j.BeginRun("encrypt", "/a")
	require.NoError(t, err)
	b, err := j.BeginRun("decrypt", "/b")
	require.NoError(t, err)
	require.NoError(t, j.Record(a.ID, Entry{Input: "x"}))

	require.NoError(t, j.DeleteRun(a.ID))
	_, err = j.Entries(a.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)

	runs, err := j.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, b.ID, runs[0].ID)

	require.NoError(t, j.Clear())
	runs, err = j.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCompactAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)

	run, err := j.BeginRun("encrypt", "/a")
	require.NoError(t, err)
	require.NoError(t, j.Record(run.ID, Entry{Input: "a", Status: StatusProcessed}))

	require.NoError(t, j.Compact())
	entries, err := j.Entries(run.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	got, err := j.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}
