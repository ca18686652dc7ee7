package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	RunsBucket    = []byte("runs")
	EntriesBucket = []byte("entries")
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrInvalidRun  = errors.New("invalid run id")
)

// Journal is a bbolt database of processing runs
type Journal struct {
	db *bolt.DB
}

// Open opens or creates a journal at path, creating parent directories
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{RunsBucket, EntriesBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// Close closes the journal
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the database file path
func (j *Journal) Path() string {
	return j.db.Path()
}

// BeginRun stores a new run with a fresh ID and start time
func (j *Journal) BeginRun(operation, root string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Operation: operation,
		Root:      root,
		Started:   time.Now(),
	}

	err := j.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.Bucket(EntriesBucket).CreateBucket([]byte(run.ID)); err != nil {
			return err
		}
		return putJSON(tx.Bucket(RunsBucket), []byte(run.ID), run)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters of a run
func (j *Journal) FinishRun(run *Run) error {
	if run.Finished.IsZero() {
		run.Finished = time.Now()
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket(RunsBucket)
		if runs.Get([]byte(run.ID)) == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
		}
		return putJSON(runs, []byte(run.ID), run)
	})
}

// Record appends an entry to a run. Safe for concurrent use.
func (j *Journal) Record(runID string, entry Entry) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(EntriesBucket).Bucket([]byte(runID))
		if entries == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		seq, err := entries.NextSequence()
		if err != nil {
			return err
		}
		entry.RunID = runID
		entry.Seq = seq
		if entry.Time.IsZero() {
			entry.Time = time.Now()
		}
		return putJSON(entries, seqKey(seq), entry)
	})
}

// Runs returns all runs, oldest first
func (j *Journal) Runs() ([]Run, error) {
	var runs []Run
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(RunsBucket).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return err
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(runs, func(i, k int) bool {
		return runs[i].Started.Before(runs[k].Started)
	})
	return runs, nil
}

// GetRun returns a single run. The id may be a unique prefix.
func (j *Journal) GetRun(id string) (*Run, error) {
	var run *Run
	err := j.db.View(func(tx *bolt.Tx) error {
		key, data, err := findRun(tx, id)
		if err != nil {
			return err
		}
		run = &Run{}
		if err := json.Unmarshal(data, run); err != nil {
			return fmt.Errorf("corrupt run %s: %w", key, err)
		}
		return nil
	})
	return run, err
}

// Entries returns the entries of a run in the order they were recorded
func (j *Journal) Entries(runID string) ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		key, _, err := findRun(tx, runID)
		if err != nil {
			return err
		}
		b := tx.Bucket(EntriesBucket).Bucket(key)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})
	return entries, err
}

// DeleteRun removes a run and all its entries
func (j *Journal) DeleteRun(runID string) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		key, _, err := findRun(tx, runID)
		if err != nil {
			return err
		}
		entries := tx.Bucket(EntriesBucket)
		if entries.Bucket(key) != nil {
			if err := entries.DeleteBucket(key); err != nil {
				return err
			}
		}
		return tx.Bucket(RunsBucket).Delete(key)
	})
}

// Clear removes every run
func (j *Journal) Clear() error {
	return j.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{RunsBucket, EntriesBucket} {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// findRun resolves an exact run ID or a unique prefix of one
func findRun(tx *bolt.Tx, id string) ([]byte, []byte, error) {
	if id == "" {
		return nil, nil, ErrInvalidRun
	}
	runs := tx.Bucket(RunsBucket)
	if data := runs.Get([]byte(id)); data != nil {
		return []byte(id), data, nil
	}

	var key, data []byte
	c := runs.Cursor()
	prefix := []byte(id)
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if key != nil {
			return nil, nil, fmt.Errorf("%w: %s is ambiguous", ErrInvalidRun, id)
		}
		key = append([]byte(nil), k...)
		data = append([]byte(nil), v...)
	}
	if key == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return key, data, nil
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// Compact creates a compacted copy of the journal, removing unused space.
// This is useful after deleting runs to reclaim disk space.
func (j *Journal) Compact() error {
	srcPath := j.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact journal: %w", err)
	}

	if err := bolt.Compact(dst, j.db, 0); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact journal: %w", err)
	}

	if err := j.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source journal: %w", err)
	}

	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace journal: %w", err)
	}
	os.Remove(backupPath)

	j.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen journal: %w", err)
	}
	return nil
}
