// Package inventory persists the scanned-item ledger: an ordered JSON list
// read in full at startup and rewritten in full after every processed item,
// plus a flat CSV export recomputed on every write.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"

	"github.com/dittoscan/ditto/internal/model"
)

const (
	jsonName = "inventory.json"
	csvName  = "inventory.csv"
	lockName = "inventory.lock"
)

// Store owns the inventory files under one directory. All mutating calls
// take a file lock so the scanner and the maintenance CLIs cannot interleave
// a read-modify-write.
type Store struct {
	dir      string
	jsonPath string
	csvPath  string
	lock     *flock.Flock
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "inventory: create dir %s", dir)
	}
	return &Store{
		dir:      dir,
		jsonPath: filepath.Join(dir, jsonName),
		csvPath:  filepath.Join(dir, csvName),
		lock:     flock.New(filepath.Join(dir, lockName)),
	}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Load reads all records. A missing file is an empty inventory.
func (s *Store) Load() ([]model.InventoryRecord, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, eris.Wrap(err, "inventory: acquire lock")
	}
	defer s.lock.Unlock() //nolint:errcheck

	return s.loadLocked()
}

func (s *Store) loadLocked() ([]model.InventoryRecord, error) {
	data, err := os.ReadFile(s.jsonPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "inventory: read %s", s.jsonPath)
	}

	var records []model.InventoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "inventory: parse %s", s.jsonPath)
	}
	return records, nil
}

// Append adds one record and rewrites both files.
func (s *Store) Append(rec model.InventoryRecord) error {
	if err := s.lock.Lock(); err != nil {
		return eris.Wrap(err, "inventory: acquire lock")
	}
	defer s.lock.Unlock() //nolint:errcheck

	records, err := s.loadLocked()
	if err != nil {
		return err
	}
	records = append(records, rec)
	return s.saveLocked(records)
}

// Save rewrites both files from the given record list.
func (s *Store) Save(records []model.InventoryRecord) error {
	if err := s.lock.Lock(); err != nil {
		return eris.Wrap(err, "inventory: acquire lock")
	}
	defer s.lock.Unlock() //nolint:errcheck

	return s.saveLocked(records)
}

func (s *Store) saveLocked(records []model.InventoryRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "inventory: marshal records")
	}
	if err := writeFileAtomic(s.jsonPath, data); err != nil {
		return eris.Wrapf(err, "inventory: write %s", s.jsonPath)
	}
	return writeCSV(s.csvPath, records)
}

// writeFileAtomic writes to a temp file in the target's directory and renames
// it over the target, so a crash mid-write never leaves a truncated ledger.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return err
	}
	return nil
}

// Remove deletes the record identified by container+sequence, resequences
// the container's remaining items to a contiguous 1..k, and rewrites both
// files. It returns the removed record.
func (s *Store) Remove(containerID string, sequence int) (*model.InventoryRecord, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, eris.Wrap(err, "inventory: acquire lock")
	}
	defer s.lock.Unlock() //nolint:errcheck

	records, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	var removed *model.InventoryRecord
	kept := records[:0]
	for i := range records {
		if removed == nil && records[i].ContainerID == containerID && records[i].Sequence == sequence {
			r := records[i]
			removed = &r
			continue
		}
		kept = append(kept, records[i])
	}
	if removed == nil {
		return nil, eris.Errorf("inventory: no record %s #%d", containerID, sequence)
	}

	Resequence(kept, containerID)
	if err := s.saveLocked(kept); err != nil {
		return nil, err
	}
	return removed, nil
}

// Backup copies the current JSON file into dir with a timestamped name and
// returns the backup path.
func (s *Store) Backup(dir string) (string, error) {
	if err := s.lock.Lock(); err != nil {
		return "", eris.Wrap(err, "inventory: acquire lock")
	}
	defer s.lock.Unlock() //nolint:errcheck

	data, err := os.ReadFile(s.jsonPath)
	if err != nil {
		return "", eris.Wrapf(err, "inventory: read %s", s.jsonPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "inventory: create backup dir %s", dir)
	}

	path := filepath.Join(dir, fmt.Sprintf("inventory_backup_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "inventory: write backup %s", path)
	}
	return path, nil
}

// MaxSequence returns the highest sequence recorded for a container, or 0.
// New containers resume numbering from here so a restarted scanner never
// reissues a sequence.
func MaxSequence(records []model.InventoryRecord, containerID string) int {
	max := 0
	for _, r := range records {
		if r.ContainerID == containerID && r.Sequence > max {
			max = r.Sequence
		}
	}
	return max
}

// Resequence renumbers a container's records to a contiguous 1..k,
// preserving their relative order.
func Resequence(records []model.InventoryRecord, containerID string) {
	var siblings []*model.InventoryRecord
	for i := range records {
		if records[i].ContainerID == containerID {
			siblings = append(siblings, &records[i])
		}
	}
	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].Sequence < siblings[j].Sequence
	})
	for i, r := range siblings {
		r.Sequence = i + 1
	}
}

// TotalValue sums the estimated value of all successful records.
func TotalValue(records []model.InventoryRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.EstimatedValue()
	}
	return total
}
