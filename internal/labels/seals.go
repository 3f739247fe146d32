package labels

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
)

const sealFileName = "seal_tracking.json"

// SealTracker maps container IDs to the security seal applied to each. An
// empty seal value means the container is not sealed yet.
type SealTracker struct {
	path  string
	seals map[string]string
}

// ErrSealInUse signals a seal number already assigned to another container.
type ErrSealInUse struct {
	Seal        string
	ContainerID string
}

func (e *ErrSealInUse) Error() string {
	return "labels: seal " + e.Seal + " already assigned to " + e.ContainerID
}

func writeSealTemplate(dir string, ids []string) error {
	seals := make(map[string]string, len(ids))
	for _, id := range ids {
		seals[id] = ""
	}
	t := &SealTracker{path: filepath.Join(dir, sealFileName), seals: seals}
	return t.save()
}

// LoadSeals reads the seal tracking file under dir. The file is created by
// Generate; a missing file is an error so typos in the label directory
// surface early.
func LoadSeals(dir string) (*SealTracker, error) {
	path := filepath.Join(dir, sealFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "labels: read %s (generate labels first)", path)
	}

	seals := map[string]string{}
	if err := json.Unmarshal(data, &seals); err != nil {
		return nil, eris.Wrapf(err, "labels: parse %s", path)
	}
	return &SealTracker{path: path, seals: seals}, nil
}

func (t *SealTracker) save() error {
	data, err := json.MarshalIndent(t.seals, "", "  ")
	if err != nil {
		return eris.Wrap(err, "labels: marshal seal tracking")
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return eris.Wrapf(err, "labels: write %s", t.path)
	}
	return nil
}

// Assign records seal as applied to containerID. When the seal is already on
// another container and force is false, it returns *ErrSealInUse; with force
// the old assignment is cleared.
func (t *SealTracker) Assign(containerID, seal string, force bool) error {
	if _, ok := t.seals[containerID]; !ok {
		return eris.Errorf("labels: unknown container %s", containerID)
	}

	for other, existing := range t.seals {
		if existing == seal && existing != "" && other != containerID {
			if !force {
				return &ErrSealInUse{Seal: seal, ContainerID: other}
			}
			t.seals[other] = ""
		}
	}

	t.seals[containerID] = seal
	return t.save()
}

// Assigned returns the sealed containers sorted by ID.
func (t *SealTracker) Assigned() [][2]string {
	var out [][2]string
	for id, seal := range t.seals {
		if seal != "" {
			out = append(out, [2]string{id, seal})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Unassigned returns the container IDs without a seal, sorted.
func (t *SealTracker) Unassigned() []string {
	var out []string
	for id, seal := range t.seals {
		if seal == "" {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Seal returns the seal assigned to containerID, if any.
func (t *SealTracker) Seal(containerID string) (string, bool) {
	s, ok := t.seals[containerID]
	return s, ok && s != ""
}
