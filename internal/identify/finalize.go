package identify

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/dittoscan/ditto/internal/model"
)

var (
	filenameStrip = regexp.MustCompile(`[':]`)
	filenameSafe  = regexp.MustCompile(`[^\w\-_]`)
)

// SanitizeFilename turns an item name into a filesystem-safe fragment:
// spaces become underscores, apostrophes and colons are dropped, and any
// remaining unsafe characters are stripped.
func SanitizeFilename(name string) string {
	s := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	s = filenameStrip.ReplaceAllString(s, "")
	return filenameSafe.ReplaceAllString(s, "")
}

// organizedName builds the destination filename for a processed image.
//
// Standard items: {name}_{container}{ext}, with a _2/_3 counter appended on
// collision. Graded items encode the grading authority, the grade with the
// decimal point removed, and the zero-padded sequence:
// {name}_{GRADER}_{grade}_{seq}_{container}{ext}.
func organizedName(destDir string, rec *model.InventoryRecord, graded bool) string {
	ext := strings.ToLower(filepath.Ext(rec.OriginalFile))
	base := SanitizeFilename(rec.ItemName)

	if graded {
		parts := []string{base}
		if rec.GradeRead != nil && rec.GradeRead.Grade != nil && rec.GradeRead.GradingAuthority != "" {
			gradeStr := strings.ReplaceAll(fmt.Sprintf("%.1f", *rec.GradeRead.Grade), ".", "")
			parts = append(parts, rec.GradeRead.GradingAuthority, gradeStr)
		}
		parts = append(parts, fmt.Sprintf("%03d", rec.Sequence), rec.ContainerID)
		return strings.Join(parts, "_") + ext
	}

	name := fmt.Sprintf("%s_%s%s", base, rec.ContainerID, ext)
	for counter := 2; fileExists(filepath.Join(destDir, name)); counter++ {
		name = fmt.Sprintf("%s_%s_%d%s", base, rec.ContainerID, counter, ext)
	}
	return name
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// finalize moves the scanned image into the per-container directory under
// the organized root and records the resulting path on the record.
func (o *Orchestrator) finalize(rec *model.InventoryRecord, srcPath string, graded bool) error {
	destDir := filepath.Join(o.cfg.OrganizedDir, rec.ContainerID)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return eris.Wrapf(err, "identify: create container directory %s", destDir)
	}

	name := organizedName(destDir, rec, graded)
	destPath := filepath.Join(destDir, name)
	if err := os.Rename(srcPath, destPath); err != nil {
		return eris.Wrapf(err, "identify: move %s", srcPath)
	}

	rec.ImageFile = name
	rec.ImagePath = destPath
	return nil
}

// failedRecord builds the inventory entry for an item that could not be
// processed. The sequence slot is still consumed so the container numbering
// stays aligned with the physical stack.
func failedRecord(containerID string, sequence int, srcPath string, cause error) model.InventoryRecord {
	return model.InventoryRecord{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		ContainerID:  containerID,
		Sequence:     sequence,
		OriginalFile: filepath.Base(srcPath),
		Status:       model.StatusFailed,
		Error:        cause.Error(),
	}
}
