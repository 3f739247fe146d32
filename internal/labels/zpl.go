// Package labels generates Zebra ZPL container labels (3x2 inch, 203 DPI)
// and tracks the physical security seals assigned to each container.
package labels

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	// DefaultLabelInfo is the free-text line printed under the container ID.
	DefaultLabelInfo = "INTL MOVE 2026"

	maxCharsPerLine = 20
	maxInfoLines    = 2

	batchFileName = "print_all.zpl"
)

// qrPayload is what the container QR encodes; the scanner reads tote_id back
// out of it.
type qrPayload struct {
	Type   string `json:"type"`
	ToteID string `json:"tote_id"`
}

// ContainerID formats the nth sequential container ID.
func ContainerID(n int) string {
	return fmt.Sprintf("TOTE-%03d", n)
}

// WrapLabelText breaks info text into lines that fit the label, splitting on
// word boundaries and truncating the last line with "..." when the text
// cannot fit.
func WrapLabelText(text string) []string {
	text = strings.TrimSpace(text)
	if len(text) <= maxCharsPerLine {
		return []string{text}
	}

	var lines []string
	remaining := text
	for i := 0; i < maxInfoLines; i++ {
		if len(remaining) <= maxCharsPerLine {
			lines = append(lines, remaining)
			break
		}
		splitAt := strings.LastIndex(remaining[:maxCharsPerLine], " ")
		if splitAt <= 0 {
			splitAt = maxCharsPerLine
		}
		chunk := strings.TrimRight(remaining[:splitAt], " ")
		remaining = strings.TrimLeft(remaining[splitAt:], " ")
		if i == maxInfoLines-1 && remaining != "" {
			if len(chunk) > maxCharsPerLine-3 {
				chunk = chunk[:maxCharsPerLine-3]
			}
			chunk += "..."
		}
		lines = append(lines, chunk)
	}
	return lines
}

// RenderZPL produces the ZPL program for one container label.
func RenderZPL(containerID, labelInfo string) string {
	data, _ := json.Marshal(qrPayload{Type: "INTL_MOVE_2026_TOTE", ToteID: containerID})

	var info strings.Builder
	y := 320
	for _, line := range WrapLabelText(labelInfo) {
		fmt.Fprintf(&info, "^FO280,%d^A0N,30,30^FD%s^FS\n", y, line)
		y += 35
	}

	return fmt.Sprintf("^XA\n^FO30,30^BQN,2,5^FDMA,%s^FS\n^FO280,60^A0N,70,70^FD%s^FS\n%s^XZ\n",
		data, containerID, info.String())
}

// Generate writes one .zpl file per container, a print_all.zpl batch file,
// and an empty seal-tracking template. It returns the generated container
// IDs.
func Generate(dir string, count int, labelInfo string) ([]string, error) {
	if count < 1 {
		return nil, eris.New("labels: count must be at least 1")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "labels: create %s", dir)
	}

	ids := make([]string, 0, count)
	var batch strings.Builder
	for i := 1; i <= count; i++ {
		id := ContainerID(i)
		zpl := RenderZPL(id, labelInfo)
		if err := os.WriteFile(filepath.Join(dir, id+".zpl"), []byte(zpl), 0o644); err != nil {
			return nil, eris.Wrapf(err, "labels: write %s", id)
		}
		batch.WriteString(zpl)
		ids = append(ids, id)
	}

	if err := os.WriteFile(filepath.Join(dir, batchFileName), []byte(batch.String()), 0o644); err != nil {
		return nil, eris.Wrap(err, "labels: write batch file")
	}

	if err := writeSealTemplate(dir, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Reprint regenerates a single label file, applying any label info override.
func Reprint(dir, containerID, labelInfo string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "labels: create %s", dir)
	}
	path := filepath.Join(dir, containerID+".zpl")
	if err := os.WriteFile(path, []byte(RenderZPL(containerID, labelInfo)), 0o644); err != nil {
		return "", eris.Wrapf(err, "labels: write %s", containerID)
	}
	return path, nil
}
