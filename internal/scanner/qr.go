package scanner

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/rotisserie/eris"

	"github.com/dittoscan/ditto/internal/imaging"
)

var containerPattern = regexp.MustCompile(`(TOTE-\d+)`)

// ReadContainerQR tries to decode a container QR code out of the image at
// path. It returns the container ID, or an empty string when the image holds
// no readable container code (a normal outcome for item scans).
func ReadContainerQR(path string) (string, error) {
	img, err := imaging.Decode(path)
	if err != nil {
		return "", err
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", eris.Wrap(err, "scanner: prepare qr bitmap")
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		// NotFoundException and friends: the scan is an item, not a QR sheet.
		return "", nil
	}

	return ExtractContainerID(result.GetText()), nil
}

// ExtractContainerID pulls a container ID out of a QR payload. Payloads are
// either a JSON object with a tote_id field or free text carrying a TOTE-NNN
// token.
func ExtractContainerID(payload string) string {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ""
	}

	var obj struct {
		ToteID string `json:"tote_id"`
	}
	if err := json.Unmarshal([]byte(payload), &obj); err == nil && obj.ToteID != "" {
		return strings.TrimSpace(obj.ToteID)
	}

	return containerPattern.FindString(payload)
}
