package field

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxFileSize is the ceiling on attached file payloads. Larger files are
// rejected before encoding, never truncated.
const MaxFileSize = 10 << 20 // 10 MiB

// ErrFileTooLarge is returned when an attachment exceeds MaxFileSize.
var ErrFileTooLarge = errors.New("file exceeds 10 MiB limit")

// FileValue is the JSON shape a file-typed field stores as its string
// value. Data is a self-describing base64 data URL, so file bytes live in
// the same flat string map as every other field value.
type FileValue struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// EncodeFile packs file bytes into the string encoding placed in a
// submission's value map.
func EncodeFile(name, mimeType string, data []byte) (string, error) {
	if int64(len(data)) > MaxFileSize {
		return "", ErrFileTooLarge
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	fv := FileValue{
		Name: name,
		Size: int64(len(data)),
		Type: mimeType,
		Data: fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
	}
	out, err := json.Marshal(fv)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseFileValue decodes a stored file value. Callers rendering stored data
// must treat an error as "show the raw string", never as fatal.
func ParseFileValue(raw string) (FileValue, error) {
	var fv FileValue
	if err := json.Unmarshal([]byte(raw), &fv); err != nil {
		return FileValue{}, fmt.Errorf("parsing file value: %w", err)
	}
	if fv.Name == "" && fv.Data == "" {
		return FileValue{}, errors.New("parsing file value: not a file payload")
	}
	return fv, nil
}

// FileBytes recovers the raw bytes from a stored file value's data URL.
func FileBytes(fv FileValue) ([]byte, error) {
	_, b64, ok := strings.Cut(fv.Data, ";base64,")
	if !ok {
		return nil, errors.New("file data is not a base64 data URL")
	}
	return base64.StdEncoding.DecodeString(b64)
}

// EncodeSignature wraps a captured signature raster (PNG bytes) in the same
// data-URL representation a drawing surface reports on pointer-up.
func EncodeSignature(png []byte) string {
	if len(png) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
