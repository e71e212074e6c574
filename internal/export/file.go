package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

// ErrUnknownFormat is returned for an export format other than obj or fxm.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export file format.
type Format string

// Export formats.
const (
	FormatOBJ   Format = "obj"
	FormatFrame Format = "fxm"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatOBJ, FormatFrame:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// WriteFile exports m to path, creating parent directories as needed.
func WriteFile(path string, format Format, name, fingerprint string, m *ringmesh.Mesh) error {
	if format != FormatOBJ && format != FormatFrame {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if format == FormatFrame {
		if err := os.WriteFile(path, EncodeFrame(name, fingerprint, m), 0644); err != nil {
			return fmt.Errorf("failed to write frame: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteOBJ(f, name, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// ReadFrame loads a frame file written by WriteFile.
func ReadFrame(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	f, err := DecodeFrame(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
