package research

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	scouterrors "github.com/mrz1836/scout/internal/errors"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// ReadReportFile reads a report JSON file and checks that it holds a JSON object.
func ReadReportFile(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("report file %s: %w", path, scouterrors.ErrInvalidReport)
	}
	return data, nil
}

// LoadFile merges the report JSON stored at path, as LoadFromJSON does.
func (s *Store) LoadFile(fs afero.Fs, path string) error {
	data, err := ReadReportFile(fs, path)
	if err != nil {
		return err
	}
	return s.LoadFromJSON(data)
}

// WriteReportFile writes the report as indented JSON, replacing path atomically.
func WriteReportFile(fs afero.Fs, path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return writeFileAtomic(fs, path, append(data, '\n'))
}

// WriteMarkdownFile writes the report rendered as Markdown.
func WriteMarkdownFile(fs afero.Fs, path string, r Report) error {
	return writeFileAtomic(fs, path, []byte(Markdown(r)))
}

func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, os.FileMode(filePerm)); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("failed to rename report file: %w", err)
	}
	return nil
}
