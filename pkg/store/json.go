package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/stereo/pkg/scene"
)

// saveJSON writes doc next to path and renames it into place, so a failed
// save never leaves a truncated file behind.
func saveJSON(doc *scene.Document, path string) (retErr error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func loadJSON(path string) (*scene.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc scene.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", scene.ErrInvalidFormat, err)
	}
	return &doc, nil
}
