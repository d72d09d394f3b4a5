// Package store saves and loads whole scenes. The container is chosen by
// file extension: ".scene" files hold the scene document as JSON,
// ".sqlite" files hold it as rows of an SQLite database.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/stereo/pkg/scene"
)

// Supported file extensions.
const (
	ExtJSON   = ".scene"
	ExtSQLite = ".sqlite"
)

// Format returns the extension that selects the container for path, or an
// error wrapping scene.ErrInvalidFormat.
func Format(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ExtJSON, ExtSQLite:
		return ext, nil
	}
	return "", fmt.Errorf("%w: %q: extension must be %s or %s", scene.ErrInvalidFormat, path, ExtJSON, ExtSQLite)
}

// SaveFile writes the whole scene to path. The extension is checked before
// any file is touched.
func SaveFile(ctx context.Context, r *scene.Registry, path string) error {
	ext, err := Format(path)
	if err != nil {
		return err
	}
	doc := r.Document()
	switch ext {
	case ExtSQLite:
		err = saveSQLite(ctx, doc, path)
	default:
		err = saveJSON(doc, path)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// LoadFile reads the scene at path and, if it is valid, replaces the
// contents of r with it. On any error r is left untouched.
func LoadFile(ctx context.Context, r *scene.Registry, path string) error {
	ext, err := Format(path)
	if err != nil {
		return err
	}
	var doc *scene.Document
	switch ext {
	case ExtSQLite:
		doc, err = loadSQLite(ctx, path)
	default:
		doc, err = loadJSON(path)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	loaded, err := scene.FromDocument(doc)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	r.Replace(loaded)
	return nil
}
