// Package snapshots persists post-action screenshots so a human can follow
// the driver's progress on disk.
package snapshots

import (
	"fmt"
	"os"
	"path/filepath"
)

// LatestName is the stable filename always holding the newest screenshot.
const LatestName = "latest.png"

// Save writes the PNG bytes as a sequenced file under dir and refreshes the
// stable latest.png alongside it. It creates dir as needed and returns the
// sequenced path.
func Save(dir string, seq int, png []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshots: mkdir %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("turn-%04d.png", seq))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("snapshots: write %s: %w", path, err)
	}

	latest := filepath.Join(dir, LatestName)
	if err := os.WriteFile(latest, png, 0o644); err != nil {
		return "", fmt.Errorf("snapshots: write %s: %w", latest, err)
	}
	return path, nil
}
