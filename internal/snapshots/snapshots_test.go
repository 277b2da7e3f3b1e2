package snapshots_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/quarrylabs/deskdriver/internal/snapshots"
)

func TestSave_WritesSequencedAndLatest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	png := []byte("fake-png-bytes")

	path, err := snapshots.Save(dir, 7, png)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if want := filepath.Join(dir, "turn-0007.png"); path != want {
		t.Fatalf("want path %s; got %s", want, path)
	}

	got, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(got, png) {
		t.Fatalf("sequenced file mismatch: %v", err)
	}
	latest, err := os.ReadFile(filepath.Join(dir, snapshots.LatestName))
	if err != nil || !bytes.Equal(latest, png) {
		t.Fatalf("latest file mismatch: %v", err)
	}
}

func TestSave_LatestTracksNewest(t *testing.T) {
	dir := t.TempDir()

	if _, err := snapshots.Save(dir, 1, []byte("one")); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	if _, err := snapshots.Save(dir, 2, []byte("two")); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	latest, err := os.ReadFile(filepath.Join(dir, snapshots.LatestName))
	if err != nil || string(latest) != "two" {
		t.Fatalf("want latest=two; got %q, %v", latest, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "turn-0001.png")); err != nil {
		t.Fatalf("older snapshot should remain: %v", err)
	}
}
