package scratch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCreatesFramesSubdirectory(t *testing.T) {
	base := t.TempDir()
	tree, err := New(base, "meeting-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(tree.FramesDir()); err != nil {
		t.Fatalf("frames dir not created: %v", err)
	}
}

func TestCommitMovesFileAndRemovesScratch(t *testing.T) {
	base := t.TempDir()
	tree, err := New(base, "meeting-1")
	if err != nil {
		t.Fatal(err)
	}

	encoded := tree.Path("out.mp4")
	if err := os.WriteFile(encoded, []byte("fake mp4"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "recordings", "meeting-1.mp4")
	if err := tree.Commit(encoded, dest); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected committed file at dest: %v", err)
	}
	if _, err := os.Stat(tree.Root()); !os.IsNotExist(err) {
		t.Fatalf("expected scratch root removed, got err = %v", err)
	}
}

func TestCommitFailureLeavesScratchIntact(t *testing.T) {
	base := t.TempDir()
	tree, err := New(base, "meeting-1")
	if err != nil {
		t.Fatal(err)
	}

	// encodedPath never created, so the rename must fail.
	err = tree.Commit(tree.Path("missing.mp4"), filepath.Join(t.TempDir(), "out.mp4"))
	if err == nil {
		t.Fatal("expected error for missing encoded file")
	}
	if _, statErr := os.Stat(tree.Root()); statErr != nil {
		t.Fatalf("scratch root should still exist after failed commit: %v", statErr)
	}
}
