// Package scratch manages the per-meeting working directory every ingest
// and emission stage writes intermediate artifacts into (frames, cursor
// sprite, chat SVG, timestamps files, the normalized shapes.svg, chapter
// metadata). Commit and rollback are explicit, result-returning operations
// rather than deferred process-exit side effects, so the pipeline can
// decide what happened instead of relying on signal handlers.
package scratch

import (
	"os"
	"path/filepath"

	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// Tree is a handle on one meeting's scratch root.
type Tree struct {
	root string
}

// New creates (or reuses, if already present) a scratch root for meetingID
// under baseDir, along with the frames/, cursor/, chats/, and timestamps/
// subdirectories every emission stage writes into. The concat playlist
// lives under timestamps/ and references frames by "../frames/" paths, so
// the relative layout matters.
func New(baseDir, meetingID string) (*Tree, error) {
	root := filepath.Join(baseDir, meetingID+".scratch")
	for _, sub := range []string{"frames", "cursor", "chats", "timestamps"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, pipelineerr.Output(root, err)
		}
	}
	return &Tree{root: root}, nil
}

// Root returns the scratch tree's base path.
func (t *Tree) Root() string {
	return t.root
}

// FramesDir returns the subdirectory composed whiteboard frames are
// written into.
func (t *Tree) FramesDir() string {
	return filepath.Join(t.root, "frames")
}

// Path joins name against the scratch root, for intermediate files either
// directly under it (chapter metadata, shapes_modified.svg) or inside one of
// the subdirectories New creates (e.g. "cursor/cursor.svg",
// "timestamps/chat_timestamps").
func (t *Tree) Path(name string) string {
	return filepath.Join(t.root, name)
}

// Commit moves the finished MP4 from its scratch-tree path to dest and then
// deletes the entire scratch tree. A failed rename leaves the scratch tree
// intact for diagnosis and the output untouched.
func (t *Tree) Commit(encodedPath, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return pipelineerr.Output(dest, err)
	}
	if err := os.Rename(encodedPath, dest); err != nil {
		return pipelineerr.Output(dest, err)
	}
	if err := os.RemoveAll(t.root); err != nil {
		return pipelineerr.Output(t.root, err)
	}
	return nil
}

// Rollback leaves the scratch tree on disk untouched, for post-mortem
// inspection of whatever stage failed; it does nothing. There is nothing to
// undo, since every stage so far wrote only within the scratch tree.
func (t *Tree) Rollback() {
}
