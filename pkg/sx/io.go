package sx

import (
	"os"
	"path/filepath"

	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
)

// ReadFile parses the document at path. The file is expected to hold a
// single top-level list (the document root).
func ReadFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.IOError, err, "opening %s", path)
	}
	defer f.Close()

	root, err := ParseOne(f)
	if err != nil {
		return nil, err // already a *kerrors.Error (BadGrammar)
	}
	return root, nil
}

// WriteFileAtomic serializes root and writes it to path via a temp file
// in the same directory, renamed into place on success. Per spec.md §9
// ("Scoped file mutation"): a failure before the rename leaves the
// original file untouched.
func WriteFileAtomic(path string, root *Node) error {
	text := Serialize(root)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".sx-write-*")
	if err != nil {
		return kerrors.Wrap(kerrors.IOError, err, "creating temp file in %s", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return kerrors.Wrap(kerrors.IOError, err, "writing %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return kerrors.Wrap(kerrors.IOError, err, "closing %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return kerrors.Wrap(kerrors.IOError, err, "renaming %s to %s", tmpPath, path)
	}
	return nil
}

// ModTime returns the file's modification time in Unix nanoseconds.
func ModTime(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, kerrors.Wrap(kerrors.IOError, err, "stat %s", path)
	}
	return info.ModTime().UnixNano(), nil
}
