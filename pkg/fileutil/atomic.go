// Package fileutil provides bounded reads and atomic writes for the files
// mcpbridge loads and exports.
package fileutil

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpbridge/internal/errors"
)

// ExportPerm is the mode of a newly created export. Exports written with
// revealed secrets carry tokens, so they are private by default.
const ExportPerm os.FileMode = 0o600

// WriteExport replaces the servers file at path with data and reports whether
// the file changed.
//
// The data is staged beside the target, synced, and renamed into place, so a
// concurrent reader sees either the old export or the new one. A missing
// parent directory is created with mode 0o700. An existing file keeps its
// permission bits; a new one gets ExportPerm. When the file already holds
// exactly data it is left untouched.
func WriteExport(path string, data []byte) (bool, error) {
	perm := ExportPerm
	switch info, err := os.Stat(path); {
	case err == nil:
		if info.IsDir() {
			return false, errors.Newf("%s is a directory", path)
		}
		perm = info.Mode().Perm()
		current, err := ReadFileWithLimit(path)
		if err == nil && bytes.Equal(current, data) {
			return false, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return false, errors.Wrap(err, "checking existing export")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false, errors.Wrap(err, "creating export directory")
	}

	// Same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".mcpbridge-export-*.tmp")
	if err != nil {
		return false, errors.Wrap(err, "staging export")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return false, errors.Wrap(err, "setting export permissions")
	}
	if _, err := tmp.Write(data); err != nil {
		return false, errors.Wrap(err, "writing export")
	}
	if err := tmp.Sync(); err != nil {
		return false, errors.Wrap(err, "syncing export")
	}
	if err := tmp.Close(); err != nil {
		return false, errors.Wrap(err, "closing export")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, errors.Wrap(err, "replacing export")
	}
	committed = true
	return true, nil
}
