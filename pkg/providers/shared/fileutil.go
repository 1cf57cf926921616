package shared

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// WriteFileAtomically writes r to path through a temp file and a rename, so
// readers never see a partial result.
func WriteFileAtomically(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return eris.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return eris.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return eris.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "close temp file")
	}
	return eris.Wrapf(os.Rename(tmp.Name(), path), "rename to %s", path)
}
