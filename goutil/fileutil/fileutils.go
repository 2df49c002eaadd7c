package fileutil

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

func FileExists(fs afero.Fs, path string) (bool, error) {
	fileinfo, err := fs.Stat(path)
	if err == nil {
		// A directory is not a file.
		return !fileinfo.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, errors.WithStack(err)
}

// WriteFileAtomic writes data to a sibling temp file and renames it into
// place, so readers never observe a half written file.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, perm); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp)
	}
	return errors.WithStack(fs.Rename(tmp, path))
}
