// Package safefile opens untrusted paths defensively. Ruleset files may
// come from arbitrary user-supplied locations, so special files are
// rejected outright.
package safefile

import (
	"errors"
	"os"
)

// ErrNotRegularFile is returned for symlinks, FIFOs, devices, sockets
// and directories.
var ErrNotRegularFile = errors.New("not a regular file")

// OpenRegular opens path and verifies it refers to a regular file.
//
// The path is lstat'd first so symlinks are rejected without being
// followed, then the open descriptor is stat'd again to catch the file
// being swapped in between. A narrow race window remains; the standard
// library exposes no portable O_NOFOLLOW.
//
// The caller owns the returned file and must close it.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}
	return f, info, nil
}
