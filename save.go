package pacx

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Save writes the archive to path.
//
// Uses atomic writes (temp file + rename) to prevent partial writes on
// failure. Unless SaveWithOverwrite(true) is given, an existing file at path
// fails with ErrAlreadyExists, both before anything is written and when the
// file appears while the archive is being encoded. Split companion
// names derive from the base name of path unless SaveWithName is given.
func (a *Archive) Save(path string, opts ...SaveOption) (*SaveResult, error) {
	cfg := newSaveConfig(opts)
	if cfg.name == "" {
		cfg.name = filepath.Base(path)
	}

	if !cfg.overwrite {
		if _, err := os.Lstat(path); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	var res *SaveResult
	err := writeFileAtomic(path, cfg.overwrite, func(f *os.File) error {
		bw := bufio.NewWriter(f)
		var err error
		if res, err = a.encode(bw, cfg); err != nil {
			return err
		}
		return bw.Flush()
	})
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}
	if err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}
	return res, nil
}

// writeFileAtomic streams content into a temp file next to target, then
// moves it into place. With overwrite false the temp file is hard-linked to
// target, which fails with fs.ErrExist instead of replacing a file that
// appeared after the caller's check.
func writeFileAtomic(target string, overwrite bool, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".pacx-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if overwrite {
		if err := os.Rename(tmpPath, target); err != nil {
			os.Remove(tmpPath)
			return err
		}
		return nil
	}

	err = os.Link(tmpPath, target)
	os.Remove(tmpPath)
	return err
}
