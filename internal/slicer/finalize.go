package slicer

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Finalizer claims a finished download by renaming the newest file in the
// output directory to the job's name. The mtime heuristic assumes nothing
// else writes into the directory during a run; overlapping downloads would
// break it.
type Finalizer struct {
	dir       string
	extension string
	log       *zap.SugaredLogger
}

func NewFinalizer(dir, extension string, log *zap.SugaredLogger) *Finalizer {
	return &Finalizer{dir: dir, extension: extension, log: log}
}

// Claim renames the most recently modified file to <jobName>.<extension> and
// returns the new path. An empty directory is a no-op, not an error.
func (f *Finalizer) Claim(jobName string) (string, error) {
	newest, ok, err := newestFile(f.dir)
	if err != nil {
		return "", err
	}
	if !ok {
		f.log.Warnf("no files in %s, nothing to rename for job %s", f.dir, jobName)
		return "", nil
	}

	target := filepath.Join(f.dir, jobName+"."+f.extension)
	if err := os.Rename(newest, target); err != nil {
		return "", errors.Wrapf(err, "renaming %s to %s", newest, target)
	}
	f.log.Infof("Saved %s", target)
	return target, nil
}

// newestFile returns the regular file with the greatest mtime, ties broken by
// whichever the filesystem enumerates first.
func newestFile(dir string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, errors.Wrapf(err, "reading %s", dir)
	}

	var newest string
	var found bool
	var newestMod int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); !found || mod > newestMod {
			newest = filepath.Join(dir, entry.Name())
			newestMod = mod
			found = true
		}
	}
	return newest, found, nil
}
