// Package wipe implements best-effort irreversible deletion of files and
// directory trees.
//
// Regular files are overwritten in place with random bytes, multiple passes,
// each pass forced to disk before the next, and then unlinked. Directories
// are destroyed bottom-up. Symbolic links are removed without ever touching
// their target. Individual failures are collected and logged but never stop
// the rest of the tree; the caller inspects the returned Result.
//
// This is not a defense against forensic recovery on wear-leveled storage
// (SSDs remap writes); it raises the bar on ordinary media and ordinary
// tools.
package wipe

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultPasses is the number of overwrite passes used when Engine.Passes
// is zero.
const DefaultPasses = 3

// chunkSize bounds the per-write buffer so large files do not blow up
// memory during overwrite.
const chunkSize = 1 << 20 // 1 MiB

// Engine destroys filesystem paths. The zero value is usable: three passes,
// crypto/rand randomness, default logger.
type Engine struct {
	// Passes is the number of full-length overwrite passes per file.
	Passes int

	// Rand supplies the overwrite bytes. Defaults to crypto/rand.Reader.
	Rand io.Reader

	// Log receives per-entry failure warnings. Defaults to slog.Default().
	Log *slog.Logger
}

// Failure records one entry the engine could not destroy.
type Failure struct {
	Path string
	Op   string // "stat", "overwrite", "remove"
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

// Result reports what one Destroy call did.
type Result struct {
	// Removed counts entries (files, links, directories) actually removed.
	Removed int

	// Failures lists entries that survived. Empty means a clean wipe.
	Failures []Failure
}

// Partial reports whether anything under the target survived.
func (r *Result) Partial() bool {
	return len(r.Failures) > 0
}

// Destroy irreversibly removes the file, symbolic link, or directory tree
// at path. A missing path is a no-op. Destroy never returns a Go error:
// per-entry failures are logged and collected in the Result, and processing
// always continues with sibling entries.
func (e *Engine) Destroy(path string) *Result {
	res := &Result{}
	e.destroy(path, res)
	return res
}

func (e *Engine) destroy(path string, res *Result) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		e.fail(res, path, "stat", err)
		return
	}

	switch {
	// Symlink check must come first: a link to a directory must be removed
	// as a link, never recursed into.
	case info.Mode()&os.ModeSymlink != 0:
		if err := os.Remove(path); err != nil {
			e.fail(res, path, "remove", err)
			return
		}
		res.Removed++

	case info.IsDir():
		e.destroyDir(path, info, res)

	default:
		e.destroyFile(path, info, res)
	}
}

func (e *Engine) destroyDir(path string, info os.FileInfo, res *Result) {
	// Restore owner write+execute up front so read-only directories don't
	// block enumeration or removal of their entries.
	if info.Mode().Perm()&0300 != 0300 {
		if err := os.Chmod(path, info.Mode().Perm()|0300); err != nil {
			e.logger().Warn("could not restore directory permissions",
				"path", path, "error", err)
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		e.fail(res, path, "stat", err)
		return
	}

	for _, ent := range entries {
		e.destroy(filepath.Join(path, ent.Name()), res)
	}

	if err := os.Remove(path); err != nil {
		e.fail(res, path, "remove", err)
		return
	}
	res.Removed++
}

func (e *Engine) destroyFile(path string, info os.FileInfo, res *Result) {
	if info.Mode().Perm()&0200 == 0 {
		if err := os.Chmod(path, info.Mode().Perm()|0200); err != nil {
			e.logger().Warn("could not restore file permissions",
				"path", path, "error", err)
		}
	}

	if err := e.overwrite(path); err != nil {
		e.fail(res, path, "overwrite", err)
		return
	}

	if err := os.Remove(path); err != nil {
		e.fail(res, path, "remove", err)
		return
	}
	res.Removed++
}

// overwrite writes random bytes over the file's full length, passes times,
// forcing each pass to the storage device before starting the next. The
// length is captured once per pass so an external truncation mid-pass does
// not cause a short final pass to go unnoticed next pass.
func (e *Engine) overwrite(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	for pass := 1; pass <= e.passes(); pass++ {
		fi, err := f.Stat()
		if err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}

		remaining := fi.Size()
		for remaining > 0 {
			n := int64(len(buf))
			if remaining < n {
				n = remaining
			}
			if _, err := io.ReadFull(e.random(), buf[:n]); err != nil {
				return fmt.Errorf("pass %d: read random: %w", pass, err)
			}
			if _, err := f.Write(buf[:n]); err != nil {
				return fmt.Errorf("pass %d: %w", pass, err)
			}
			remaining -= n
		}

		if err := f.Sync(); err != nil {
			return fmt.Errorf("pass %d: sync: %w", pass, err)
		}
	}

	return nil
}

func (e *Engine) fail(res *Result, path, op string, err error) {
	res.Failures = append(res.Failures, Failure{Path: path, Op: op, Err: err})
	e.logger().Warn("secure delete failed, continuing",
		"path", path, "op", op, "error", err)
}

func (e *Engine) passes() int {
	if e.Passes > 0 {
		return e.Passes
	}
	return DefaultPasses
}

func (e *Engine) random() io.Reader {
	if e.Rand != nil {
		return e.Rand
	}
	return rand.Reader
}

func (e *Engine) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}
