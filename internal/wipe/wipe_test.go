package wipe

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// countingRand is a deterministic randomness source that counts how many
// bytes were drawn from it.
type countingRand struct {
	n int64
}

func (c *countingRand) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(i)
	}
	c.n += int64(len(p))
	return len(p), nil
}

func quietEngine() *Engine {
	return &Engine{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestDestroy_MissingPath_NoOp(t *testing.T) {
	e := quietEngine()

	res := e.Destroy(filepath.Join(t.TempDir(), "nope", "nothing"))
	if res.Partial() {
		t.Errorf("Destroy() of missing path reported failures: %v", res.Failures)
	}
	if res.Removed != 0 {
		t.Errorf("Removed = %d, want 0", res.Removed)
	}
}

func TestDestroy_File_OverwritesThenRemoves(t *testing.T) {
	const size = 300 * 1024

	path := filepath.Join(t.TempDir(), "secrets.bin")
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rand := &countingRand{}
	e := quietEngine()
	e.Passes = 2
	e.Rand = rand

	res := e.Destroy(path)
	if res.Partial() {
		t.Fatalf("Destroy() reported failures: %v", res.Failures)
	}
	if res.Removed != 1 {
		t.Errorf("Removed = %d, want 1", res.Removed)
	}

	// Exactly passes x size bytes of randomness were written.
	if rand.n != 2*size {
		t.Errorf("random bytes drawn = %d, want %d", rand.n, 2*size)
	}

	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("file should be gone, Lstat err = %v", err)
	}
}

func TestDestroy_DefaultPasses(t *testing.T) {
	const size = 4096

	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rand := &countingRand{}
	e := quietEngine()
	e.Rand = rand

	if res := e.Destroy(path); res.Partial() {
		t.Fatalf("Destroy() reported failures: %v", res.Failures)
	}
	if rand.n != DefaultPasses*size {
		t.Errorf("random bytes drawn = %d, want %d", rand.n, DefaultPasses*size)
	}
}

func TestDestroy_ReadOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro")
	if err := os.WriteFile(path, []byte("locked"), 0400); err != nil {
		t.Fatalf("write: %v", err)
	}

	res := quietEngine().Destroy(path)
	if res.Partial() {
		t.Fatalf("Destroy() of read-only file failed: %v", res.Failures)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("read-only file should be gone, Lstat err = %v", err)
	}
}

func TestDestroy_Symlink_RemovesLinkOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	if err := os.WriteFile(target, []byte("keep me"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	res := quietEngine().Destroy(link)
	if res.Partial() {
		t.Fatalf("Destroy() of symlink failed: %v", res.Failures)
	}

	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Errorf("link should be gone, Lstat err = %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "keep me" {
		t.Errorf("target was touched: data=%q err=%v", data, err)
	}
}

func TestDestroy_DanglingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	dir := t.TempDir()
	link := filepath.Join(dir, "dangling")
	if err := os.Symlink(filepath.Join(dir, "no-such-target"), link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	res := quietEngine().Destroy(link)
	if res.Partial() {
		t.Fatalf("Destroy() of dangling symlink failed: %v", res.Failures)
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Errorf("dangling link should be gone, Lstat err = %v", err)
	}
}

func TestDestroy_SymlinkToDirectory_NotRecursed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "realdir")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	inner := filepath.Join(target, "keep.txt")
	if err := os.WriteFile(inner, []byte("keep"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	link := filepath.Join(dir, "dirlink")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	res := quietEngine().Destroy(link)
	if res.Partial() {
		t.Fatalf("Destroy() of dir symlink failed: %v", res.Failures)
	}

	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Errorf("link should be gone, Lstat err = %v", err)
	}
	if _, err := os.Stat(inner); err != nil {
		t.Errorf("contents behind the link must survive: %v", err)
	}
}

func TestDestroy_Tree_BottomUp(t *testing.T) {
	root := filepath.Join(t.TempDir(), "profile")

	// A small tree with a read-only directory and a read-only file inside.
	roDir := filepath.Join(root, "cache", "blobs")
	if err := os.MkdirAll(roDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(roDir, "blob1"), []byte("data"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "settings.json"), []byte("{}"), 0400); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chmod(roDir, 0500); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	res := quietEngine().Destroy(root)
	if res.Partial() {
		t.Fatalf("Destroy() of tree failed: %v", res.Failures)
	}

	if _, err := os.Lstat(root); !os.IsNotExist(err) {
		t.Errorf("tree root should be gone, Lstat err = %v", err)
	}

	// settings.json, blob1, blobs, cache, profile
	if res.Removed != 5 {
		t.Errorf("Removed = %d, want 5", res.Removed)
	}
}

func TestDestroy_TreeContainingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	dir := t.TempDir()
	outside := filepath.Join(dir, "outside.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	root := filepath.Join(dir, "root")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	res := quietEngine().Destroy(root)
	if res.Partial() {
		t.Fatalf("Destroy() failed: %v", res.Failures)
	}

	if _, err := os.Lstat(root); !os.IsNotExist(err) {
		t.Errorf("root should be gone, Lstat err = %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("symlink target outside the tree must survive: %v", err)
	}
}

func TestDestroy_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "once")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	e := quietEngine()
	if res := e.Destroy(path); res.Partial() {
		t.Fatalf("first Destroy() failed: %v", res.Failures)
	}

	res := e.Destroy(path)
	if res.Partial() {
		t.Errorf("second Destroy() should be a clean no-op: %v", res.Failures)
	}
	if res.Removed != 0 {
		t.Errorf("second Destroy() Removed = %d, want 0", res.Removed)
	}
}
