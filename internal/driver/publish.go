package driver

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/zowe/zss/internal/project"
)

// artifact collects generated text and hands it over only on Commit, so a
// failed run never leaves a truncated file behind or half a listing on
// stdout.
type artifact struct {
	sum hash.Hash
	w   *bufio.Writer

	// exactly one of these is set
	tmp *os.File
	buf *bytes.Buffer

	dest  string
	destW io.Writer
	done  bool

	// err is the first write error, so callers can tell it apart from
	// read errors surfacing through the same call.
	err error
}

// newFileArtifact streams into a temp file next to path.
func newFileArtifact(path string) (*artifact, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, err
	}
	a := &artifact{sum: sha256.New(), tmp: tmp, dest: path}
	a.w = bufio.NewWriter(io.MultiWriter(tmp, a.sum))
	return a, nil
}

// newWriterArtifact holds the text in memory until Commit copies it to w.
func newWriterArtifact(w io.Writer) *artifact {
	a := &artifact{sum: sha256.New(), buf: &bytes.Buffer{}, destW: w}
	a.w = bufio.NewWriter(io.MultiWriter(a.buf, a.sum))
	return a
}

func (a *artifact) Write(p []byte) (int, error) {
	n, err := a.w.Write(p)
	if err != nil && a.err == nil {
		a.err = err
	}
	return n, err
}

// failed reports whether err came from writing the artifact.
func (a *artifact) failed(err error) bool {
	return a.err != nil && errors.Is(err, a.err)
}

// Digest is the SHA-256 of everything written so far. Call after Commit.
func (a *artifact) Digest() project.Digest {
	var d project.Digest
	copy(d[:], a.sum.Sum(nil))
	return d
}

// Commit publishes the artifact.
func (a *artifact) Commit() error {
	if err := a.w.Flush(); err != nil {
		a.Abort()
		return err
	}
	if a.tmp != nil {
		if err := a.tmp.Close(); err != nil {
			_ = os.Remove(a.tmp.Name())
			return err
		}
		if err := os.Chmod(a.tmp.Name(), 0o644); err != nil {
			_ = os.Remove(a.tmp.Name())
			return err
		}
		if err := os.Rename(a.tmp.Name(), a.dest); err != nil {
			_ = os.Remove(a.tmp.Name())
			return fmt.Errorf("replace %s: %w", a.dest, err)
		}
		a.done = true
		return nil
	}
	if _, err := a.buf.WriteTo(a.destW); err != nil {
		return err
	}
	a.done = true
	return nil
}

// Abort discards the artifact. Safe after Commit.
func (a *artifact) Abort() {
	if a.done || a.tmp == nil {
		return
	}
	_ = a.tmp.Close()
	_ = os.Remove(a.tmp.Name())
	a.done = true
}
