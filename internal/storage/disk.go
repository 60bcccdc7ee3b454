package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge = errors.New("file exceeds the upload limit")
	ErrFileNotFound = errors.New("file not found")
)

// FileStore keeps uploaded digital copies
type FileStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (name string, size int64, err error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// Disk stores files flat in one directory under generated names
type Disk struct {
	dir      string
	maxBytes int64
}

func NewDisk(dir string, maxBytes int64) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Disk{dir: dir, maxBytes: maxBytes}, nil
}

func (d *Disk) Save(ctx context.Context, ext string, r io.Reader) (string, int64, error) {
	name := uuid.NewString() + "." + strings.ToLower(strings.TrimPrefix(ext, "."))
	path := filepath.Join(d.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, err
	}

	src := r
	if d.maxBytes > 0 {
		src = io.LimitReader(r, d.maxBytes+1)
	}

	size, err := io.Copy(f, readerWithContext{ctx: ctx, r: src})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && d.maxBytes > 0 && size > d.maxBytes {
		err = ErrFileTooLarge
	}
	if err != nil {
		os.Remove(path)
		return "", 0, err
	}

	return name, size, nil
}

func (d *Disk) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path, err := d.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	return f, err
}

func (d *Disk) Delete(_ context.Context, name string) error {
	path, err := d.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// path rejects names that would escape the upload directory
func (d *Disk) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrFileNotFound
	}
	return filepath.Join(d.dir, name), nil
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
