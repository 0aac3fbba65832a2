// Package storage keeps uploaded attachments and generated exports on a
// filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/frahmantamala/request-routing/internal"
)

// Store writes and reads files in two flat directories: one for attachments
// and one for exports. File names never carry directory components.
type Store struct {
	fs        afero.Fs
	uploadDir string
	exportDir string
}

// NewLocalStore creates a Store on the OS filesystem.
func NewLocalStore(uploadDir, exportDir string) (*Store, error) {
	return New(afero.NewOsFs(), uploadDir, exportDir)
}

func New(fs afero.Fs, uploadDir, exportDir string) (*Store, error) {
	for _, dir := range []string{uploadDir, exportDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return &Store{fs: fs, uploadDir: uploadDir, exportDir: exportDir}, nil
}

// SanitizeName reduces name to its base name. Names that are empty or refer
// to a directory are rejected.
func SanitizeName(name string) (string, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := path.Base(name)
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", internal.ErrInvalidFile
	}
	return base, nil
}

// UploadName is the stored name of an attachment: "<requestID>_<base name>".
func UploadName(requestID, filename string) (string, error) {
	base, err := SanitizeName(filename)
	if err != nil {
		return "", err
	}
	return requestID + "_" + base, nil
}

// SaveUpload stores an attachment for a request and returns its stored name.
func (s *Store) SaveUpload(ctx context.Context, requestID, filename string, r io.Reader) (string, error) {
	name, err := UploadName(requestID, filename)
	if err != nil {
		return "", err
	}
	if err := s.write(ctx, filepath.Join(s.uploadDir, name), r); err != nil {
		return "", err
	}
	return name, nil
}

// WriteExport creates an export file and lets write fill it.
func (s *Store) WriteExport(ctx context.Context, name string, write func(io.Writer) error) (string, error) {
	base, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := s.fs.Create(filepath.Join(s.exportDir, base))
	if err != nil {
		return "", fmt.Errorf("create export %s: %w", base, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return base, nil
}

// File is an opened stored file.
type File struct {
	afero.File
	Name    string
	ModTime time.Time
}

func (s *Store) OpenUpload(name string) (*File, error) {
	return s.open(s.uploadDir, name)
}

func (s *Store) OpenExport(name string) (*File, error) {
	return s.open(s.exportDir, name)
}

func (s *Store) open(dir, name string) (*File, error) {
	base, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(filepath.Join(dir, base))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, internal.ErrFileNotFound
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, internal.ErrFileNotFound
	}
	return &File{File: f, Name: base, ModTime: info.ModTime()}, nil
}

func (s *Store) write(ctx context.Context, target string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := s.fs.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(target)
		return fmt.Errorf("write %s: %w", target, err)
	}
	return f.Close()
}
