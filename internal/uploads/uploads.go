// Package uploads writes gallery files to local disk with generated
// names so user-supplied filenames never reach the filesystem.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// allowed maps accepted content types to the extension files are stored with
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Writer stores uploaded files under a base directory
type Writer struct {
	dir      string
	maxBytes int64
}

// NewWriter creates the upload directory if needed and returns a Writer
func NewWriter(dir string, maxSizeMB int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Writer{dir: dir, maxBytes: int64(maxSizeMB) << 20}, nil
}

// Save validates and writes a multipart upload, returning the stored
// filename (relative to the upload directory), content type, and size.
func (w *Writer) Save(fh *multipart.FileHeader) (name, contentType string, size int64, err error) {
	if fh.Size > w.maxBytes {
		return "", "", 0, fmt.Errorf("file exceeds %d byte limit", w.maxBytes)
	}

	contentType = strings.ToLower(fh.Header.Get("Content-Type"))
	ext, ok := allowed[contentType]
	if !ok {
		return "", "", 0, fmt.Errorf("unsupported content type %q", contentType)
	}

	src, err := fh.Open()
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name = ulid.Make().String() + ext
	dst, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	size, err = io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return name, contentType, size, nil
}

// Remove deletes a stored file. Missing files are not an error so
// deletes stay idempotent.
func (w *Writer) Remove(name string) error {
	// Reject anything that could escape the upload directory
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid upload name %q", name)
	}

	err := os.Remove(filepath.Join(w.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the base directory files are stored in
func (w *Writer) Dir() string {
	return w.dir
}
