// Package images keeps generated image bytes for the lifetime of the process.
package images

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrForeignRef is returned for references the vault did not issue.
var ErrForeignRef = errors.New("image reference not owned by this vault")

var extensions = map[string]string{
	"image/webp": ".webp",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
}

// Vault stores images in a session temp directory and hands out file:// references.
// References stop resolving once the image is released or the vault is closed.
type Vault struct {
	mu  sync.Mutex
	dir string
}

// NewVault creates a fresh directory under parent (os.TempDir when empty).
func NewVault(parent string) (*Vault, error) {
	dir, err := os.MkdirTemp(parent, "chatai-images-")
	if err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &Vault{dir: dir}, nil
}

// Dir returns the directory holding the images.
func (v *Vault) Dir() string { return v.dir }

// Put writes data and returns its reference.
func (v *Vault) Put(data []byte, mimeType string) (string, error) {
	ext, ok := extensions[strings.ToLower(mimeType)]
	if !ok {
		ext = ".img"
	}
	path := filepath.Join(v.dir, uuid.NewString()+ext)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(), nil
}

// Path returns the local file for ref, or ErrForeignRef.
func (v *Vault) Path(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "file" {
		return "", ErrForeignRef
	}
	path := filepath.FromSlash(u.Path)
	if filepath.Dir(path) != v.dir {
		return "", ErrForeignRef
	}
	return path, nil
}

// Resolves reports whether ref still points at an image of this vault.
// References left over from an earlier session never resolve.
func (v *Vault) Resolves(ref string) bool {
	path, err := v.Path(ref)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Release deletes the image behind ref. Foreign and already released references are ignored.
func (v *Vault) Release(ref string) error {
	path, err := v.Path(ref)
	if err != nil {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("release image: %w", err)
	}
	return nil
}

// Close removes the directory and every image in it.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return os.RemoveAll(v.dir)
}
