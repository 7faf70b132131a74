// Package datastore keeps copies of scanned content on disk so results can
// be inspected after the original files change or disappear.
package datastore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// BlobStore is content-addressable storage keyed by ContentID.
type BlobStore struct {
	Root string
}

// NewBlobStore creates root if needed and returns a store rooted there.
func NewBlobStore(root string) (*BlobStore, error) {
	if root == "" {
		return nil, fmt.Errorf("blob store path is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &BlobStore{Root: root}, nil
}

// Store writes content and returns its ID. Storing the same content twice
// is a no-op.
func (b *BlobStore) Store(content []byte) (types.ContentID, error) {
	id := types.ComputeContentID(content)

	path := b.Path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.ContentID{}, fmt.Errorf("creating blob directory: %w", err)
	}

	// Concurrent writers of the same content each get their own temp file;
	// the last rename wins and all of them hold identical bytes.
	tmp, err := os.CreateTemp(dir, ".blob-*")
	if err != nil {
		return types.ContentID{}, fmt.Errorf("writing blob: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return types.ContentID{}, fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return types.ContentID{}, fmt.Errorf("writing blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return types.ContentID{}, fmt.Errorf("renaming blob: %w", err)
	}

	return id, nil
}

// Get retrieves content by ID.
func (b *BlobStore) Get(id types.ContentID) ([]byte, error) {
	content, err := os.ReadFile(b.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob not found: %s", id.Hex())
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return content, nil
}

// Exists checks if a blob exists in storage.
func (b *BlobStore) Exists(id types.ContentID) bool {
	_, err := os.Stat(b.Path(id))
	return err == nil
}

// Path returns the file path for id, using a two-character fan-out
// directory: <root>/ab/cdef....
func (b *BlobStore) Path(id types.ContentID) string {
	hexID := id.Hex()
	return filepath.Join(b.Root, hexID[:2], hexID[2:])
}
