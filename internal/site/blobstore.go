package site

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore is a content-addressed file store for page snapshots. Blobs are
// keyed by SHA-256 and sharded by the first two hex characters.
type BlobStore struct {
	root string
}

// NewBlobStore creates the store's root directory if needed.
func NewBlobStore(root string) (*BlobStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &BlobStore{root: root}, nil
}

// Put stores data and returns its content hash. Writing an already-present
// blob is a cheap no-op.
func (b *BlobStore) Put(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	path := b.path(hash)

	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}
	if err := atomicWriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing blob %s: %w", hash, err)
	}
	return hash, nil
}

// Get returns the blob for hash.
func (b *BlobStore) Get(hash string) ([]byte, error) {
	if err := validateHash(hash); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path(hash))
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", hash, err)
	}
	return data, nil
}

func (b *BlobStore) path(hash string) string {
	return filepath.Join(b.root, hash[:2], hash)
}

func validateHash(hash string) error {
	if len(hash) != 64 {
		return fmt.Errorf("invalid blob hash %q", hash)
	}
	if strings.ContainsAny(hash, "/\\.") {
		return fmt.Errorf("invalid blob hash %q", hash)
	}
	return nil
}

// atomicWriteFile writes data using a temp file + fsync + rename so the
// target is either fully written or untouched.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
