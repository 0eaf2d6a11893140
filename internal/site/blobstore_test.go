package site

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestBlobStore_PutGet(t *testing.T) {
	t.Parallel()

	b, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore: %v", err)
	}

	data := []byte("<!DOCTYPE html><html><body>hello</body></html>")
	hash, err := b.Put(data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash))
	}

	// Putting the same content again returns the same hash.
	again, err := b.Put(data)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if again != hash {
		t.Errorf("hash changed on re-put: %s vs %s", hash, again)
	}

	got, err := b.Get(hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round-trip mismatch")
	}
}

func TestBlobStore_GetRejectsBadHashes(t *testing.T) {
	t.Parallel()

	b, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore: %v", err)
	}

	for _, bad := range []string{"", "short", "../../etc/passwd", string(bytes.Repeat([]byte("a"), 63)) + "/"} {
		if _, err := b.Get(bad); err == nil {
			t.Errorf("Get(%q) accepted an invalid hash", bad)
		}
	}
}

func TestAtomicWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	if err := atomicWriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("atomicWriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "content" {
		t.Errorf("content = %q", got)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in directory: %d entries", len(entries))
	}
}
