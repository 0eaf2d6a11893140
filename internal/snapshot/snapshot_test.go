package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avallon-labs/avallon/internal/interfaces"
)

func TestNewCapturer(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "thumbs")
	c, err := NewCapturer(dir, 0, interfaces.NewTestLogger(false))
	if err != nil {
		t.Fatalf("NewCapturer: %v", err)
	}
	if c.timeout != 30*time.Second {
		t.Errorf("default timeout = %v", c.timeout)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output directory not created: %v", err)
	}
}

func TestNewCapturer_BadDirectory(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCapturer(filepath.Join(file, "thumbs"), time.Second, interfaces.NewTestLogger(false)); err == nil {
		t.Errorf("expected error creating directory under a regular file")
	}
}
