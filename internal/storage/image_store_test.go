package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndDelete(t *testing.T) {
	store := NewLocalImageStore(t.TempDir())

	ref, err := store.Save("product", "Tomatoes.JPG", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(ref, "product/") || !strings.HasSuffix(ref, ".jpg") {
		t.Fatalf("unexpected reference %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(store.Root, filepath.FromSlash(ref)))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("stored content = %q", data)
	}

	if err := store.Delete(ref); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ref); err != nil {
		t.Errorf("deleting a missing file should succeed, got %v", err)
	}
}

func TestResolveStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	store := NewLocalImageStore(root)

	target, err := store.resolve("../../etc/passwd")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !strings.HasPrefix(target, root) {
		t.Errorf("resolved %q outside of %q", target, root)
	}

	if _, err := store.resolve(""); err == nil {
		t.Error("expected an error for an empty reference")
	}
}
