package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestStorageSaveAndOpenRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := store.Save(context.Background(), "abc_pump-layout.pdf", strings.NewReader("content bytes")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := store.Open(context.Background(), "abc_pump-layout.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "content bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestStorageRejectsEscapingKeys(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, key := range []string{"", "../escape", "a/b", "..one..two.."} {
		if err := store.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
