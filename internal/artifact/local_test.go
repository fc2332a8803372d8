package artifact

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	payload := []byte(`{"model":"v1"}`)
	info, err := store.Put(ctx, "models/sales.json", bytes.NewReader(payload), int64(len(payload)), "application/json")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if info.Size != int64(len(payload)) {
		t.Fatalf("Size = %d, want %d", info.Size, len(payload))
	}

	reader, err := store.Get(ctx, "models/sales.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = reader.Close() }()
	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("artifact body = %q, want %q", got, payload)
	}

	if _, err := store.Stat(ctx, "models/sales.json"); err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if err := store.Delete(ctx, "models/sales.json"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "models/sales.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestLocalStoreMissingArtifact(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	if _, err := store.Stat(context.Background(), "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Stat() error = %v, want ErrNotFound", err)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	for _, key := range []string{"../outside.json", "..", "/etc/passwd"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), 1, ""); err == nil {
			t.Fatalf("Put(%q) should have been rejected", key)
		}
	}
}

func TestLocalStoreOverwrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	for _, body := range []string{"first", "second"} {
		if _, err := store.Put(ctx, "model.json", strings.NewReader(body), int64(len(body)), ""); err != nil {
			t.Fatalf("Put(%q) error = %v", body, err)
		}
	}

	reader, err := store.Get(ctx, "model.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = reader.Close() }()
	got, _ := io.ReadAll(reader)
	if string(got) != "second" {
		t.Fatalf("artifact body = %q, want %q", got, "second")
	}
}
