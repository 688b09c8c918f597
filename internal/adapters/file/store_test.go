package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/facet/internal/adapters/file"
	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/ports"
)

// Ensure Store implements RecordStore
var _ ports.RecordStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Files(t *testing.T) {
	tempDir := t.TempDir()
	store := file.New(tempDir)
	ctx := context.Background()

	t.Run("SaveWritesJSONFile", func(t *testing.T) {
		record := domain.NewRecord("session-1")
		record.Values["fSession::count"] = 42

		if err := store.Save(ctx, "session-1", record); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if _, err := os.Stat(filepath.Join(tempDir, "session-1.json")); err != nil {
			t.Fatalf("expected session file on disk: %v", err)
		}

		loaded, err := store.Load(ctx, "session-1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		// JSON unmarshals numbers as float64.
		if val, ok := loaded.Values["fSession::count"].(float64); !ok || val != 42 {
			t.Errorf("expected count = 42, got %v (%T)", loaded.Values["fSession::count"], loaded.Values["fSession::count"])
		}
	})

	t.Run("RejectsTraversal", func(t *testing.T) {
		for _, id := range []string{"", "../escape", "a/b", `a\b`} {
			if err := store.Save(ctx, id, domain.NewRecord(id)); err == nil {
				t.Errorf("expected error saving session %q", id)
			}
		}
	})

	t.Run("ListIgnoresForeignFiles", func(t *testing.T) {
		listDir := t.TempDir()
		listStore := file.New(listDir)

		ids := []string{"s1", "s2", "s3"}
		for _, id := range ids {
			if err := listStore.Save(ctx, id, domain.NewRecord(id)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		if err := os.WriteFile(filepath.Join(listDir, "garbage.txt"), []byte("garbage"), 0644); err != nil {
			t.Fatalf("failed to create garbage file: %v", err)
		}

		list, err := listStore.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != len(ids) {
			t.Errorf("expected %d sessions, got %d: %v", len(ids), len(list), list)
		}
	})

	t.Run("ListMissingDir", func(t *testing.T) {
		missing := file.New(filepath.Join(tempDir, "does-not-exist"))
		list, err := missing.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("expected empty list, got %v", list)
		}
	})
}
