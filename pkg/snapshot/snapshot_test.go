package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/units"
)

func testDocument() *plan.Document {
	return &plan.Document{
		Title: "test",
		Floors: []plan.Floor{
			{ID: "ground", Rooms: []plan.Room{
				{ID: "living", At: &plan.Coordinate{}, Size: plan.Size{
					Width: units.Value{Magnitude: 8},
					Depth: units.Value{Magnitude: 6},
				}},
			}},
		},
	}
}

func TestNew(t *testing.T) {
	snap := New("before-remodel", testDocument(), "m")

	if snap.ID == "" {
		t.Error("New should assign an ID")
	}
	if snap.Name != "before-remodel" {
		t.Errorf("name = %q", snap.Name)
	}
	if snap.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if other := New("other", testDocument(), "m"); other.ID == snap.ID {
		t.Error("IDs should be unique")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close(ctx)

	snap := New("v1", testDocument(), "ft")
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for saved snapshot")
	}
	if got.Name != "v1" || got.SystemUnit != "ft" {
		t.Errorf("got %+v", got)
	}
	if len(got.Document.Floors) != 1 || got.Document.Floors[0].Rooms[0].ID != "living" {
		t.Errorf("document not preserved: %+v", got.Document)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	got, err := store.Get(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("Get of missing snapshot should return nil, nil")
	}
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	older := New("older", testDocument(), "")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := New("newer", testDocument(), "")

	for _, snap := range []*Snapshot{older, newer} {
		if err := store.Save(ctx, snap); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len(infos) = %d", len(infos))
	}
	if infos[0].Name != "newer" || infos[1].Name != "older" {
		t.Errorf("list should be newest first: %+v", infos)
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	snap := New("doomed", testDocument(), "")
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, _ := store.Get(ctx, snap.ID)
	if got != nil {
		t.Error("snapshot should be gone after Delete")
	}

	if err := store.Delete(ctx, snap.ID); err != ErrNotFound {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestFileStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	snap := New("v1", testDocument(), "")
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap.Name = "v2"
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := store.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "v2" {
		t.Errorf("name = %q, want v2", got.Name)
	}

	infos, _ := store.List(ctx)
	if len(infos) != 1 {
		t.Errorf("len(infos) = %d, want 1", len(infos))
	}
}
