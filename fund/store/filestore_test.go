package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := NewFileStore(path)
	ctx := context.Background()

	payer := int64(7)
	snap := Snapshot{
		"100": {
			Members: map[string]MemberRecord{
				"7_0": {Name: "Alice", Shares: 1, Paid: true, PaidBy: &payer, RegisteredBy: 7},
				"7_1": {Name: "Bob", Shares: 1, RegisteredBy: 7},
			},
			Winners:      []string{"Alice"},
			CurrentMonth: "2026-09",
		},
	}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	g, ok := loaded["100"]
	if !ok {
		t.Fatal("group missing after reload")
	}
	if g.CurrentMonth != "2026-09" {
		t.Fatalf("unexpected month: %s", g.CurrentMonth)
	}
	if len(g.Winners) != 1 || g.Winners[0] != "Alice" {
		t.Fatalf("unexpected winners: %v", g.Winners)
	}
	alice := g.Members["7_0"]
	if !alice.Paid || alice.PaidBy == nil || *alice.PaidBy != 7 {
		t.Fatalf("payment fields lost: %+v", alice)
	}
	bob := g.Members["7_1"]
	if bob.Paid || bob.PaidBy != nil {
		t.Fatalf("unexpected payment fields: %+v", bob)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %d groups", len(snap))
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	s := NewFileStore(path)
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFileStoreSaveCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")
	s := NewFileStore(path)
	if err := s.Save(context.Background(), Snapshot{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
}
