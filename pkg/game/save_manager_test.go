package game

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSaveManagerSaveAndLoad(t *testing.T) {
	store := &memoryStore{}
	src := newTestSession(t, store)
	put(t, src, "kibble", 0)
	put(t, src, "bag", 2)

	if src.saves.HasSave() {
		t.Fatal("Expected no save before SaveGame")
	}
	if err := src.saves.SaveGame(true); err != nil {
		t.Fatalf("SaveGame() failed: %v", err)
	}
	if !src.saves.HasSave() || store.writes != 1 {
		t.Fatalf("Expected exactly one write, got %d", store.writes)
	}

	dst := newTestSession(t, store)
	data, report, err := dst.saves.LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() failed: %v", err)
	}
	if !data.WasGridPanelOpen {
		t.Error("Expected panel flag restored")
	}
	if report.Restored != 2 {
		t.Errorf("Expected 2 restored entities, got %d", report.Restored)
	}
	if e := dst.board.EntityAt(0); e == nil || e.TypeID != "kibble" {
		t.Errorf("Expected kibble at slot 0, got %v", e)
	}
}

func TestSaveManagerNoSave(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	if _, _, err := s.saves.LoadGame(); !errors.Is(err, ErrNoSave) {
		t.Errorf("Expected ErrNoSave, got %v", err)
	}
}

// TestSaveManagerCorruptSaveDiscarded 损坏的存档被删除且不触碰当前棋盘
func TestSaveManagerCorruptSaveDiscarded(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"非法YAML", "gridEntities: [oops"},
		{"版本不符", "version: 7\n"},
		{"空记录", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{data: []byte(tt.raw), has: true}
			s := newTestSession(t, store)
			keep := put(t, s, "fish", 1)

			_, _, err := s.saves.LoadGame()
			if !errors.Is(err, ErrCorruptSave) {
				t.Fatalf("Expected ErrCorruptSave, got %v", err)
			}
			if store.has || store.deletes != 1 {
				t.Error("Expected corrupt save deleted")
			}
			if s.board.EntityAt(1) != keep {
				t.Error("Corrupt save must not touch the board")
			}
		})
	}
}

func TestSaveManagerCorruptFileDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.save")
	store := NewFileStore(path)
	if err := store.Write([]byte("::: not yaml")); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	s := newTestSession(t, store)
	if _, _, err := s.saves.LoadGame(); !errors.Is(err, ErrCorruptSave) {
		t.Fatalf("Expected ErrCorruptSave, got %v", err)
	}
	if store.Exists() {
		t.Error("Expected corrupt save file removed")
	}
}

func TestSaveManagerDeleteSave(t *testing.T) {
	store := &memoryStore{}
	s := newTestSession(t, store)
	if err := s.saves.SaveGame(false); err != nil {
		t.Fatalf("SaveGame() failed: %v", err)
	}
	if err := s.saves.DeleteSave(); err != nil {
		t.Fatalf("DeleteSave() failed: %v", err)
	}
	if s.saves.HasSave() {
		t.Error("Expected no save after DeleteSave")
	}
}
