package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/utils"
)

func TestNewGamePlacesStartingSpawner(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	s.StartNewGame()

	e := s.board.EntityAt(2)
	if e == nil || !e.IsSpawner() || e.TypeID != "bag" {
		t.Fatalf("Expected bag spawner in last slot, got %v", e)
	}
	if s.PanelOpen() {
		t.Error("Expected panel closed on a new game")
	}
	if len(s.board.Entities()) != 1 {
		t.Errorf("Expected only the spawner on board, got %d entities", len(s.board.Entities()))
	}
}

func TestStartingSpawnerSkippedWhenLastSlotTaken(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	put(t, s, "tuna", 2)

	if s.PlaceStartingSpawner() {
		t.Error("Expected starting spawner not placed over an occupied slot")
	}
	if e := s.board.EntityAt(2); e.TypeID != "tuna" {
		t.Errorf("Expected tuna untouched, got %v", e)
	}
}

func TestStartNewGameDeletesSave(t *testing.T) {
	store := &memoryStore{data: []byte("version: 1\n"), has: true}
	s := newTestSession(t, store)
	s.Start(true)

	if store.has {
		t.Error("Expected existing save deleted on new game")
	}
}

func TestPointerIgnoredWhilePanelClosed(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	s.StartNewGame()

	tap(s, center(s, 2))
	if s.board.Selected() != nil {
		t.Error("Closed panel must ignore input")
	}
	if len(s.board.Entities()) != 1 {
		t.Error("Closed panel must not spawn")
	}
}

// TestTapSpawnerThenMerge 点击生成器两次生成两个一阶物品，拖拽合成二阶物品
func TestTapSpawnerThenMerge(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	s.StartNewGame()
	s.ShowPanel()

	tap(s, center(s, 2))
	if s.board.Selected() != s.board.EntityAt(2) {
		t.Error("Expected spawner selected by tap")
	}
	first := s.board.EntityAt(1)
	if first == nil || first.TypeID != "kibble" {
		t.Fatalf("Expected kibble spawned next to the spawner, got %v", first)
	}

	tap(s, center(s, 2))
	second := s.board.EntityAt(0)
	if second == nil || second.TypeID != "kibble" {
		t.Fatalf("Expected second kibble in slot 0, got %v", second)
	}
	if got := s.board.EntityAt(2).Spawner.ItemsSpawned; got != 2 {
		t.Errorf("ItemsSpawned: got %d, want 2", got)
	}

	drag(s, center(s, 0), center(s, 1))

	if !first.Destroyed() || !second.Destroyed() {
		t.Error("Expected both sources destroyed")
	}
	merged := s.board.EntityAt(1)
	if merged == nil || merged.TypeID != "fish" {
		t.Fatalf("Expected fish in slot 1, got %v", merged)
	}
	if s.board.EntityAt(0) != nil {
		t.Error("Expected slot 0 empty after merge")
	}
	if err := s.board.CheckConsistency(); err != nil {
		t.Errorf("board inconsistent: %v", err)
	}
}

// TestDragToEmptySlotMovesAndSuppressesClick 拖到空格子移动，收尾点击不选中
func TestDragToEmptySlotMovesAndSuppressesClick(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	s.ShowPanel()
	e := put(t, s, "kibble", 0)

	drag(s, center(s, 0), center(s, 1))

	if s.board.EntityAt(1) != e || e.Slot != 1 {
		t.Fatalf("Expected kibble moved to slot 1, slot=%d", e.Slot)
	}
	if s.board.Selected() != nil {
		t.Error("Click right after a drag must be suppressed")
	}

	tap(s, center(s, 1))
	if s.board.Selected() != e {
		t.Error("Expected a fresh tap to select")
	}
}

func TestSmallMoveIsStillATap(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	s.ShowPanel()
	e := put(t, s, "kibble", 0)

	p := center(s, 0)
	nudged := utils.Point{X: p.X + 2, Y: p.Y}
	s.HandlePointer(pointer(utils.PointerDown, p))
	s.HandlePointer(pointer(utils.PointerMove, nudged))
	s.HandlePointer(pointer(utils.PointerUp, nudged))

	if e.Slot != 0 {
		t.Errorf("Expected no drag below threshold, slot=%d", e.Slot)
	}
	if s.board.Selected() != e {
		t.Error("Expected tap to select")
	}
}

// TestHoldLocksAndBlocksDrag 长按锁定后本次点击被吞掉，锁定物品不能拖拽
func TestHoldLocksAndBlocksDrag(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	s.ShowPanel()
	e := put(t, s, "kibble", 0)

	s.HandlePointer(pointer(utils.PointerDown, center(s, 0)))
	s.Update(2.0)
	if !e.Locked {
		t.Fatal("Expected lock after holding for 2s")
	}
	s.HandlePointer(pointer(utils.PointerUp, center(s, 0)))
	if s.board.Selected() != nil {
		t.Error("Click after hold-lock must be suppressed")
	}

	drag(s, center(s, 0), center(s, 1))
	if e.Slot != 0 || s.board.EntityAt(1) != nil {
		t.Error("Locked entity must not be dragged")
	}
	if s.board.Selected() != nil {
		t.Error("Release away from the locked entity must not select it")
	}

	tap(s, center(s, 0))
	if s.board.Selected() != e {
		t.Error("Locked entity should still be selectable")
	}
}

func TestLockedTargetRejectsMerge(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	s.ShowPanel()
	a := put(t, s, "kibble", 0)
	b := put(t, s, "kibble", 1)
	b.Locked = true

	drag(s, center(s, 0), center(s, 1))

	if a.Destroyed() || b.Destroyed() {
		t.Fatal("Merge onto a locked target must be rejected")
	}
	if s.board.EntityAt(0) != a || s.board.EntityAt(1) != b {
		t.Error("Expected both entities where they started")
	}
}

// TestSaveDuringDragSnapsBack 拖拽中存档先回弹，存档里实体在原格子
func TestSaveDuringDragSnapsBack(t *testing.T) {
	store := &memoryStore{}
	s := newTestSession(t, store)
	s.ShowPanel()
	e := put(t, s, "fish", 0)

	s.HandlePointer(pointer(utils.PointerDown, center(s, 0)))
	s.HandlePointer(pointer(utils.PointerMove, center(s, 1)))
	if s.gesture.Dragging() != e {
		t.Fatal("Expected drag in progress")
	}

	if err := s.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if s.gesture.Dragging() != nil || e.Slot != 0 {
		t.Errorf("Expected drag cancelled and entity back in slot 0, slot=%d", e.Slot)
	}

	data, err := DecodeSaveData(store.data)
	if err != nil {
		t.Fatalf("DecodeSaveData() failed: %v", err)
	}
	if len(data.GridEntities) != 1 || data.GridEntities[0].SlotIndex != 0 {
		t.Errorf("Expected fish saved in slot 0, got %+v", data.GridEntities)
	}
}

func TestSaveAndContinue(t *testing.T) {
	store := &memoryStore{}
	s := newTestSession(t, store)
	s.StartNewGame()
	s.ShowPanel()
	tap(s, center(s, 2))
	locked := s.board.EntityAt(1)
	locked.Locked = true

	if err := s.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	next := newTestSession(t, store)
	next.Start(false)

	if !next.PanelOpen() {
		t.Error("Expected panel state restored")
	}
	e := next.board.EntityAt(1)
	if e == nil || e.TypeID != "kibble" || !e.Locked {
		t.Errorf("Expected locked kibble in slot 1, got %v", e)
	}
	bag := next.board.EntityAt(2)
	if bag == nil || bag.Spawner.ItemsSpawned != 1 {
		t.Errorf("Expected spawner with one spawn recorded, got %v", bag)
	}
}

func TestContinueWithCorruptSaveStartsNewGame(t *testing.T) {
	store := &memoryStore{data: []byte("gridEntities: [broken"), has: true}
	s := newTestSession(t, store)

	if s.Continue() {
		t.Fatal("Expected Continue to fail on a corrupt save")
	}
	if store.has {
		t.Error("Expected corrupt save deleted")
	}
	if e := s.board.EntityAt(2); e == nil || !e.IsSpawner() {
		t.Error("Expected a new game with the starting spawner")
	}
}

func TestHidePanelCancelsDrag(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	s.ShowPanel()
	e := put(t, s, "kibble", 0)

	s.HandlePointer(pointer(utils.PointerDown, center(s, 0)))
	s.HandlePointer(pointer(utils.PointerMove, center(s, 1)))
	s.TogglePanel()

	if s.PanelOpen() {
		t.Fatal("Expected panel closed")
	}
	if e.Slot != 0 {
		t.Errorf("Expected entity returned to slot 0, got %d", e.Slot)
	}
	if s.gesture.Dragging() != nil {
		t.Error("Expected no drag after closing the panel")
	}
}

// TestDraggedSpawnerKeepsCoolingDown 拖拽中的生成器冷却照常推进
func TestDraggedSpawnerKeepsCoolingDown(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	s.ShowPanel()
	bag := put(t, s, "bag", 2)
	bag.Spawner.ItemsSpawned = 5
	bag.Spawner.CooldownRemaining = 3

	s.HandlePointer(pointer(utils.PointerDown, center(s, 2)))
	s.HandlePointer(pointer(utils.PointerMove, center(s, 1)))
	if bag.Slot != components.NoSlot {
		t.Fatal("Expected spawner lifted off the board")
	}

	s.Update(3.0)
	if bag.Spawner.CooldownRemaining != 0 || bag.Spawner.ItemsSpawned != 0 {
		t.Errorf("Expected cooldown finished while dragging, got %+v", *bag.Spawner)
	}
}

func TestReloadCatalog(t *testing.T) {
	s := newTestSession(t, &memoryStore{})
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `items:
  - id: kibble
    tier: 1
    nextTier: fish
  - id: fish
    tier: 2
spawners:
  - id: bag
    spawns:
      - item: fish
        weight: 1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if err := s.ReloadCatalog(path); err != nil {
		t.Fatalf("ReloadCatalog() failed: %v", err)
	}
	if _, err := s.Catalog().Resolve("tuna"); err == nil {
		t.Error("Expected tuna gone after reload")
	}

	bag := put(t, s, "bag", 2)
	if _, item := s.spawn.TrySpawn(bag); item == nil || item.TypeID != "fish" {
		t.Errorf("Expected reloaded table to spawn fish, got %v", item)
	}

	if err := os.WriteFile(path, []byte("items: [broken"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := s.ReloadCatalog(path); err == nil {
		t.Error("Expected invalid catalog rejected")
	}
	if _, err := s.Catalog().Resolve("kibble"); err != nil {
		t.Errorf("Expected previous catalog kept, got %v", err)
	}
}
