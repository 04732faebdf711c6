package game

import (
	"testing"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/config"
	"github.com/decker502/mergegrid/pkg/utils"
)

// memoryStore 内存存档后端
type memoryStore struct {
	data    []byte
	has     bool
	writes  int
	deletes int
}

func (m *memoryStore) Exists() bool { return m.has }

func (m *memoryStore) Read() ([]byte, error) {
	if !m.has {
		return nil, ErrNoSave
	}
	return append([]byte(nil), m.data...), nil
}

func (m *memoryStore) Write(data []byte) error {
	m.data = append([]byte(nil), data...)
	m.has = true
	m.writes++
	return nil
}

func (m *memoryStore) Delete() error {
	m.data = nil
	m.has = false
	m.deletes++
	return nil
}

type fixedRandom struct {
	values []float64
	i      int
}

func (f *fixedRandom) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func newTestCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	catalog, err := config.NewCatalog(
		config.ItemDefinition{ID: "kibble", Tier: 1, NextTier: "fish"},
		config.ItemDefinition{ID: "fish", Tier: 2, NextTier: "tuna"},
		config.ItemDefinition{ID: "tuna", Tier: 3},
		config.ItemDefinition{
			ID:                      "bag",
			Kind:                    config.ItemKindSpawner,
			MaxSpawnsBeforeCooldown: 5,
			CooldownSeconds:         3,
			Spawns: []config.SpawnEntry{
				{Item: "kibble", Weight: 70},
				{Item: "fish", Weight: 30},
			},
		},
	)
	if err != nil {
		t.Fatalf("NewCatalog() failed: %v", err)
	}
	return catalog
}

// newTestConfig 一行三格，格子边长 10，无间距
// 格子中心依次为 (5,5) (15,5) (25,5)
func newTestConfig() *config.GameConfig {
	cfg := config.DefaultGameConfig()
	cfg.Board = config.BoardConfig{Columns: 3, Rows: 1, CellSize: 10}
	cfg.Gesture = config.GestureConfig{HoldToLockSeconds: 2, DragThresholdPixels: 6}
	cfg.StartingSpawner = "bag"
	return cfg
}

func newTestSession(t *testing.T, store SaveStore) *Session {
	t.Helper()
	return NewSession(newTestConfig(), newTestCatalog(t), store, SessionOptions{
		Random: &fixedRandom{values: []float64{0}},
	})
}

// put 创建实体并放到指定格子
func put(t *testing.T, s *Session, typeID string, slot components.SlotIndex) *components.Entity {
	t.Helper()
	e, _, err := s.factory.Create(typeID)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", typeID, err)
	}
	if err := s.board.Place(e, slot); err != nil {
		t.Fatalf("Place(%v, %d) failed: %v", e, slot, err)
	}
	return e
}

func center(s *Session, slot components.SlotIndex) utils.Point {
	return s.board.SlotPosition(slot)
}

func pointer(typ utils.PointerEventType, p utils.Point) utils.PointerEvent {
	return utils.PointerEvent{Type: typ, Pos: p}
}

// tap 在同一位置按下并释放
func tap(s *Session, p utils.Point) {
	s.HandlePointer(pointer(utils.PointerDown, p))
	s.HandlePointer(pointer(utils.PointerUp, p))
}

// drag 从 from 按下，移动到 to 后释放
func drag(s *Session, from, to utils.Point) {
	s.HandlePointer(pointer(utils.PointerDown, from))
	s.HandlePointer(pointer(utils.PointerMove, to))
	s.HandlePointer(pointer(utils.PointerUp, to))
}
