package systems

import (
	"testing"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/config"
	"github.com/decker502/mergegrid/pkg/utils"
)

// newTestCatalog 小猫主题的测试目录
// kibble(1) → fish(2) → tuna(3)，bag 按 70/30 生成 kibble/fish
func newTestCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	catalog, err := config.NewCatalog(
		config.ItemDefinition{ID: "kibble", Tier: 1, NextTier: "fish"},
		config.ItemDefinition{ID: "fish", Tier: 2, NextTier: "tuna"},
		config.ItemDefinition{ID: "tuna", Tier: 3},
		config.ItemDefinition{ID: "yarn", Tier: 1},
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

// lineSpatial n 个格子排成一行，间距 10，命中半径 4
func lineSpatial(n int) *PointSpatial {
	points := make([]utils.Point, n)
	for i := range points {
		points[i] = utils.Point{X: float64(i) * 10}
	}
	return &PointSpatial{Points: points, Radius: 4}
}

// recordingUI 记录界面通知
type recordingUI struct {
	selections []*components.Entity
	highlights map[components.SlotIndex]bool
	lockIcons  map[components.SlotIndex]bool
}

func newRecordingUI() *recordingUI {
	return &recordingUI{
		highlights: make(map[components.SlotIndex]bool),
		lockIcons:  make(map[components.SlotIndex]bool),
	}
}

func (r *recordingUI) OnSelectionChanged(e *components.Entity) {
	r.selections = append(r.selections, e)
}

func (r *recordingUI) OnSlotHighlight(slot components.SlotIndex, on bool) {
	r.highlights[slot] = on
}

func (r *recordingUI) OnLockIconChanged(slot components.SlotIndex, visible bool) {
	r.lockIcons[slot] = visible
}

func (r *recordingUI) lastSelection() *components.Entity {
	if len(r.selections) == 0 {
		return nil
	}
	return r.selections[len(r.selections)-1]
}

// fixedRandom 按顺序返回预设值
type fixedRandom struct {
	values []float64
	i      int
}

func (f *fixedRandom) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

// testWorld 组装好的棋盘和系统
type testWorld struct {
	catalog *config.Catalog
	ui      *recordingUI
	board   *GridBoard
	factory *EntityFactory
	merge   *MergeSystem
	gesture *GestureSystem
	spawn   *SpawnSystem
}

func newTestWorld(t *testing.T, slots int) *testWorld {
	t.Helper()
	w := &testWorld{
		catalog: newTestCatalog(t),
		ui:      newRecordingUI(),
	}
	w.board = NewGridBoard(lineSpatial(slots), w.ui)
	w.factory = NewEntityFactory(w.catalog)
	w.merge = NewMergeSystem(w.board, w.catalog, w.factory)
	w.gesture = NewGestureSystem(w.board, w.merge, 2.0)
	w.spawn = NewSpawnSystem(w.board, w.catalog, w.factory, &fixedRandom{values: []float64{0}})
	return w
}

// put 创建实体并放到指定格子
func (w *testWorld) put(t *testing.T, typeID string, slot components.SlotIndex) *components.Entity {
	t.Helper()
	e, _, err := w.factory.Create(typeID)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", typeID, err)
	}
	if err := w.board.Place(e, slot); err != nil {
		t.Fatalf("Place(%v, %d) failed: %v", e, slot, err)
	}
	return e
}

func (w *testWorld) slotPos(slot components.SlotIndex) utils.Point {
	return w.board.SlotPosition(slot)
}

func assertConsistent(t *testing.T, b *GridBoard) {
	t.Helper()
	if err := b.CheckConsistency(); err != nil {
		t.Fatalf("board inconsistent: %v", err)
	}
}
