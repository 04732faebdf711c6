package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/config"
)

var testTable = []config.SpawnEntry{
	{Item: "X", Weight: 70},
	{Item: "Y", Weight: 30},
}

// TestPickWeightedBoundaries [0,70) 选 X，[70,100) 选 Y
func TestPickWeightedBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		draw   float64
		want   string
		wantOK bool
	}{
		{"起点", 0, "X", true},
		{"X 区间内", 35.5, "X", true},
		{"X 区间末端", 69.999, "X", true},
		{"边界值 70", 70, "Y", true},
		{"Y 区间内", 85, "Y", true},
		{"Y 区间末端", 99.999, "Y", true},
		{"超出总权重", 100, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickWeighted(testTable, tt.draw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("pickWeighted(%v) = %q, %v; want %q, %v", tt.draw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPickWeightedSkipsZeroWeight(t *testing.T) {
	table := []config.SpawnEntry{
		{Item: "never", Weight: 0},
		{Item: "X", Weight: 1},
	}
	if got, _ := pickWeighted(table, 0); got != "X" {
		t.Errorf("Expected zero-weight entry skipped, got %q", got)
	}
}

// TestSelectFromTableDistribution 10000 次抽样比例接近 7:3
func TestSelectFromTableDistribution(t *testing.T) {
	w := newTestWorld(t, 1)
	sys := NewSpawnSystem(w.board, w.catalog, w.factory, rand.New(rand.NewSource(42)))

	const draws = 10000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		item, ok := sys.SelectFromTable(testTable)
		if !ok {
			t.Fatal("SelectFromTable() refused a valid table")
		}
		counts[item]++
	}

	ratio := float64(counts["X"]) / draws
	if math.Abs(ratio-0.7) > 0.03 {
		t.Errorf("Expected X ratio near 0.7, got %.3f (X=%d, Y=%d)", ratio, counts["X"], counts["Y"])
	}
	if counts["X"]+counts["Y"] != draws {
		t.Errorf("Unexpected items selected: %v", counts)
	}
}

func TestSelectFromTableZeroWeightFallback(t *testing.T) {
	w := newTestWorld(t, 1)

	tests := []struct {
		name   string
		table  []config.SpawnEntry
		want   string
		wantOK bool
	}{
		{"回退到第一个可用条目", []config.SpawnEntry{{Item: "", Weight: 0}, {Item: "A", Weight: 0}, {Item: "B", Weight: 0}}, "A", true},
		{"没有可用条目", []config.SpawnEntry{{Item: "", Weight: 0}}, "", false},
		{"空表", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.spawn.SelectFromTable(tt.table)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("SelectFromTable() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSelectFromTableEmptyItemRefused(t *testing.T) {
	w := newTestWorld(t, 1)
	sys := NewSpawnSystem(w.board, w.catalog, w.factory, &fixedRandom{values: []float64{0.1}})

	table := []config.SpawnEntry{{Item: "", Weight: 50}, {Item: "A", Weight: 50}}
	if _, ok := sys.SelectFromTable(table); ok {
		t.Error("Expected entry without item to refuse")
	}
}

func TestTrySpawnPlacesClosestEmpty(t *testing.T) {
	w := newTestWorld(t, 5)
	spawner := w.put(t, "bag", 2)
	w.put(t, "yarn", 1)

	// draw 0 → kibble
	outcome, item := w.spawn.TrySpawn(spawner)
	if outcome != Spawned {
		t.Fatalf("TrySpawn() = %v, want spawned", outcome)
	}
	if item.TypeID != "kibble" {
		t.Errorf("Expected kibble, got %q", item.TypeID)
	}
	if item.Slot != 3 {
		t.Errorf("Expected closest empty slot 3, got %d", item.Slot)
	}
	if spawner.Spawner.ItemsSpawned != 1 {
		t.Errorf("Expected 1 spawned, got %d", spawner.Spawner.ItemsSpawned)
	}
	assertConsistent(t, w.board)
}

func TestTrySpawnBoardFull(t *testing.T) {
	w := newTestWorld(t, 2)
	spawner := w.put(t, "bag", 0)
	w.put(t, "yarn", 1)

	outcome, item := w.spawn.TrySpawn(spawner)
	if outcome != SpawnRefusedNoSlot || item != nil {
		t.Errorf("TrySpawn() = %v, %v; want refused no slot", outcome, item)
	}
	if spawner.Spawner.ItemsSpawned != 0 {
		t.Error("Lost item must not count towards the cap")
	}
}

func TestTrySpawnRejectsNonSpawner(t *testing.T) {
	w := newTestWorld(t, 3)
	item := w.put(t, "kibble", 0)
	if outcome, _ := w.spawn.TrySpawn(item); outcome != SpawnRefusedConfig {
		t.Errorf("TrySpawn(item) = %v, want refused config", outcome)
	}

	ghost := components.NewSpawner(99, "salmon_bag")
	if err := w.board.Place(ghost, 1); err != nil {
		t.Fatalf("Place() failed: %v", err)
	}
	if outcome, _ := w.spawn.TrySpawn(ghost); outcome != SpawnRefusedConfig {
		t.Errorf("TrySpawn(unknown) = %v, want refused config", outcome)
	}
}

// TestSpawnCooldownCycle 上限 5：生成 5 次后拒绝，冷却归零后计数清零，第 6 次成功
func TestSpawnCooldownCycle(t *testing.T) {
	w := newTestWorld(t, 10)
	spawner := w.put(t, "bag", 9)

	for i := 0; i < 5; i++ {
		if outcome, _ := w.spawn.TrySpawn(spawner); outcome != Spawned {
			t.Fatalf("spawn %d: got %v", i+1, outcome)
		}
	}
	if spawner.Spawner.ItemsSpawned != 5 {
		t.Fatalf("Expected 5 spawned, got %d", spawner.Spawner.ItemsSpawned)
	}
	if spawner.Spawner.CooldownRemaining != 3 {
		t.Fatalf("Expected cooldown 3s, got %v", spawner.Spawner.CooldownRemaining)
	}

	if outcome, _ := w.spawn.TrySpawn(spawner); outcome != SpawnRefusedCooldown {
		t.Errorf("6th spawn during cooldown = %v, want refused", outcome)
	}

	w.spawn.Update(1.0)
	if outcome, _ := w.spawn.TrySpawn(spawner); outcome != SpawnRefusedCooldown {
		t.Errorf("spawn mid-cooldown = %v, want refused", outcome)
	}
	if spawner.Spawner.ItemsSpawned != 5 {
		t.Error("Counter must not reset before cooldown ends")
	}

	w.spawn.Update(2.5)
	if spawner.Spawner.CooldownRemaining != 0 || spawner.Spawner.ItemsSpawned != 0 {
		t.Fatalf("Expected both counters reset, got %+v", *spawner.Spawner)
	}

	if outcome, _ := w.spawn.TrySpawn(spawner); outcome != Spawned {
		t.Errorf("6th spawn after cooldown = %v, want spawned", outcome)
	}
	if spawner.Spawner.ItemsSpawned != 1 {
		t.Errorf("Expected counter 1 after reset, got %d", spawner.Spawner.ItemsSpawned)
	}
	assertConsistent(t, w.board)
}

func TestTickCooldown(t *testing.T) {
	tests := []struct {
		name      string
		state     components.SpawnerState
		dt        float64
		wantState components.SpawnerState
	}{
		{"未冷却不变", components.SpawnerState{ItemsSpawned: 2}, 1, components.SpawnerState{ItemsSpawned: 2}},
		{"部分衰减", components.SpawnerState{ItemsSpawned: 5, CooldownRemaining: 3}, 1, components.SpawnerState{ItemsSpawned: 5, CooldownRemaining: 2}},
		{"恰好归零", components.SpawnerState{ItemsSpawned: 5, CooldownRemaining: 1}, 1, components.SpawnerState{}},
		{"超额归零", components.SpawnerState{ItemsSpawned: 5, CooldownRemaining: 0.5}, 2, components.SpawnerState{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.state
			TickCooldown(&state, tt.dt)
			if state != tt.wantState {
				t.Errorf("TickCooldown() = %+v, want %+v", state, tt.wantState)
			}
		})
	}
}

func TestStartCooldownZeroDuration(t *testing.T) {
	state := components.SpawnerState{ItemsSpawned: 5}
	startCooldown(&state, 0)
	if state.ItemsSpawned != 0 || state.CooldownRemaining != 0 {
		t.Errorf("Expected immediate reset, got %+v", state)
	}
}
