package systems

import (
	"log"
	"math/rand"
	"time"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/config"
)

// SpawnOutcome 生成尝试的结果
type SpawnOutcome int

const (
	// SpawnRefusedCooldown 生成器冷却中
	SpawnRefusedCooldown SpawnOutcome = iota
	// SpawnRefusedConfig 配置错误（类型未知、生成表不可用）
	SpawnRefusedConfig
	// SpawnRefusedNoSlot 没有空格子，物品丢弃，不排队
	SpawnRefusedNoSlot
	// Spawned 生成成功
	Spawned
)

func (o SpawnOutcome) String() string {
	switch o {
	case SpawnRefusedCooldown:
		return "refused_cooldown"
	case SpawnRefusedConfig:
		return "refused_config"
	case SpawnRefusedNoSlot:
		return "refused_no_slot"
	case Spawned:
		return "spawned"
	default:
		return "unknown"
	}
}

// RandomSource 生成 [0, 1) 均匀随机数
// *rand.Rand 实现了该接口
type RandomSource interface {
	Float64() float64
}

// SpawnSystem 生成器：按权重选择物品类型，放入离生成器最近的空格子，
// 并维护生成计数与冷却
type SpawnSystem struct {
	board   *GridBoard
	catalog ItemCatalog
	factory *EntityFactory
	rng     RandomSource

	// OnSpawned 生成成功后的回调（可选）
	OnSpawned func(spawner, item *components.Entity)
}

// NewSpawnSystem 创建生成系统
// 参数:
//   - rng: 随机源，为 nil 时使用以当前时间为种子的 *rand.Rand
func NewSpawnSystem(board *GridBoard, catalog ItemCatalog, factory *EntityFactory, rng RandomSource) *SpawnSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SpawnSystem{
		board:   board,
		catalog: catalog,
		factory: factory,
		rng:     rng,
	}
}

// totalWeight 生成表总权重（负权重按 0 计）
func totalWeight(table []config.SpawnEntry) float64 {
	total := 0.0
	for _, entry := range table {
		if entry.Weight > 0 {
			total += entry.Weight
		}
	}
	return total
}

// firstUsable 第一个物品类型非空的条目
func firstUsable(table []config.SpawnEntry) (string, bool) {
	for _, entry := range table {
		if entry.Item != "" {
			return entry.Item, true
		}
	}
	return "", false
}

// pickWeighted 用给定抽样值在生成表中选择
//
// 按顺序累加权重，返回第一个满足 draw < 累计权重 的条目。
// 对 [(X,70),(Y,30)]：draw ∈ [0,70) 选 X，draw ∈ [70,100) 选 Y。
//
// 返回:
//   - string: 选中的物品类型（条目没有配置物品时为空）
//   - bool: draw 超出总权重时为 false
func pickWeighted(table []config.SpawnEntry, draw float64) (string, bool) {
	cumulative := 0.0
	for _, entry := range table {
		if entry.Weight <= 0 {
			continue
		}
		cumulative += entry.Weight
		if draw < cumulative {
			return entry.Item, true
		}
	}
	return "", false
}

// SelectFromTable 按权重随机选择物品类型
// 总权重 <= 0 时回退到第一个可用条目（记录为配置错误）
//
// 返回:
//   - string: 物品类型ID
//   - bool: 没有可用条目时为 false
func (s *SpawnSystem) SelectFromTable(table []config.SpawnEntry) (string, bool) {
	total := totalWeight(table)
	if total <= 0 {
		item, ok := firstUsable(table)
		if ok {
			log.Printf("[Spawner] Warning: spawn table has zero total weight, falling back to %q", item)
		} else {
			log.Printf("[Spawner] Warning: spawn table has zero total weight and no usable entry")
		}
		return item, ok
	}

	draw := s.rng.Float64() * total
	item, ok := pickWeighted(table, draw)
	if !ok {
		// 浮点舍入导致 draw 落在总权重之外，取最后一个有权重的条目
		for i := len(table) - 1; i >= 0; i-- {
			if table[i].Weight > 0 {
				item, ok = table[i].Item, true
				break
			}
		}
	}
	if item == "" {
		log.Printf("[Spawner] Warning: selected spawn entry has no item")
		return "", false
	}
	return item, ok
}

// TrySpawn 生成器被点击时尝试生成一个物品
//
// 步骤：
//  1. 冷却中（计数达到上限且剩余冷却 > 0）拒绝
//  2. 按权重选择物品类型
//  3. 找离生成器最近的空格子，没有则拒绝（物品丢弃）
//  4. 创建物品并放置，计数 +1，达到上限时开始冷却
//
// 返回:
//   - SpawnOutcome: 结果
//   - *components.Entity: 新物品（仅 Spawned 时非 nil）
func (s *SpawnSystem) TrySpawn(spawner *components.Entity) (SpawnOutcome, *components.Entity) {
	if !spawner.IsSpawner() || spawner.Destroyed() {
		return SpawnRefusedConfig, nil
	}
	def, err := s.catalog.Resolve(spawner.TypeID)
	if err != nil {
		log.Printf("[Spawner] Warning: %v: %v", spawner, err)
		return SpawnRefusedConfig, nil
	}
	if !def.IsSpawner() {
		log.Printf("[Spawner] Warning: %v: catalog entry %q is not a spawner", spawner, def.ID)
		return SpawnRefusedConfig, nil
	}

	state := spawner.Spawner
	if state.IsCoolingDown(def.MaxSpawnsBeforeCooldown) {
		return SpawnRefusedCooldown, nil
	}

	typeID, ok := s.SelectFromTable(def.Spawns)
	if !ok {
		log.Printf("[Spawner] Warning: %v has no usable spawn entry", spawner)
		return SpawnRefusedConfig, nil
	}

	pos, ok := s.board.PositionOf(spawner)
	if !ok {
		log.Printf("[Spawner] Warning: %v is not on the board", spawner)
		return SpawnRefusedNoSlot, nil
	}
	slot, ok := s.board.FindClosestEmpty(pos)
	if !ok {
		log.Printf("[Spawner] Board full, %q from %v is lost", typeID, spawner)
		return SpawnRefusedNoSlot, nil
	}

	item, err := s.factory.CreateItem(typeID)
	if err != nil {
		log.Printf("[Spawner] Warning: %v: %v", spawner, err)
		return SpawnRefusedConfig, nil
	}
	if err := s.board.Place(item, slot); err != nil {
		log.Printf("[Spawner] Warning: %v: %v", spawner, err)
		return SpawnRefusedNoSlot, nil
	}

	state.ItemsSpawned++
	if state.ItemsSpawned >= def.MaxSpawnsBeforeCooldown {
		startCooldown(state, def.CooldownSeconds)
		log.Printf("[Spawner] %v reached %d spawns, cooldown %.1fs", spawner, def.MaxSpawnsBeforeCooldown, def.CooldownSeconds)
	}

	if s.OnSpawned != nil {
		s.OnSpawned(spawner, item)
	}
	return Spawned, item
}

// startCooldown 开始冷却；冷却时长 <= 0 时立即清零计数
func startCooldown(state *components.SpawnerState, duration float64) {
	if duration <= 0 {
		state.ItemsSpawned = 0
		state.CooldownRemaining = 0
		return
	}
	state.CooldownRemaining = duration
}

// TickCooldown 推进单个生成器的冷却
// 冷却归零时同时清零剩余时间和生成计数
func TickCooldown(state *components.SpawnerState, dt float64) {
	if state == nil || state.CooldownRemaining <= 0 {
		return
	}
	state.CooldownRemaining -= dt
	if state.CooldownRemaining <= 0 {
		state.CooldownRemaining = 0
		state.ItemsSpawned = 0
	}
}

// Update 推进棋盘上所有生成器的冷却
func (s *SpawnSystem) Update(dt float64) {
	for _, e := range s.board.Entities() {
		if e.IsSpawner() {
			TickCooldown(e.Spawner, dt)
		}
	}
}
