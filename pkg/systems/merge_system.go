package systems

import (
	"log"

	"github.com/decker502/mergegrid/pkg/components"
)

// MergeOutcome 合成结果
type MergeOutcome int

const (
	// MergeRejected 前置条件不满足，没有任何状态变化
	MergeRejected MergeOutcome = iota
	// MergeMaxTier 等级匹配但目标已是最高级，两者保持不变
	MergeMaxTier
	// Merged 两者被销毁，下一级物品出现在目标原来的格子中
	Merged
)

func (o MergeOutcome) String() string {
	switch o {
	case MergeRejected:
		return "rejected"
	case MergeMaxTier:
		return "max_tier"
	case Merged:
		return "merged"
	default:
		return "unknown"
	}
}

// MergeSystem 合成判定
// 被拖拽的实体 A 释放到静止实体 B 上时，决定是否合成并产生新实体
type MergeSystem struct {
	board   *GridBoard
	catalog ItemCatalog
	factory *EntityFactory

	// OnMerged 合成成功后的回调（可选），用于表现层特效或统计
	OnMerged func(result *components.Entity)
}

// NewMergeSystem 创建合成系统
func NewMergeSystem(board *GridBoard, catalog ItemCatalog, factory *EntityFactory) *MergeSystem {
	return &MergeSystem{
		board:   board,
		catalog: catalog,
		factory: factory,
	}
}

// HandleDrop 实现 DropHandler
func (m *MergeSystem) HandleDrop(dragged, target *components.Entity) {
	m.Resolve(dragged, target)
}

// Resolve 尝试将 a 合成到 b 上
//
// 前置条件按顺序检查，任一失败立即返回 MergeRejected：
//  1. b 未锁定
//  2. a 未锁定
//  3. a 与 b 不是同一实体
//  4. 两者都是物品且类型能在目录中解析
//  5. 等级相同
//
// 成功时：b 没有下一级则返回 MergeMaxTier（不做任何修改）；
// 否则销毁 a 和 b，在 b 的格子中原地放入下一级物品。
//
// 返回:
//   - MergeOutcome: 合成结果
//   - *components.Entity: 合成产生的新实体（仅 Merged 时非 nil）
func (m *MergeSystem) Resolve(a, b *components.Entity) (MergeOutcome, *components.Entity) {
	if a.Destroyed() || b.Destroyed() {
		return MergeRejected, nil
	}
	if b.Locked {
		return MergeRejected, nil
	}
	if a.Locked {
		return MergeRejected, nil
	}
	if a == b {
		return MergeRejected, nil
	}
	if !a.IsItem() || !b.IsItem() {
		return MergeRejected, nil
	}
	defA, err := m.catalog.Resolve(a.TypeID)
	if err != nil {
		log.Printf("[Merge] Warning: dragged %v: %v", a, err)
		return MergeRejected, nil
	}
	defB, err := m.catalog.Resolve(b.TypeID)
	if err != nil {
		log.Printf("[Merge] Warning: target %v: %v", b, err)
		return MergeRejected, nil
	}
	if defA.IsSpawner() || defB.IsSpawner() {
		return MergeRejected, nil
	}
	if defA.Tier != defB.Tier {
		return MergeRejected, nil
	}

	if !defB.HasNextTier() {
		return MergeMaxTier, nil
	}

	slot := b.Slot
	if !m.board.IsValidSlot(slot) || m.board.EntityAt(slot) != b {
		log.Printf("[Merge] Warning: target %v is not on the board: %v", b, ErrDesync)
		return MergeRejected, nil
	}

	result, err := m.factory.CreateItem(defB.NextTier)
	if err != nil {
		log.Printf("[Merge] Warning: cannot create next tier of %v: %v", b, err)
		return MergeRejected, nil
	}

	if _, err := m.board.replaceOccupant(slot, result); err != nil {
		log.Printf("[Merge] Error: %v", err)
		return MergeRejected, nil
	}
	if a.OnBoard() {
		m.board.Clear(a.Slot)
	}
	a.Destroy()
	b.Destroy()

	log.Printf("[Merge] %v + %v -> %v at slot %d", a, b, result, slot)
	if m.OnMerged != nil {
		m.OnMerged(result)
	}
	return Merged, result
}
