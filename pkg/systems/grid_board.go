package systems

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/utils"
)

// GridBoard 棋盘：固定数量的格子及其占用表
//
// 棋盘是格子与实体关联的唯一拥有者。每次公开操作结束后保证：
//   - 每个声明的格子都在占用表中（实体或空）
//   - 非空格子上实体的 Slot 反向引用等于该格子
//   - 一个格子最多一个实体，一个实体最多在一个格子中
//
// 选中状态也由棋盘维护（同一时刻最多选中一个实体），不写入存档。
type GridBoard struct {
	occupancy []*components.Entity
	spatial   SpatialQuery
	ui        UISink

	selected    *components.Entity
	highlighted components.SlotIndex
}

// NewGridBoard 创建棋盘
// 参数:
//   - spatial: 空间查询，格子数量由它决定；为 nil 时棋盘没有格子
//   - ui: 界面通知接收者，为 nil 时丢弃通知
//
// 返回:
//   - *GridBoard: 所有格子为空的棋盘
func NewGridBoard(spatial SpatialQuery, ui UISink) *GridBoard {
	if ui == nil {
		ui = NopUISink{}
	}
	count := 0
	if spatial != nil {
		count = spatial.SlotCount()
	}
	if count == 0 {
		log.Printf("[GridBoard] Warning: board declares no slots, placement is disabled")
	}
	return &GridBoard{
		occupancy:   make([]*components.Entity, count),
		spatial:     spatial,
		ui:          ui,
		highlighted: components.NoSlot,
	}
}

// SetUISink 替换界面通知接收者
func (b *GridBoard) SetUISink(ui UISink) {
	if ui == nil {
		ui = NopUISink{}
	}
	b.ui = ui
}

// SlotCount 格子数量
func (b *GridBoard) SlotCount() int {
	return len(b.occupancy)
}

// IsValidSlot 格子是否属于棋盘
func (b *GridBoard) IsValidSlot(slot components.SlotIndex) bool {
	return slot.Valid(len(b.occupancy))
}

// IsOccupied 格子是否被占用（无效格子返回 false）
func (b *GridBoard) IsOccupied(slot components.SlotIndex) bool {
	return b.EntityAt(slot) != nil
}

// EntityAt 返回格子上的实体，空格子或无效格子返回 nil
func (b *GridBoard) EntityAt(slot components.SlotIndex) *components.Entity {
	if !b.IsValidSlot(slot) {
		return nil
	}
	return b.occupancy[slot]
}

// Place 将实体放入格子
//
// 如果格子已有其他实体，会覆盖并记录警告：原实体不会被销毁，
// 但它的反向引用会被清除（调用方应事先把它移走）。
// 实体如果原本在另一个格子中，会先从那里移除。
//
// 返回:
//   - error: 棋盘没有格子时返回 ErrNoBoard，格子无效时返回 ErrInvalidSlot
func (b *GridBoard) Place(e *components.Entity, slot components.SlotIndex) error {
	if len(b.occupancy) == 0 {
		return ErrNoBoard
	}
	if !b.IsValidSlot(slot) {
		return fmt.Errorf("%w: %d (board has %d slots)", ErrInvalidSlot, slot, len(b.occupancy))
	}
	if e.Destroyed() {
		return fmt.Errorf("cannot place destroyed entity %v", e)
	}

	if prior := b.occupancy[slot]; prior != nil && prior != e {
		log.Printf("[GridBoard] Warning: slot %d already holds %v, overwriting with %v", slot, prior, e)
		b.detach(prior)
	}

	if e.Slot != components.NoSlot && e.Slot != slot {
		old := e.Slot
		if b.IsValidSlot(old) && b.occupancy[old] == e {
			b.occupancy[old] = nil
			b.ui.OnLockIconChanged(old, false)
			if b.highlighted == old {
				b.ui.OnSlotHighlight(old, false)
				b.highlighted = components.NoSlot
			}
		}
	}

	b.occupancy[slot] = e
	e.Slot = slot
	b.ui.OnLockIconChanged(slot, e.Locked)

	if b.selected == e && b.highlighted != slot {
		b.highlighted = slot
		b.ui.OnSlotHighlight(slot, true)
	}
	return nil
}

// Clear 清空格子（幂等，空格子或无效格子直接返回）
// 被移走的实体如果处于选中状态，选中会一并取消
func (b *GridBoard) Clear(slot components.SlotIndex) {
	occupant := b.EntityAt(slot)
	if occupant == nil {
		return
	}
	b.occupancy[slot] = nil
	if occupant.Slot == slot {
		occupant.Slot = components.NoSlot
	}
	b.ui.OnLockIconChanged(slot, false)
	if b.selected == occupant {
		b.ClearSelection()
	}
}

// detach 移除被覆盖实体的反向引用
func (b *GridBoard) detach(e *components.Entity) {
	e.Slot = components.NoSlot
	if b.selected == e {
		b.ClearSelection()
	}
}

// replaceOccupant 用新实体原地替换格子上的实体并返回旧实体
// 替换过程中格子不会出现空的中间状态
func (b *GridBoard) replaceOccupant(slot components.SlotIndex, e *components.Entity) (*components.Entity, error) {
	if !b.IsValidSlot(slot) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	old := b.occupancy[slot]
	if old != nil {
		b.detach(old)
	}
	b.occupancy[slot] = e
	e.Slot = slot
	b.ui.OnLockIconChanged(slot, e.Locked)
	return old, nil
}

// FindClosestEmpty 查找距离参考点最近的空格子
//
// 线性扫描所有格子，按欧氏距离比较；距离相同时取声明顺序中靠前的格子。
//
// 返回:
//   - components.SlotIndex: 最近的空格子
//   - bool: 没有空格子时为 false
func (b *GridBoard) FindClosestEmpty(p utils.Point) (components.SlotIndex, bool) {
	best := components.NoSlot
	bestDist := math.Inf(1)
	for i, occupant := range b.occupancy {
		if occupant != nil {
			continue
		}
		d := utils.Distance(b.SlotPosition(components.SlotIndex(i)), p)
		if d < bestDist {
			best = components.SlotIndex(i)
			bestDist = d
		}
	}
	return best, best != components.NoSlot
}

// ResetAll 销毁所有实体并清空所有格子，同时取消选中
// 返回被移除的实体，供调用方释放表现层资源
func (b *GridBoard) ResetAll() []*components.Entity {
	b.ClearSelection()

	var removed []*components.Entity
	for i, occupant := range b.occupancy {
		if occupant == nil {
			continue
		}
		b.occupancy[i] = nil
		b.ui.OnLockIconChanged(components.SlotIndex(i), false)
		occupant.Destroy()
		removed = append(removed, occupant)
	}
	if len(removed) > 0 {
		log.Printf("[GridBoard] Reset: removed %d entities", len(removed))
	}
	return removed
}

// HasAnyOccupied 是否有任意格子被占用
func (b *GridBoard) HasAnyOccupied() bool {
	for _, occupant := range b.occupancy {
		if occupant != nil {
			return true
		}
	}
	return false
}

// Entities 按格子顺序返回棋盘上的所有实体
func (b *GridBoard) Entities() []*components.Entity {
	var result []*components.Entity
	for _, occupant := range b.occupancy {
		if occupant != nil {
			result = append(result, occupant)
		}
	}
	return result
}

// EmptyCount 空格子数量
func (b *GridBoard) EmptyCount() int {
	n := 0
	for _, occupant := range b.occupancy {
		if occupant == nil {
			n++
		}
	}
	return n
}

// SlotPosition 格子中心坐标
func (b *GridBoard) SlotPosition(slot components.SlotIndex) utils.Point {
	if b.spatial == nil {
		return utils.Point{}
	}
	return b.spatial.SlotPosition(slot)
}

// SlotAt 坐标命中的格子
func (b *GridBoard) SlotAt(p utils.Point) (components.SlotIndex, bool) {
	if b.spatial == nil {
		return components.NoSlot, false
	}
	slot, ok := b.spatial.SlotAt(p)
	if !ok || !b.IsValidSlot(slot) {
		return components.NoSlot, false
	}
	return slot, true
}

// PositionOf 返回实体的当前位置
// 拖拽中的实体返回拖拽位置，在棋盘上的实体返回所在格子中心
func (b *GridBoard) PositionOf(e *components.Entity) (utils.Point, bool) {
	if e.Destroyed() {
		return utils.Point{}, false
	}
	if e.Gesture.IsDragging() {
		return e.Gesture.DragPos, true
	}
	if !b.IsValidSlot(e.Slot) {
		return utils.Point{}, false
	}
	return b.SlotPosition(e.Slot), true
}

// Select 选中实体并高亮其所在格子，同时取消之前的选中
// e 为 nil 等同于 ClearSelection
func (b *GridBoard) Select(e *components.Entity) {
	if e == nil {
		b.ClearSelection()
		return
	}
	if b.highlighted != components.NoSlot && b.highlighted != e.Slot {
		b.ui.OnSlotHighlight(b.highlighted, false)
		b.highlighted = components.NoSlot
	}
	b.selected = e
	if b.IsValidSlot(e.Slot) {
		b.highlighted = e.Slot
		b.ui.OnSlotHighlight(e.Slot, true)
	}
	b.ui.OnSelectionChanged(e)
}

// ClearSelection 取消选中并关闭高亮
func (b *GridBoard) ClearSelection() {
	if b.highlighted != components.NoSlot {
		b.ui.OnSlotHighlight(b.highlighted, false)
		b.highlighted = components.NoSlot
	}
	if b.selected != nil {
		b.selected = nil
		b.ui.OnSelectionChanged(nil)
	}
}

// Selected 当前选中的实体
func (b *GridBoard) Selected() *components.Entity {
	return b.selected
}

// RefreshLockIcon 通知界面刷新实体所在格子的锁定图标
func (b *GridBoard) RefreshLockIcon(e *components.Entity) {
	if e.OnBoard() && b.IsValidSlot(e.Slot) {
		b.ui.OnLockIconChanged(e.Slot, e.Locked)
	}
}

// CheckConsistency 校验占用表与反向引用的一致性
func (b *GridBoard) CheckConsistency() error {
	seen := make(map[*components.Entity]components.SlotIndex)
	for i, occupant := range b.occupancy {
		if occupant == nil {
			continue
		}
		slot := components.SlotIndex(i)
		if occupant.Destroyed() {
			return fmt.Errorf("%w: slot %d holds destroyed entity %v", ErrDesync, slot, occupant)
		}
		if occupant.Slot != slot {
			return fmt.Errorf("%w: slot %d holds %v whose back-reference is %d", ErrDesync, slot, occupant, occupant.Slot)
		}
		if prev, dup := seen[occupant]; dup {
			return fmt.Errorf("%w: %v occupies slots %d and %d", ErrDesync, occupant, prev, slot)
		}
		seen[occupant] = slot
	}
	return nil
}
