package systems

import (
	"log"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/utils"
)

// DefaultHoldToLockSeconds 长按切换锁定的默认阈值
const DefaultHoldToLockSeconds = 2.0

// DropOutcome 拖拽结束时的结算结果（每次结束恰好一种）
type DropOutcome int

const (
	// DropIgnored 实体不在拖拽中，忽略
	DropIgnored DropOutcome = iota
	// DropMerged 实体在拖拽中被合成消耗，跳过结算
	DropMerged
	// DropConsumed 目标处理器已经安置了实体，保持原样
	DropConsumed
	// DropMoved 移动到新的空格子
	DropMoved
	// DropReturned 放回原格子
	DropReturned
	// DropSnappedBack 无效放置，回弹到原格子
	DropSnappedBack
)

func (o DropOutcome) String() string {
	switch o {
	case DropIgnored:
		return "ignored"
	case DropMerged:
		return "merged"
	case DropConsumed:
		return "consumed"
	case DropMoved:
		return "moved"
	case DropReturned:
		return "returned"
	case DropSnappedBack:
		return "snapped_back"
	default:
		return "unknown"
	}
}

// DropHandler 拖拽实体被释放到另一个实体上时调用
// 处理器可以销毁被拖拽实体，或者把它放到某个格子中；
// 都不做时被拖拽实体会回弹
type DropHandler interface {
	HandleDrop(dragged, target *components.Entity)
}

// GestureSystem 实体手势状态机
//
// 每个实体的状态保存在 components.GestureState 中，本系统负责驱动：
//   - 按下 → PressPending，长按累计达到阈值 → 切换锁定 → Idle
//   - 阈值前开始拖拽会取消长按计时，不切换锁定
//   - 拖拽结束时结算为移动、放回、被目标处理、回弹之一
//
// 同一时刻只有一个实体处于拖拽中。
type GestureSystem struct {
	board         *GridBoard
	dropHandler   DropHandler
	holdThreshold float64

	pending  map[components.EntityID]*components.Entity
	dragging *components.Entity
}

// NewGestureSystem 创建手势系统
// 参数:
//   - board: 棋盘
//   - dropHandler: 放置到已占用格子时的处理器（通常是 MergeSystem），可为 nil
//   - holdThreshold: 长按切换锁定阈值（秒），<= 0 时使用默认值
func NewGestureSystem(board *GridBoard, dropHandler DropHandler, holdThreshold float64) *GestureSystem {
	if holdThreshold <= 0 {
		holdThreshold = DefaultHoldToLockSeconds
	}
	return &GestureSystem{
		board:         board,
		dropHandler:   dropHandler,
		holdThreshold: holdThreshold,
		pending:       make(map[components.EntityID]*components.Entity),
	}
}

// SetDropHandler 设置放置处理器
func (s *GestureSystem) SetDropHandler(h DropHandler) {
	s.dropHandler = h
}

// HoldThreshold 长按阈值（秒）
func (s *GestureSystem) HoldThreshold() float64 {
	return s.holdThreshold
}

// Dragging 当前拖拽中的实体，没有时返回 nil
func (s *GestureSystem) Dragging() *components.Entity {
	return s.dragging
}

// PressDown 指针在实体上按下
// 已在拖拽中时忽略；否则进入 PressPending 并清空上一轮的点击抑制标记
func (s *GestureSystem) PressDown(e *components.Entity) {
	if e.Destroyed() || e.Gesture.IsDragging() {
		return
	}
	g := &e.Gesture
	g.Phase = components.GesturePressPending
	g.HoldTime = 0
	g.JustFinishedDrag = false
	g.LockJustChanged = false
	s.pending[e.ID] = e
}

// PressUp 指针释放，取消尚未触发的长按计时
func (s *GestureSystem) PressUp(e *components.Entity) {
	if e.Destroyed() {
		delete(s.pending, e.ID)
		return
	}
	if e.Gesture.Phase == components.GesturePressPending {
		e.Gesture.Phase = components.GestureIdle
		e.Gesture.HoldTime = 0
	}
	delete(s.pending, e.ID)
}

// Update 推进长按计时
// 参数:
//   - dt: 距上一帧的时间（秒）
func (s *GestureSystem) Update(dt float64) {
	for id, e := range s.pending {
		if e.Destroyed() || e.Gesture.Phase != components.GesturePressPending {
			delete(s.pending, id)
			continue
		}
		g := &e.Gesture
		g.HoldTime += dt
		if g.HoldTime < s.holdThreshold {
			continue
		}

		g.Phase = components.GestureLockTriggered
		e.Locked = !e.Locked
		g.LockJustChanged = true
		s.board.RefreshLockIcon(e)
		log.Printf("[Gesture] %v %v: locked=%v", e, g.Phase, e.Locked)

		g.HoldTime = 0
		g.Phase = components.GestureIdle
		delete(s.pending, id)
	}
}

// IsHoldPending 实体是否有未结束的长按计时
func (s *GestureSystem) IsHoldPending(e *components.Entity) bool {
	_, ok := s.pending[e.ID]
	return ok
}

// BeginDrag 开始拖拽
//
// 锁定实体不能拖拽：拖拽被取消，长按计时也一并取消（指针已经移动）。
// 成功时取消长按计时、清除选中高亮、把实体从格子中移出并记录原格子。
//
// 返回:
//   - bool: 是否进入拖拽
func (s *GestureSystem) BeginDrag(e *components.Entity, p utils.Point) bool {
	if e.Destroyed() || s.dragging != nil || e.Gesture.IsDragging() {
		return false
	}

	s.cancelHold(e)

	if e.Locked {
		return false
	}
	if !s.board.IsValidSlot(e.Slot) || s.board.EntityAt(e.Slot) != e {
		log.Printf("[Gesture] Warning: %v is not on the board, drag refused", e)
		return false
	}

	s.board.ClearSelection()

	g := &e.Gesture
	g.Phase = components.GestureDragging
	g.Origin = e.Slot
	g.DragPos = p
	s.board.Clear(e.Slot)
	s.dragging = e
	return true
}

func (s *GestureSystem) cancelHold(e *components.Entity) {
	if e.Gesture.Phase == components.GesturePressPending {
		e.Gesture.Phase = components.GestureIdle
		e.Gesture.HoldTime = 0
	}
	delete(s.pending, e.ID)
}

// DragMove 拖拽中移动，只更新显示位置，不修改棋盘
func (s *GestureSystem) DragMove(e *components.Entity, p utils.Point) {
	if e.Destroyed() || !e.Gesture.IsDragging() {
		return
	}
	e.Gesture.DragPos = p
}

// EndDrag 结束拖拽并结算
//
// 结算规则：
//  1. 释放点是另一个被占用的格子：交给 DropHandler；
//     实体被销毁则跳过结算，被安置则保持原样
//  2. 释放点是原格子：放回原格子
//  3. 释放点是另一个空格子：移动过去
//  4. 其他情况：回弹到原格子
func (s *GestureSystem) EndDrag(e *components.Entity, p utils.Point) DropOutcome {
	if e.Destroyed() {
		if s.dragging == e {
			s.dragging = nil
		}
		return DropIgnored
	}
	if !e.Gesture.IsDragging() {
		return DropIgnored
	}

	origin := e.Gesture.Origin
	e.Gesture.DragPos = p
	target, hit := s.board.SlotAt(p)

	outcome := DropSnappedBack
	switch {
	case hit && target != origin && s.board.IsOccupied(target):
		if s.dropHandler != nil {
			s.dropHandler.HandleDrop(e, s.board.EntityAt(target))
		}
		// 处理器可能已经销毁了实体，实例不能再使用
		if e.Destroyed() {
			s.dragging = nil
			return DropMerged
		}
		if e.Slot != components.NoSlot {
			outcome = DropConsumed
		}

	case hit && target == origin && !s.board.IsOccupied(target):
		if err := s.board.Place(e, target); err == nil {
			outcome = DropReturned
		}

	case hit && !s.board.IsOccupied(target):
		if err := s.board.Place(e, target); err == nil {
			outcome = DropMoved
		}
	}

	if outcome == DropSnappedBack {
		s.snapBack(e, origin)
	}
	s.finishDrag(e)
	return outcome
}

// CancelDrag 中止拖拽并回弹（例如拖拽中需要存档）
func (s *GestureSystem) CancelDrag() {
	e := s.dragging
	if e == nil {
		return
	}
	if e.Destroyed() || !e.Gesture.IsDragging() {
		s.dragging = nil
		return
	}
	s.snapBack(e, e.Gesture.Origin)
	s.finishDrag(e)
}

func (s *GestureSystem) finishDrag(e *components.Entity) {
	g := &e.Gesture
	g.Phase = components.GestureIdle
	g.JustFinishedDrag = true
	g.Origin = components.NoSlot
	if s.dragging == e {
		s.dragging = nil
	}
}

// snapBack 回弹到原格子
// 原格子在拖拽期间被占用时退而求其次放到离原格子最近的空格子
func (s *GestureSystem) snapBack(e *components.Entity, origin components.SlotIndex) {
	if s.board.IsValidSlot(origin) && !s.board.IsOccupied(origin) {
		_ = s.board.Place(e, origin)
		return
	}

	ref := e.Gesture.DragPos
	if s.board.IsValidSlot(origin) {
		ref = s.board.SlotPosition(origin)
	}
	if slot, ok := s.board.FindClosestEmpty(ref); ok {
		log.Printf("[Gesture] Warning: origin slot %d of %v is taken, moving to slot %d", origin, e, slot)
		_ = s.board.Place(e, slot)
		return
	}

	log.Printf("[Gesture] Warning: %v: no empty slot for snap-back: %v", e, ErrDesync)
	if err := s.board.Place(e, origin); err != nil {
		log.Printf("[Gesture] Error: snap-back of %v failed: %v", e, err)
	}
}

// Click 解释一次点击
// 上一轮按下周期中刚结束拖拽或刚切换锁定时，点击被吞掉；
// 锁定实体仍然可以被选中查看
//
// 返回:
//   - bool: 是否作为选中请求处理
func (s *GestureSystem) Click(e *components.Entity) bool {
	if e.Destroyed() || e.Gesture.IsDragging() {
		return false
	}
	if e.Gesture.SuppressesClick() {
		return false
	}
	s.board.Select(e)
	return true
}

// Forget 实体被移除时清理其手势记录
func (s *GestureSystem) Forget(e *components.Entity) {
	delete(s.pending, e.ID)
	if s.dragging == e {
		s.dragging = nil
	}
}

// Reset 清空所有手势记录（棋盘重置时调用）
func (s *GestureSystem) Reset() {
	s.pending = make(map[components.EntityID]*components.Entity)
	s.dragging = nil
}
