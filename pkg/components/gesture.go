package components

import "github.com/decker502/mergegrid/pkg/utils"

// GesturePhase 指针手势状态
//
// 状态流转：Idle → PressPending → {Dragging | LockTriggered} → Idle
type GesturePhase int

const (
	// GestureIdle 空闲
	GestureIdle GesturePhase = iota
	// GesturePressPending 已按下，正在累计长按时间
	GesturePressPending
	// GestureDragging 拖拽中
	GestureDragging
	// GestureLockTriggered 长按达到阈值，锁定状态已切换
	GestureLockTriggered
)

// String 返回手势状态名称
func (p GesturePhase) String() string {
	switch p {
	case GestureIdle:
		return "idle"
	case GesturePressPending:
		return "press_pending"
	case GestureDragging:
		return "dragging"
	case GestureLockTriggered:
		return "lock_triggered"
	default:
		return "unknown"
	}
}

// GestureState 每个实体独立的手势状态
// 每个实体最多只有一个长按计时器
type GestureState struct {
	Phase    GesturePhase
	HoldTime float64 // 长按累计时间（秒）

	// JustFinishedDrag 刚结束一次拖拽，下一次点击不触发选中
	JustFinishedDrag bool
	// LockJustChanged 刚通过长按切换了锁定，下一次点击不触发选中
	LockJustChanged bool

	// Origin 拖拽开始前所在的格子，用于回弹
	Origin SlotIndex
	// DragPos 拖拽中的临时显示位置（不影响棋盘）
	DragPos utils.Point
}

// NewGestureState 返回初始手势状态
func NewGestureState() GestureState {
	return GestureState{
		Phase:  GestureIdle,
		Origin: NoSlot,
	}
}

// IsDragging 是否处于拖拽中
func (g *GestureState) IsDragging() bool {
	return g.Phase == GestureDragging
}

// SuppressesClick 本次点击是否应被吞掉
// 拖拽释放和长按切换锁定都会产生一次收尾点击，这次点击不能再触发选中
func (g *GestureState) SuppressesClick() bool {
	return g.JustFinishedDrag || g.LockJustChanged
}
