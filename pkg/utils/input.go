// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerSample 单帧的原始指针采样（鼠标或触摸）
type PointerSample struct {
	// Pressed 指针是否处于按下状态
	Pressed bool
	// X, Y 指针位置（屏幕坐标）
	X, Y int
	// TouchID 跟踪的触摸ID（-1 表示鼠标）
	TouchID ebiten.TouchID
}

// PointerEventType 指针事件类型
type PointerEventType int

const (
	// PointerDown 指针按下
	PointerDown PointerEventType = iota
	// PointerMove 按住状态下移动
	PointerMove
	// PointerUp 指针释放
	PointerUp
)

func (t PointerEventType) String() string {
	switch t {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	}
	return "unknown"
}

// PointerEvent 抽象指针事件，由输入层转换后交给会话处理
type PointerEvent struct {
	Type PointerEventType
	Pos  Point
}

// PointerTracker 指针跟踪器
//
// 将每帧的原始采样转换为 down/move/up 事件流。
// 同一时刻只跟踪一个指针：触摸优先，其次鼠标左键。
type PointerTracker struct {
	pressed bool
	touchID ebiten.TouchID
	lastX   int
	lastY   int
}

// NewPointerTracker 创建指针跟踪器
func NewPointerTracker() *PointerTracker {
	return &PointerTracker{touchID: -1}
}

// Feed 输入一帧采样，返回本帧产生的事件
func (pt *PointerTracker) Feed(sample PointerSample) []PointerEvent {
	pos := Point{X: float64(sample.X), Y: float64(sample.Y)}

	switch {
	case !pt.pressed && sample.Pressed:
		pt.pressed = true
		pt.touchID = sample.TouchID
		pt.lastX, pt.lastY = sample.X, sample.Y
		return []PointerEvent{{Type: PointerDown, Pos: pos}}

	case pt.pressed && !sample.Pressed:
		// 触摸释放时采样里已经没有位置，使用最后一次记录的位置
		if pt.touchID >= 0 {
			pos = Point{X: float64(pt.lastX), Y: float64(pt.lastY)}
		}
		pt.Reset()
		return []PointerEvent{{Type: PointerUp, Pos: pos}}

	case pt.pressed && sample.Pressed:
		if sample.X == pt.lastX && sample.Y == pt.lastY {
			return nil
		}
		pt.lastX, pt.lastY = sample.X, sample.Y
		return []PointerEvent{{Type: PointerMove, Pos: pos}}
	}

	return nil
}

// Reset 重置跟踪状态
func (pt *PointerTracker) Reset() {
	pt.pressed = false
	pt.touchID = -1
}

// IsPressed 当前是否处于按下状态
func (pt *PointerTracker) IsPressed() bool {
	return pt.pressed
}

// SamplePointer 从 ebiten 读取当前帧的指针状态
//
// 已在跟踪中的触摸优先；否则检查新按下的触摸；最后回退到鼠标左键。
func (pt *PointerTracker) SamplePointer() PointerSample {
	touchIDs := ebiten.AppendTouchIDs(nil)

	if pt.pressed && pt.touchID >= 0 {
		for _, id := range touchIDs {
			if id == pt.touchID {
				x, y := ebiten.TouchPosition(id)
				return PointerSample{Pressed: true, X: x, Y: y, TouchID: id}
			}
		}
		// 跟踪的触摸已释放
		return PointerSample{Pressed: false, TouchID: pt.touchID}
	}

	if !pt.pressed {
		justPressed := inpututil.AppendJustPressedTouchIDs(nil)
		if len(justPressed) > 0 {
			x, y := ebiten.TouchPosition(justPressed[0])
			return PointerSample{Pressed: true, X: x, Y: y, TouchID: justPressed[0]}
		}
	}

	x, y := ebiten.CursorPosition()
	return PointerSample{
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		X:       x,
		Y:       y,
		TouchID: -1,
	}
}

// Poll 采样并转换为事件（每帧调用一次）
func (pt *PointerTracker) Poll() []PointerEvent {
	return pt.Feed(pt.SamplePointer())
}
