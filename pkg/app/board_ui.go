package app

import (
	"fmt"
	"image/color"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/config"
	"github.com/decker502/mergegrid/pkg/game"
	"github.com/decker502/mergegrid/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
)

var (
	backgroundColor   = colornames.Linen
	panelColor        = color.RGBA{90, 70, 60, 255}
	slotColor         = colornames.Oldlace
	slotBorderColor   = colornames.Tan
	highlightColor    = colornames.Gold
	spawnerColor      = colornames.Burlywood
	cooldownColor     = color.RGBA{0, 0, 0, 120}
	lockColor         = colornames.Slategray
	buttonColor       = colornames.Peru
	buttonActiveColor = colornames.Sienna

	// tierColors 按合成等级循环取色
	tierColors = []color.RGBA{
		colornames.Wheat,
		colornames.Lightsalmon,
		colornames.Skyblue,
		colornames.Palegreen,
		colornames.Plum,
		colornames.Khaki,
	}
)

// tierColor 返回物品等级对应的颜色
func tierColor(tier int) color.RGBA {
	if tier < 1 {
		return tierColors[0]
	}
	return tierColors[(tier-1)%len(tierColors)]
}

// BoardUI 棋盘面板的渲染器，同时作为棋盘的界面通知接收者
//
// 棋盘状态变化时通过 UISink 回调记录高亮和锁定图标，
// Draw 每帧根据这些记录和当前棋盘绘制面板。
type BoardUI struct {
	session *game.Session

	selected   *components.Entity
	highlights map[components.SlotIndex]bool
	lockIcons  map[components.SlotIndex]bool
}

// NewBoardUI 创建面板渲染器
func NewBoardUI(session *game.Session) *BoardUI {
	return &BoardUI{
		session:    session,
		highlights: make(map[components.SlotIndex]bool),
		lockIcons:  make(map[components.SlotIndex]bool),
	}
}

func (u *BoardUI) OnSelectionChanged(e *components.Entity) {
	u.selected = e
}

func (u *BoardUI) OnSlotHighlight(slot components.SlotIndex, on bool) {
	if on {
		u.highlights[slot] = true
	} else {
		delete(u.highlights, slot)
	}
}

func (u *BoardUI) OnLockIconChanged(slot components.SlotIndex, visible bool) {
	if visible {
		u.lockIcons[slot] = true
	} else {
		delete(u.lockIcons, slot)
	}
}

// Selected 当前选中的实体
func (u *BoardUI) Selected() *components.Entity {
	return u.selected
}

// Draw 绘制棋盘面板；面板关闭时只绘制提示
func (u *BoardUI) Draw(screen *ebiten.Image) {
	if !u.session.PanelOpen() {
		hint := "Press Space or click the button to open the board"
		if utils.IsMobile() {
			hint = "Tap the button to open the board"
		}
		ebitenutil.DebugPrintAt(screen, hint, 20, 20)
		return
	}

	layout := u.session.Layout()
	board := u.session.Board()

	const pad = 12
	w, h := layout.Bounds()
	vector.DrawFilledRect(screen,
		float32(layout.OriginX-pad), float32(layout.OriginY-pad),
		float32(w+2*pad), float32(h+2*pad),
		panelColor, false)

	for i := 0; i < layout.SlotCount(); i++ {
		slot := components.SlotIndex(i)
		x, y, size := layout.SlotRect(i)

		vector.DrawFilledRect(screen, float32(x), float32(y), float32(size), float32(size), slotColor, false)

		border, width := color.Color(slotBorderColor), float32(2)
		if u.highlights[slot] {
			border, width = highlightColor, 4
		}
		vector.StrokeRect(screen, float32(x), float32(y), float32(size), float32(size), width, border, false)

		if e := board.EntityAt(slot); e != nil {
			u.drawEntity(screen, e, x, y, size)
			if u.lockIcons[slot] {
				drawLockIcon(screen, x, y, size)
			}
		}
	}

	// 拖拽中的实体跟随指针
	if d := u.session.Gesture().Dragging(); d != nil {
		size := layout.CellSize
		u.drawEntity(screen, d, d.Gesture.DragPos.X-size/2, d.Gesture.DragPos.Y-size/2, size)
	}

	u.drawInfo(screen, layout.OriginX, layout.OriginY+h+pad+8)
}

// drawEntity 在 (x, y) 处绘制实体方块和文字
func (u *BoardUI) drawEntity(screen *ebiten.Image, e *components.Entity, x, y, size float64) {
	def, err := u.session.Catalog().Resolve(e.TypeID)
	if err != nil {
		ebitenutil.DebugPrintAt(screen, "?"+e.TypeID, int(x)+4, int(y)+4)
		return
	}

	scale := def.VisualScale
	if scale <= 0 || scale > 1 {
		scale = config.DefaultVisualScale
	}
	inner := size * 0.8 * scale
	ix := x + (size-inner)/2
	iy := y + (size-inner)/2

	fill := tierColor(def.Tier)
	if def.IsSpawner() {
		fill = spawnerColor
	}
	vector.DrawFilledRect(screen, float32(ix), float32(iy), float32(inner), float32(inner), fill, true)
	ebitenutil.DebugPrintAt(screen, def.Name(), int(ix)+4, int(iy)+4)

	if !def.IsSpawner() {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("T%d", def.Tier), int(ix)+4, int(iy+inner)-18)
		return
	}

	state := e.Spawner
	if state.IsCoolingDown(def.MaxSpawnsBeforeCooldown) {
		vector.DrawFilledRect(screen, float32(ix), float32(iy), float32(inner), float32(inner), cooldownColor, true)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.1fs", state.CooldownRemaining), int(ix)+4, int(iy+inner)-18)
		return
	}
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("%d/%d", state.ItemsSpawned, def.MaxSpawnsBeforeCooldown),
		int(ix)+4, int(iy+inner)-18)
}

func drawLockIcon(screen *ebiten.Image, x, y, size float64) {
	const icon = 18
	lx := x + size - icon - 4
	ly := y + 4
	vector.DrawFilledRect(screen, float32(lx), float32(ly), icon, icon, lockColor, false)
	ebitenutil.DebugPrintAt(screen, "L", int(lx)+6, int(ly)+1)
}

// drawInfo 显示选中实体的名称和描述
func (u *BoardUI) drawInfo(screen *ebiten.Image, x, y float64) {
	e := u.selected
	if e == nil || e.Destroyed() {
		ebitenutil.DebugPrintAt(screen, "Tap an item to inspect it, hold to lock, drag to merge", int(x), int(y))
		return
	}
	def, err := u.session.Catalog().Resolve(e.TypeID)
	if err != nil {
		return
	}

	line := fmt.Sprintf("%s (tier %d)", def.Name(), def.Tier)
	if def.IsSpawner() {
		line = fmt.Sprintf("%s (spawner)", def.Name())
	}
	if e.Locked {
		line += " [locked]"
	}
	ebitenutil.DebugPrintAt(screen, line, int(x), int(y))
	if def.Description != "" {
		ebitenutil.DebugPrintAt(screen, def.Description, int(x), int(y)+16)
	}
}

// toggleButton 屏幕底部的面板开关
type toggleButton struct {
	x, y, w, h float64
}

func newToggleButton(screen config.ScreenConfig) toggleButton {
	const w, h = 180.0, 48.0
	return toggleButton{
		x: (float64(screen.Width) - w) / 2,
		y: float64(screen.Height) - h - 20,
		w: w,
		h: h,
	}
}

// Contains 点是否落在按钮内
func (b toggleButton) Contains(p utils.Point) bool {
	return p.X >= b.x && p.X < b.x+b.w && p.Y >= b.y && p.Y < b.y+b.h
}

// Draw 绘制按钮，open 表示面板当前是否打开
func (b toggleButton) Draw(screen *ebiten.Image, open bool) {
	fill, label := buttonColor, "Open board"
	if open {
		fill, label = buttonActiveColor, "Close board"
	}
	vector.DrawFilledRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), fill, true)
	ebitenutil.DebugPrintAt(screen, label, int(b.x)+50, int(b.y)+16)
}
