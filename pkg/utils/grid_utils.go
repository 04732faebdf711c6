package utils

import "math"

// Point 屏幕坐标点
type Point struct {
	X, Y float64
}

// Distance 返回两点之间的欧氏距离
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// GridLayout 描述合成棋盘的格子布局
//
// 格子按行优先顺序编号（0..N-1），与棋盘声明顺序一致：
//
//	index = row*Columns + col
type GridLayout struct {
	Columns  int     // 列数
	Rows     int     // 行数
	OriginX  float64 // 网格左上角X坐标
	OriginY  float64 // 网格左上角Y坐标
	CellSize float64 // 每格边长
	Spacing  float64 // 格子间距
}

// SlotCount 返回格子总数
func (l GridLayout) SlotCount() int {
	if l.Columns <= 0 || l.Rows <= 0 {
		return 0
	}
	return l.Columns * l.Rows
}

// pitch 相邻两格左上角之间的距离
func (l GridLayout) pitch() float64 {
	return l.CellSize + l.Spacing
}

// SlotRect 返回格子的左上角坐标和边长
func (l GridLayout) SlotRect(index int) (x, y, size float64) {
	col := index % l.Columns
	row := index / l.Columns
	x = l.OriginX + float64(col)*l.pitch()
	y = l.OriginY + float64(row)*l.pitch()
	return x, y, l.CellSize
}

// SlotCenter 将格子索引转换为格子中心的屏幕坐标
func (l GridLayout) SlotCenter(index int) Point {
	x, y, size := l.SlotRect(index)
	return Point{X: x + size/2, Y: y + size/2}
}

// SlotPositions 按声明顺序返回所有格子中心坐标
func (l GridLayout) SlotPositions() []Point {
	positions := make([]Point, l.SlotCount())
	for i := range positions {
		positions[i] = l.SlotCenter(i)
	}
	return positions
}

// SlotAt 将屏幕坐标转换为格子索引
//
// 返回：
//   - index: 格子索引
//   - isValid: 坐标是否落在某个格子内（落在格子间距上视为无效）
func (l GridLayout) SlotAt(p Point) (index int, isValid bool) {
	if l.SlotCount() == 0 || l.pitch() <= 0 {
		return 0, false
	}

	dx := p.X - l.OriginX
	dy := p.Y - l.OriginY
	if dx < 0 || dy < 0 {
		return 0, false
	}

	col := int(dx / l.pitch())
	row := int(dy / l.pitch())
	if col >= l.Columns || row >= l.Rows {
		return 0, false
	}

	// 间距区域不属于任何格子
	if dx-float64(col)*l.pitch() >= l.CellSize || dy-float64(row)*l.pitch() >= l.CellSize {
		return 0, false
	}

	return row*l.Columns + col, true
}

// Bounds 返回整个网格占据的宽高
func (l GridLayout) Bounds() (width, height float64) {
	if l.SlotCount() == 0 {
		return 0, 0
	}
	width = float64(l.Columns)*l.pitch() - l.Spacing
	height = float64(l.Rows)*l.pitch() - l.Spacing
	return width, height
}
