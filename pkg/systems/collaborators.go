package systems

import (
	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/config"
	"github.com/decker502/mergegrid/pkg/utils"
)

// ItemCatalog 将类型ID解析为静态定义
// *config.Catalog 实现了该接口
type ItemCatalog interface {
	Resolve(typeID string) (*config.ItemDefinition, error)
}

// UISink 外部界面通知（只发送，不关心返回）
type UISink interface {
	// OnSelectionChanged 选中实体变化，nil 表示取消选中
	OnSelectionChanged(e *components.Entity)
	// OnSlotHighlight 格子高亮开关
	OnSlotHighlight(slot components.SlotIndex, on bool)
	// OnLockIconChanged 格子上的锁定图标显示状态
	OnLockIconChanged(slot components.SlotIndex, visible bool)
}

// NopUISink 丢弃所有通知
type NopUISink struct{}

func (NopUISink) OnSelectionChanged(*components.Entity)        {}
func (NopUISink) OnSlotHighlight(components.SlotIndex, bool)   {}
func (NopUISink) OnLockIconChanged(components.SlotIndex, bool) {}

// SpatialQuery 由表现层提供的空间查询
type SpatialQuery interface {
	// SlotCount 声明的格子数量
	SlotCount() int
	// SlotPosition 格子中心的屏幕坐标
	SlotPosition(slot components.SlotIndex) utils.Point
	// SlotAt 屏幕坐标命中的格子
	SlotAt(p utils.Point) (components.SlotIndex, bool)
}

// LayoutSpatial 基于规则网格布局的空间查询
type LayoutSpatial struct {
	Layout utils.GridLayout
}

// NewLayoutSpatial 创建基于布局的空间查询
func NewLayoutSpatial(layout utils.GridLayout) *LayoutSpatial {
	return &LayoutSpatial{Layout: layout}
}

func (l *LayoutSpatial) SlotCount() int {
	return l.Layout.SlotCount()
}

func (l *LayoutSpatial) SlotPosition(slot components.SlotIndex) utils.Point {
	return l.Layout.SlotCenter(int(slot))
}

func (l *LayoutSpatial) SlotAt(p utils.Point) (components.SlotIndex, bool) {
	index, ok := l.Layout.SlotAt(p)
	if !ok {
		return components.NoSlot, false
	}
	return components.SlotIndex(index), true
}

// PointSpatial 用显式坐标列表描述格子（测试和非规则布局）
// 不支持命中测试以外的布局计算，命中半径为 Radius
type PointSpatial struct {
	Points []utils.Point
	Radius float64
}

func (p *PointSpatial) SlotCount() int {
	return len(p.Points)
}

func (p *PointSpatial) SlotPosition(slot components.SlotIndex) utils.Point {
	if !slot.Valid(len(p.Points)) {
		return utils.Point{}
	}
	return p.Points[slot]
}

func (p *PointSpatial) SlotAt(pt utils.Point) (components.SlotIndex, bool) {
	for i, c := range p.Points {
		if utils.Distance(c, pt) <= p.Radius {
			return components.SlotIndex(i), true
		}
	}
	return components.NoSlot, false
}
