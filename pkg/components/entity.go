package components

import "fmt"

// EntityID 是棋盘实体的唯一标识符
// 0 保留为无效ID
type EntityID uint64

// EntityKind 实体变体标签
type EntityKind int

const (
	// KindItem 可合成物品
	KindItem EntityKind = iota
	// KindSpawner 物品生成器
	KindSpawner
)

// String 返回实体类型的字符串表示
func (k EntityKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindSpawner:
		return "spawner"
	default:
		return "unknown"
	}
}

// Entity 放置在棋盘上的实体（物品或生成器）
//
// 共享字段：
//   - Locked: 锁定标记，锁定后不可拖拽，但仍可被选中查看
//   - Slot: 所在格子的反向引用，由 GridBoard 维护，棋盘是格子与实体关联的唯一拥有者
//
// 变体字段：
//   - Spawner: 仅 KindSpawner 持有，记录生成计数和冷却时间
type Entity struct {
	ID     EntityID
	Kind   EntityKind
	TypeID string // 物品目录中的类型ID
	Locked bool

	// Slot 当前所在格子，NoSlot 表示不在棋盘上（拖拽中或已销毁）
	Slot SlotIndex

	Spawner *SpawnerState
	Gesture GestureState

	destroyed bool
}

// NewItem 创建物品实体（默认未锁定、不在棋盘上）
func NewItem(id EntityID, typeID string) *Entity {
	return &Entity{
		ID:      id,
		Kind:    KindItem,
		TypeID:  typeID,
		Slot:    NoSlot,
		Gesture: NewGestureState(),
	}
}

// NewSpawner 创建生成器实体，计数器从零开始
func NewSpawner(id EntityID, typeID string) *Entity {
	return &Entity{
		ID:      id,
		Kind:    KindSpawner,
		TypeID:  typeID,
		Slot:    NoSlot,
		Spawner: &SpawnerState{},
		Gesture: NewGestureState(),
	}
}

// IsItem 是否为物品
func (e *Entity) IsItem() bool {
	return e != nil && e.Kind == KindItem
}

// IsSpawner 是否为生成器
func (e *Entity) IsSpawner() bool {
	return e != nil && e.Kind == KindSpawner && e.Spawner != nil
}

// OnBoard 是否处于某个格子中
func (e *Entity) OnBoard() bool {
	return e != nil && !e.destroyed && e.Slot != NoSlot
}

// Destroy 标记实体已销毁
// 销毁后实体不再参与任何交互，拖拽结算等延续逻辑需要检查 Destroyed()
func (e *Entity) Destroy() {
	e.destroyed = true
	e.Slot = NoSlot
	e.Gesture = NewGestureState()
}

// Destroyed 实体是否已被销毁
func (e *Entity) Destroyed() bool {
	return e == nil || e.destroyed
}

func (e *Entity) String() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d(%s)", e.Kind, e.ID, e.TypeID)
}
