package systems

import (
	"fmt"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/config"
)

// EntityFactory 根据目录定义创建实体并分配唯一ID
type EntityFactory struct {
	catalog ItemCatalog
	nextID  components.EntityID
}

// NewEntityFactory 创建实体工厂
func NewEntityFactory(catalog ItemCatalog) *EntityFactory {
	return &EntityFactory{catalog: catalog}
}

func (f *EntityFactory) allocID() components.EntityID {
	f.nextID++
	return f.nextID
}

// Create 根据类型ID创建实体，变体由目录定义决定
// 新实体默认未锁定、不在棋盘上，生成器计数从零开始
//
// 返回:
//   - *components.Entity: 新实体
//   - *config.ItemDefinition: 类型定义
//   - error: 类型不存在时返回包装了 config.ErrUnknownType 的错误
func (f *EntityFactory) Create(typeID string) (*components.Entity, *config.ItemDefinition, error) {
	def, err := f.catalog.Resolve(typeID)
	if err != nil {
		return nil, nil, err
	}
	if def.IsSpawner() {
		return components.NewSpawner(f.allocID(), typeID), def, nil
	}
	return components.NewItem(f.allocID(), typeID), def, nil
}

// CreateItem 创建物品实体，类型是生成器时返回错误
func (f *EntityFactory) CreateItem(typeID string) (*components.Entity, error) {
	e, def, err := f.Create(typeID)
	if err != nil {
		return nil, err
	}
	if def.IsSpawner() {
		return nil, fmt.Errorf("type %q is a spawner, not an item", typeID)
	}
	return e, nil
}

// CreateSpawner 创建生成器实体，类型不是生成器时返回错误
func (f *EntityFactory) CreateSpawner(typeID string) (*components.Entity, error) {
	e, def, err := f.Create(typeID)
	if err != nil {
		return nil, err
	}
	if !def.IsSpawner() {
		return nil, fmt.Errorf("type %q is an item, not a spawner", typeID)
	}
	return e, nil
}
