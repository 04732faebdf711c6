package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownType 物品目录中找不到指定的类型ID
var ErrUnknownType = errors.New("unknown item type")

// ItemKind 目录条目的种类
type ItemKind string

const (
	// ItemKindItem 可合成物品
	ItemKindItem ItemKind = "item"
	// ItemKindSpawner 物品生成器
	ItemKindSpawner ItemKind = "spawner"
)

// 生成器默认参数
const (
	DefaultMaxSpawnsBeforeCooldown = 5
	DefaultCooldownSeconds         = 3.0
	DefaultVisualScale             = 1.0
)

// SpawnEntry 生成表中的一项（物品类型 + 权重）
type SpawnEntry struct {
	Item   string  `yaml:"item"`   // 物品类型ID，可为空（视为不可用条目）
	Weight float64 `yaml:"weight"` // 权重（>= 0）
}

// ItemDefinition 物品目录中的静态定义，运行时只读
type ItemDefinition struct {
	ID          string   `yaml:"id"`
	Kind        ItemKind `yaml:"-"`
	DisplayName string   `yaml:"displayName"`
	Description string   `yaml:"description"`
	Icon        string   `yaml:"icon"`
	VisualScale float64  `yaml:"visualScale"`

	// 物品专用
	Tier     int    `yaml:"tier"`     // 合成等级（从 1 开始）
	NextTier string `yaml:"nextTier"` // 合成后的下一级物品，为空表示已是最高级

	// 生成器专用
	Spawns                  []SpawnEntry `yaml:"spawns"`
	MaxSpawnsBeforeCooldown int          `yaml:"maxSpawnsBeforeCooldown"`
	CooldownSeconds         float64      `yaml:"cooldownSeconds"`
}

// IsSpawner 是否为生成器定义
func (d *ItemDefinition) IsSpawner() bool {
	return d.Kind == ItemKindSpawner
}

// HasNextTier 是否存在下一级
func (d *ItemDefinition) HasNextTier() bool {
	return d.NextTier != ""
}

// Name 返回显示名称，未配置时回退到ID
func (d *ItemDefinition) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ID
}

// catalogFile 目录文件的 YAML 结构
type catalogFile struct {
	Items    []ItemDefinition `yaml:"items"`
	Spawners []ItemDefinition `yaml:"spawners"`
}

// Catalog 物品目录
//
// 将类型ID解析为静态定义（等级、下一级、生成表、显示信息）。
// 存档只保存类型ID，读档时通过目录重新解析。
type Catalog struct {
	defs  map[string]*ItemDefinition
	order []string
}

// LoadCatalog 从 YAML 文件加载物品目录
func LoadCatalog(filePath string) (*Catalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", filePath, err)
	}
	return catalog, nil
}

// ParseCatalog 解析并校验目录 YAML
//
// 校验分两步：
//  1. JSON Schema 结构校验（字段类型、必填项、取值范围）
//  2. 语义校验（ID 唯一、下一级存在且为物品、合成链无环、生成表引用有效）
func ParseCatalog(data []byte) (*Catalog, error) {
	if err := ValidateCatalogSchema(data); err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	catalog := &Catalog{defs: make(map[string]*ItemDefinition)}
	for i := range file.Items {
		def := file.Items[i]
		def.Kind = ItemKindItem
		if err := catalog.add(&def); err != nil {
			return nil, err
		}
	}
	for i := range file.Spawners {
		def := file.Spawners[i]
		def.Kind = ItemKindSpawner
		applySpawnerDefaults(&def)
		if err := catalog.add(&def); err != nil {
			return nil, err
		}
	}

	if err := validateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return catalog, nil
}

// NewCatalog 用给定定义构建目录（主要用于测试和工具）
func NewCatalog(defs ...ItemDefinition) (*Catalog, error) {
	catalog := &Catalog{defs: make(map[string]*ItemDefinition)}
	for i := range defs {
		def := defs[i]
		if def.Kind == "" {
			def.Kind = ItemKindItem
		}
		if def.IsSpawner() {
			applySpawnerDefaults(&def)
		}
		if err := catalog.add(&def); err != nil {
			return nil, err
		}
	}
	if err := validateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return catalog, nil
}

func (c *Catalog) add(def *ItemDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("catalog entry with empty id")
	}
	if _, exists := c.defs[def.ID]; exists {
		return fmt.Errorf("duplicate catalog id %q", def.ID)
	}
	if def.VisualScale <= 0 {
		def.VisualScale = DefaultVisualScale
	}
	c.defs[def.ID] = def
	c.order = append(c.order, def.ID)
	return nil
}

func applySpawnerDefaults(def *ItemDefinition) {
	if def.MaxSpawnsBeforeCooldown <= 0 {
		def.MaxSpawnsBeforeCooldown = DefaultMaxSpawnsBeforeCooldown
	}
	if def.CooldownSeconds <= 0 {
		def.CooldownSeconds = DefaultCooldownSeconds
	}
}

// validateCatalog 验证目录的语义正确性
func validateCatalog(c *Catalog) error {
	for _, id := range c.order {
		def := c.defs[id]

		if def.IsSpawner() {
			if len(def.Spawns) == 0 {
				return fmt.Errorf("spawner %q has an empty spawn table", id)
			}
			total := 0.0
			for _, entry := range def.Spawns {
				if entry.Weight < 0 {
					return fmt.Errorf("spawner %q: negative weight %v for %q", id, entry.Weight, entry.Item)
				}
				total += entry.Weight
				if entry.Item == "" {
					log.Printf("[Catalog] Warning: spawner %q has a spawn entry without item", id)
					continue
				}
				target, ok := c.defs[entry.Item]
				if !ok {
					return fmt.Errorf("spawner %q references unknown item %q", id, entry.Item)
				}
				if target.IsSpawner() {
					return fmt.Errorf("spawner %q cannot spawn spawner %q", id, entry.Item)
				}
			}
			if total <= 0 {
				// 保留回退行为：运行时使用第一个可用条目
				log.Printf("[Catalog] Warning: spawner %q has zero total weight, first usable entry will be used", id)
			}
			continue
		}

		if def.Tier < 1 {
			return fmt.Errorf("item %q: tier must be >= 1, got %d", id, def.Tier)
		}
		if def.NextTier == "" {
			continue
		}
		next, ok := c.defs[def.NextTier]
		if !ok {
			return fmt.Errorf("item %q references unknown next tier %q", id, def.NextTier)
		}
		if next.IsSpawner() {
			return fmt.Errorf("item %q: next tier %q is a spawner", id, def.NextTier)
		}
		if next.Tier <= def.Tier {
			log.Printf("[Catalog] Warning: item %q (tier %d) merges into %q with tier %d", id, def.Tier, next.ID, next.Tier)
		}
	}

	return checkTierCycles(c)
}

// checkTierCycles 确保合成链没有环
func checkTierCycles(c *Catalog) error {
	for _, id := range c.order {
		seen := map[string]bool{}
		cur := c.defs[id]
		for cur != nil && cur.NextTier != "" {
			if seen[cur.ID] {
				return fmt.Errorf("merge chain starting at %q contains a cycle", id)
			}
			seen[cur.ID] = true
			cur = c.defs[cur.NextTier]
		}
	}
	return nil
}

// Resolve 根据类型ID查找定义
//
// 返回：
//   - *ItemDefinition: 找到的定义
//   - error: 未找到时返回包装了 ErrUnknownType 的错误
func (c *Catalog) Resolve(typeID string) (*ItemDefinition, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %q (no catalog)", ErrUnknownType, typeID)
	}
	def, ok := c.defs[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeID)
	}
	return def, nil
}

// Replace 用另一个目录的内容替换当前目录（热重载）
// 所有持有当前 *Catalog 的组件会立即看到新内容
func (c *Catalog) Replace(other *Catalog) {
	c.defs = other.defs
	c.order = other.order
}

// IDs 按声明顺序返回所有类型ID
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// Len 返回条目数量
func (c *Catalog) Len() int {
	return len(c.order)
}

// TierChain 返回从指定物品开始的完整合成链
func (c *Catalog) TierChain(typeID string) []string {
	var chain []string
	cur, ok := c.defs[typeID]
	for ok && cur != nil {
		chain = append(chain, cur.ID)
		if cur.NextTier == "" {
			break
		}
		cur, ok = c.defs[cur.NextTier]
	}
	return chain
}

// ItemsByTier 按等级返回所有物品ID（同等级按ID排序）
func (c *Catalog) ItemsByTier() map[int][]string {
	result := make(map[int][]string)
	for _, id := range c.order {
		def := c.defs[id]
		if def.IsSpawner() {
			continue
		}
		result[def.Tier] = append(result[def.Tier], id)
	}
	for tier := range result {
		sort.Strings(result[tier])
	}
	return result
}
