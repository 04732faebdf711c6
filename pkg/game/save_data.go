package game

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// GameSaveVersion 当前存档版本
// 读档时版本不一致视为损坏存档
const GameSaveVersion = 1

var (
	// ErrNoSave 没有存档
	ErrNoSave = errors.New("no save")
	// ErrCorruptSave 存档不可读或格式错误
	ErrCorruptSave = errors.New("corrupt save")
)

// SavedGridEntity 棋盘上一个被占用格子的存档记录
// 空格子不产生记录（缺失即为空）
type SavedGridEntity struct {
	SlotIndex                int     `yaml:"slotIndex"`
	ItemTypeID               string  `yaml:"itemTypeId"` // 目录中的类型ID
	IsSpawnerType            bool    `yaml:"isSpawnerType"`
	Locked                   bool    `yaml:"locked"`
	SpawnerItemsSpawned      int     `yaml:"spawnerItemsSpawned"`      // 非生成器为 0
	SpawnerCooldownRemaining float64 `yaml:"spawnerCooldownRemaining"` // 非生成器为 0
}

// GameSaveData 完整存档
//
// 与棋盘无关的界面状态（如面板是否打开）作为顶层字段与 GridEntities 并列。
type GameSaveData struct {
	Version          int               `yaml:"version"`
	SavedAt          time.Time         `yaml:"savedAt"`
	GridEntities     []SavedGridEntity `yaml:"gridEntities"`
	WasGridPanelOpen bool              `yaml:"wasGridPanelOpen"`
}

// NewGameSaveData 创建当前版本的空存档
func NewGameSaveData() *GameSaveData {
	return &GameSaveData{
		Version:      GameSaveVersion,
		GridEntities: []SavedGridEntity{},
	}
}

// EncodeSaveData 序列化为 YAML
func EncodeSaveData(data *GameSaveData) ([]byte, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal save data: %w", err)
	}
	return out, nil
}

// DecodeSaveData 解析存档
//
// 返回：
//   - *GameSaveData: 解析结果
//   - error: 空数据、YAML 错误、版本不符时返回包装了 ErrCorruptSave 的错误
func DecodeSaveData(raw []byte) (*GameSaveData, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty record", ErrCorruptSave)
	}

	var data GameSaveData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	if data.Version != GameSaveVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (want %d)", ErrCorruptSave, data.Version, GameSaveVersion)
	}
	return &data, nil
}
