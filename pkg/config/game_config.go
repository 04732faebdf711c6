package config

import (
	"fmt"
	"os"

	"github.com/decker502/mergegrid/pkg/utils"
	"gopkg.in/yaml.v3"
)

// 存档后端
const (
	SaveBackendGdata = "gdata"
	SaveBackendFile  = "file"
)

// GameConfig 游戏全局配置（data/game.yaml）
type GameConfig struct {
	Board           BoardConfig   `yaml:"board"`
	Gesture         GestureConfig `yaml:"gesture"`
	StartingSpawner string        `yaml:"startingSpawner"` // 新游戏时放置在最后一格的生成器
	Save            SaveConfig    `yaml:"save"`
	Screen          ScreenConfig  `yaml:"screen"`

	// CatalogPath 外部目录文件路径，为空时使用内嵌目录
	CatalogPath string `yaml:"catalogPath"`
	// WatchCatalog 开发模式：目录文件变化时热重载
	WatchCatalog bool `yaml:"watchCatalog"`
}

// BoardConfig 棋盘布局
// 格子位置按行优先顺序由布局推导
type BoardConfig struct {
	Columns  int     `yaml:"columns"`
	Rows     int     `yaml:"rows"`
	OriginX  float64 `yaml:"originX"`
	OriginY  float64 `yaml:"originY"`
	CellSize float64 `yaml:"cellSize"`
	Spacing  float64 `yaml:"spacing"`
}

// Layout 转换为网格布局
func (b BoardConfig) Layout() utils.GridLayout {
	return utils.GridLayout{
		Columns:  b.Columns,
		Rows:     b.Rows,
		OriginX:  b.OriginX,
		OriginY:  b.OriginY,
		CellSize: b.CellSize,
		Spacing:  b.Spacing,
	}
}

// GestureConfig 手势参数
type GestureConfig struct {
	HoldToLockSeconds   float64 `yaml:"holdToLockSeconds"`   // 长按切换锁定所需时间
	DragThresholdPixels float64 `yaml:"dragThresholdPixels"` // 按下后移动超过该距离才开始拖拽
}

// SaveConfig 存档配置
type SaveConfig struct {
	Backend  string `yaml:"backend"`  // gdata | file
	AppName  string `yaml:"appName"`  // gdata 应用名
	FilePath string `yaml:"filePath"` // file 后端的存档路径
}

// ScreenConfig 窗口尺寸
type ScreenConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// DefaultGameConfig 返回默认配置
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Board: BoardConfig{
			Columns:  5,
			Rows:     6,
			OriginX:  40,
			OriginY:  80,
			CellSize: 96,
			Spacing:  8,
		},
		Gesture: GestureConfig{
			HoldToLockSeconds:   2.0,
			DragThresholdPixels: 6,
		},
		StartingSpawner: "spawner_kibble_bag",
		Save: SaveConfig{
			Backend:  SaveBackendGdata,
			AppName:  "mergegrid",
			FilePath: "mergegrid.save",
		},
		Screen: ScreenConfig{
			Width:  600,
			Height: 800,
			Title:  "Merge Grid",
		},
	}
}

// LoadGameConfig 从 YAML 文件加载游戏配置
// 参数：
//
//	filePath - 配置文件路径
//
// 返回：
//
//	*GameConfig - 解析后的配置（缺失字段使用默认值）
//	error - 读取、解析或校验失败时返回错误
func LoadGameConfig(filePath string) (*GameConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config file %s: %w", filePath, err)
	}

	cfg, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return cfg, nil
}

// ParseGameConfig 解析游戏配置 YAML
func ParseGameConfig(data []byte) (*GameConfig, error) {
	cfg := DefaultGameConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config YAML: %w", err)
	}

	applyGameDefaults(cfg)

	if err := validateGameConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return cfg, nil
}

// applyGameDefaults 为显式写成零值的可选字段补默认值
func applyGameDefaults(cfg *GameConfig) {
	defaults := DefaultGameConfig()

	if cfg.Gesture.HoldToLockSeconds <= 0 {
		cfg.Gesture.HoldToLockSeconds = defaults.Gesture.HoldToLockSeconds
	}
	if cfg.Gesture.DragThresholdPixels < 0 {
		cfg.Gesture.DragThresholdPixels = 0
	}
	if cfg.Save.Backend == "" {
		cfg.Save.Backend = defaults.Save.Backend
	}
	if cfg.Save.AppName == "" {
		cfg.Save.AppName = defaults.Save.AppName
	}
	if cfg.Save.FilePath == "" {
		cfg.Save.FilePath = defaults.Save.FilePath
	}
	if cfg.Screen.Width <= 0 {
		cfg.Screen.Width = defaults.Screen.Width
	}
	if cfg.Screen.Height <= 0 {
		cfg.Screen.Height = defaults.Screen.Height
	}
}

// validateGameConfig 验证配置合法性
func validateGameConfig(cfg *GameConfig) error {
	if cfg.Board.Columns < 1 || cfg.Board.Rows < 1 {
		return fmt.Errorf("board must have at least one column and one row, got %dx%d", cfg.Board.Columns, cfg.Board.Rows)
	}
	if cfg.Board.CellSize <= 0 {
		return fmt.Errorf("board cellSize must be positive, got %v", cfg.Board.CellSize)
	}
	if cfg.Board.Spacing < 0 {
		return fmt.Errorf("board spacing cannot be negative, got %v", cfg.Board.Spacing)
	}

	switch cfg.Save.Backend {
	case SaveBackendGdata, SaveBackendFile:
	default:
		return fmt.Errorf("save backend must be one of: gdata, file, got %q", cfg.Save.Backend)
	}

	return nil
}
