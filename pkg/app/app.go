// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/decker502/mergegrid/pkg/config"
	"github.com/decker502/mergegrid/pkg/embedded"
	"github.com/decker502/mergegrid/pkg/game"
	"github.com/decker502/mergegrid/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// 内置数据文件路径
const (
	embeddedGameConfig = "data/game.yaml"
	embeddedCatalog    = "data/catalog.yaml"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 磁盘上的游戏配置，为空或不存在时使用内置配置
	ConfigPath string
	// CatalogPath 磁盘上的物品目录，覆盖游戏配置中的 catalogPath
	CatalogPath string
	// NewGame 忽略存档，直接开始新游戏
	NewGame bool
	// SaveFile 非空时改用文件存档
	SaveFile string
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	cfg     *config.GameConfig
	session *game.Session
	ui      *BoardUI
	pointer *utils.PointerTracker

	toggle        toggleButton
	pressOnToggle bool // 本次按下落在面板开关上
	focused       bool
	verbose       bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化内置数据。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	gameCfg, err := loadGameConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("游戏配置加载失败: %w", err)
	}
	if cfg.SaveFile != "" {
		gameCfg.Save.Backend = config.SaveBackendFile
		gameCfg.Save.FilePath = cfg.SaveFile
	}

	catalogPath := gameCfg.CatalogPath
	if cfg.CatalogPath != "" {
		catalogPath = cfg.CatalogPath
	}
	catalog, fromDisk, err := loadCatalog(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("物品目录加载失败: %w", err)
	}

	store := game.NewSaveStore(gameCfg.Save)
	session := game.NewSession(gameCfg, catalog, store, game.SessionOptions{})

	ui := NewBoardUI(session)
	session.SetUISink(ui)

	if gameCfg.WatchCatalog && fromDisk {
		if err := session.EnableCatalogWatch(catalogPath); err != nil {
			log.Printf("[App] Warning: %v", err)
		}
	}

	session.Start(cfg.NewGame)
	log.Printf("[App] Session started (newGame=%v, panelOpen=%v)", cfg.NewGame, session.PanelOpen())

	return &App{
		cfg:     gameCfg,
		session: session,
		ui:      ui,
		pointer: utils.NewPointerTracker(),
		toggle:  newToggleButton(gameCfg.Screen),
		focused: true,
		verbose: cfg.Verbose,
	}, nil
}

// source 返回日志中显示的来源
func source(diskPath, embeddedPath string, fromDisk bool) string {
	if fromDisk {
		return diskPath
	}
	return "embedded " + embeddedPath
}

func loadGameConfig(path string) (*config.GameConfig, error) {
	data, fromDisk, err := embedded.ReadFileOrDisk(path, embeddedGameConfig)
	if err != nil {
		return nil, err
	}
	from := source(path, embeddedGameConfig, fromDisk)
	gameCfg, err := config.ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", from, err)
	}
	log.Printf("[Config] Game config loaded from %s", from)
	return gameCfg, nil
}

// loadCatalog 加载物品目录，返回是否来自磁盘（只有磁盘文件可以热重载）
func loadCatalog(path string) (*config.Catalog, bool, error) {
	data, fromDisk, err := embedded.ReadFileOrDisk(path, embeddedCatalog)
	if err != nil {
		return nil, false, err
	}
	from := source(path, embeddedCatalog, fromDisk)
	catalog, err := config.ParseCatalog(data)
	if err != nil {
		return nil, fromDisk, fmt.Errorf("%s: %w", from, err)
	}
	log.Printf("[Config] Catalog loaded from %s: %d entries", from, catalog.Len())
	return catalog, fromDisk, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 关闭窗口前同步保存
	if ebiten.IsWindowBeingClosed() {
		a.save("window closing")
		return ebiten.Termination
	}

	// 失去焦点（切到后台）时保存
	focused := ebiten.IsFocused()
	if a.focused && !focused {
		a.save("focus lost")
	}
	a.focused = focused

	a.updateWindow()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		a.session.TogglePanel()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) && ebiten.IsKeyPressed(ebiten.KeyControl) {
		a.save("manual")
	}

	for _, ev := range a.pointer.Poll() {
		a.handlePointer(ev)
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.session.Update(deltaTime)
	return nil
}

// updateWindow F11 切换全屏
func (a *App) updateWindow() {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.cfg.Screen.Width, a.cfg.Screen.Height)
			a.pendingWindowSizeReset = false
		}
	}

	if utils.IsMobile() || !inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		return
	}
	if ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
	} else {
		ebiten.SetFullscreen(true)
	}
}

// handlePointer 面板开关按钮优先，其余事件交给会话
func (a *App) handlePointer(ev utils.PointerEvent) {
	switch ev.Type {
	case utils.PointerDown:
		if a.toggle.Contains(ev.Pos) {
			a.pressOnToggle = true
			return
		}
	case utils.PointerMove:
		if a.pressOnToggle {
			return
		}
	case utils.PointerUp:
		if a.pressOnToggle {
			a.pressOnToggle = false
			if a.toggle.Contains(ev.Pos) {
				a.session.TogglePanel()
			}
			return
		}
	}
	a.session.HandlePointer(ev)
}

func (a *App) save(reason string) {
	if err := a.session.Save(); err != nil {
		log.Printf("[App] Warning: save (%s) failed: %v", reason, err)
		return
	}
	log.Printf("[App] Saved (%s)", reason)
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	a.ui.Draw(screen)
	a.toggle.Draw(screen, a.session.PanelOpen())
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.Screen.Width, a.cfg.Screen.Height
}

// ScreenConfig 返回窗口配置
func (a *App) ScreenConfig() config.ScreenConfig {
	return a.cfg.Screen
}

// Session 返回当前会话
func (a *App) Session() *game.Session {
	return a.session
}

// Shutdown 保存并释放资源，在 ebiten.RunGame 返回后调用
func (a *App) Shutdown() error {
	a.save("shutdown")
	return a.session.Close()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
