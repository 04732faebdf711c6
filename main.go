package main

import (
	"flag"
	"log"

	"github.com/decker502/mergegrid/pkg/app"
	"github.com/decker502/mergegrid/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verbose     = flag.Bool("verbose", false, "详细日志")
	configPath  = flag.String("config", "data/game.yaml", "游戏配置文件路径（不存在时使用内置配置）")
	catalogPath = flag.String("catalog", "", "物品目录文件路径，覆盖配置中的 catalogPath")
	newGame     = flag.Bool("new", false, "忽略存档，开始新游戏")
	saveFile    = flag.String("save-file", "", "使用指定文件保存存档（默认使用 gdata）")
)

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:     *verbose,
		ConfigPath:  *configPath,
		CatalogPath: *catalogPath,
		NewGame:     *newGame,
		SaveFile:    *saveFile,
	})
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}

	screen := gameApp.ScreenConfig()
	ebiten.SetWindowSize(screen.Width, screen.Height)
	ebiten.SetWindowTitle(screen.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// 关闭窗口时先保存，由 App.Update 返回 ebiten.Termination
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
	if err := gameApp.Shutdown(); err != nil {
		log.Printf("[App] Warning: shutdown: %v", err)
	}
}
