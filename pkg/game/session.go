package game

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/config"
	"github.com/decker502/mergegrid/pkg/systems"
	"github.com/decker502/mergegrid/pkg/utils"
)

// Session 一局游戏会话
//
// 在会话开始时创建一次，持有棋盘及所有系统，负责：
//   - 新游戏 / 继续游戏 / 保存
//   - 把抽象指针事件路由到手势系统
//   - 每帧推进长按计时与生成器冷却
//   - 面板开关状态
//
// 所有方法都在同一个逻辑线程（游戏循环）上调用。
type Session struct {
	cfg     *config.GameConfig
	catalog *config.Catalog

	board   *systems.GridBoard
	factory *systems.EntityFactory
	gesture *systems.GestureSystem
	merge   *systems.MergeSystem
	spawn   *systems.SpawnSystem
	saves   *SaveManager

	panelOpen bool
	watcher   *config.CatalogWatcher

	// 当前按下的指针状态
	pressed     *components.Entity
	pressPos    utils.Point
	dragBlocked bool
}

// SessionOptions 会话可选依赖
type SessionOptions struct {
	UI     systems.UISink       // 界面通知，nil 时丢弃
	Random systems.RandomSource // 生成器随机源，nil 时按时间播种
}

// NewSession 创建会话
//
// 参数：
//   - cfg: 游戏配置（棋盘布局、手势参数、起始生成器）
//   - catalog: 物品目录
//   - store: 存档后端
//   - opts: 可选依赖
func NewSession(cfg *config.GameConfig, catalog *config.Catalog, store SaveStore, opts SessionOptions) *Session {
	board := systems.NewGridBoard(systems.NewLayoutSpatial(cfg.Board.Layout()), opts.UI)
	factory := systems.NewEntityFactory(catalog)
	merge := systems.NewMergeSystem(board, catalog, factory)

	s := &Session{
		cfg:     cfg,
		catalog: catalog,
		board:   board,
		factory: factory,
		merge:   merge,
		gesture: systems.NewGestureSystem(board, merge, cfg.Gesture.HoldToLockSeconds),
		spawn:   systems.NewSpawnSystem(board, catalog, factory, opts.Random),
	}
	s.saves = NewSaveManager(store, NewPersistenceCodec(board, factory))
	return s
}

// Board 棋盘
func (s *Session) Board() *systems.GridBoard { return s.board }

// Gesture 手势系统
func (s *Session) Gesture() *systems.GestureSystem { return s.gesture }

// Merge 合成系统
func (s *Session) Merge() *systems.MergeSystem { return s.merge }

// Spawn 生成系统
func (s *Session) Spawn() *systems.SpawnSystem { return s.spawn }

// Catalog 物品目录
func (s *Session) Catalog() *config.Catalog { return s.catalog }

// Saves 存档管理器
func (s *Session) Saves() *SaveManager { return s.saves }

// Layout 棋盘布局
func (s *Session) Layout() utils.GridLayout { return s.cfg.Board.Layout() }

// SetUISink 替换界面通知接收者
func (s *Session) SetUISink(ui systems.UISink) {
	s.board.SetUISink(ui)
}

// HasSave 是否有可继续的存档
func (s *Session) HasSave() bool {
	return s.saves.HasSave()
}

// Start 进入游戏
// newGame 为 true 或没有存档时开始新游戏，否则继续
func (s *Session) Start(newGame bool) {
	if newGame || !s.HasSave() {
		s.StartNewGame()
		return
	}
	s.Continue()
}

// StartNewGame 删除已有存档并开始新游戏
func (s *Session) StartNewGame() {
	if err := s.saves.DeleteSave(); err != nil {
		log.Printf("[Session] Warning: %v", err)
	}
	s.SetupNewGame()
}

// Continue 读取存档；没有存档或存档损坏时开始新游戏
//
// 返回：
//   - bool: 是否成功读档
func (s *Session) Continue() bool {
	s.resetInput()
	s.gesture.Reset()

	data, report, err := s.saves.LoadGame()
	if err != nil {
		if errors.Is(err, ErrNoSave) {
			log.Printf("[Session] No save found, starting a new game")
		} else {
			log.Printf("[Session] Save unusable (%v), starting a new game", err)
		}
		s.SetupNewGame()
		return false
	}

	s.panelOpen = data.WasGridPanelOpen
	log.Printf("[Session] Continued: %d entities restored, %d skipped, panelOpen=%v",
		report.Restored, len(report.Skipped), s.panelOpen)
	return true
}

// SetupNewGame 重置棋盘、关闭面板并放置起始生成器
func (s *Session) SetupNewGame() {
	s.resetInput()
	s.gesture.Reset()
	s.board.ResetAll()
	s.panelOpen = false
	s.PlaceStartingSpawner()
	log.Printf("[Session] New game")
}

// PlaceStartingSpawner 在最后一个格子放置起始生成器
//
// 返回：
//   - bool: 是否放置成功（未配置、格子被占用、类型无效时为 false）
func (s *Session) PlaceStartingSpawner() bool {
	typeID := s.cfg.StartingSpawner
	if typeID == "" {
		return false
	}
	if s.board.SlotCount() == 0 {
		log.Printf("[Session] Warning: cannot place starting spawner: %v", systems.ErrNoBoard)
		return false
	}

	slot := components.SlotIndex(s.board.SlotCount() - 1)
	if s.board.IsOccupied(slot) {
		log.Printf("[Session] Last slot %d is occupied, starting spawner not placed", slot)
		return false
	}

	spawner, err := s.factory.CreateSpawner(typeID)
	if err != nil {
		log.Printf("[Session] Warning: starting spawner %q: %v", typeID, err)
		return false
	}
	if err := s.board.Place(spawner, slot); err != nil {
		log.Printf("[Session] Warning: starting spawner: %v", err)
		return false
	}
	return true
}

// Save 同步保存当前状态
// 拖拽中的实体先回弹再保存
func (s *Session) Save() error {
	s.gesture.CancelDrag()
	s.resetInput()
	return s.saves.SaveGame(s.panelOpen)
}

// PanelOpen 面板是否打开
func (s *Session) PanelOpen() bool {
	return s.panelOpen
}

// ShowPanel 打开面板
func (s *Session) ShowPanel() {
	s.panelOpen = true
}

// HidePanel 关闭面板，进行中的拖拽回弹
func (s *Session) HidePanel() {
	s.gesture.CancelDrag()
	s.resetInput()
	s.board.ClearSelection()
	s.panelOpen = false
}

// TogglePanel 切换面板
func (s *Session) TogglePanel() {
	if s.panelOpen {
		s.HidePanel()
	} else {
		s.ShowPanel()
	}
}

func (s *Session) resetInput() {
	if s.pressed != nil && !s.pressed.Destroyed() {
		s.gesture.PressUp(s.pressed)
	}
	s.pressed = nil
	s.dragBlocked = false
}

// HandlePointer 处理一个指针事件
//
// 按下命中实体后开始跟踪；移动超过拖拽阈值时尝试开始拖拽
// （锁定实体拖拽失败后本次按下不再尝试）；
// 释放时结束拖拽或取消长按，并在以下情况产生一次点击：
// 刚结束拖拽，或者在实体自己的格子上释放。
func (s *Session) HandlePointer(ev utils.PointerEvent) {
	if !s.panelOpen {
		return
	}

	switch ev.Type {
	case utils.PointerDown:
		s.pointerDown(ev.Pos)
	case utils.PointerMove:
		s.pointerMove(ev.Pos)
	case utils.PointerUp:
		s.pointerUp(ev.Pos)
	}
}

func (s *Session) pointerDown(p utils.Point) {
	if s.pressed != nil {
		return
	}
	slot, ok := s.board.SlotAt(p)
	if !ok {
		s.board.ClearSelection()
		return
	}
	e := s.board.EntityAt(slot)
	if e == nil {
		s.board.ClearSelection()
		return
	}
	s.pressed = e
	s.pressPos = p
	s.dragBlocked = false
	s.gesture.PressDown(e)
}

func (s *Session) pointerMove(p utils.Point) {
	e := s.pressed
	if e == nil || e.Destroyed() {
		return
	}
	if e.Gesture.IsDragging() {
		s.gesture.DragMove(e, p)
		return
	}
	if s.dragBlocked || utils.Distance(s.pressPos, p) < s.cfg.Gesture.DragThresholdPixels {
		return
	}
	if s.gesture.BeginDrag(e, p) {
		log.Printf("[Session] Dragging %v", e)
		return
	}
	s.dragBlocked = true
}

func (s *Session) pointerUp(p utils.Point) {
	e := s.pressed
	s.pressed = nil
	s.dragBlocked = false
	if e == nil {
		return
	}

	wasDragging := e.Gesture.IsDragging()
	if wasDragging {
		outcome := s.gesture.EndDrag(e, p)
		log.Printf("[Session] Drop %v: %v", e, outcome)
	} else {
		s.gesture.PressUp(e)
	}

	if e.Destroyed() {
		return
	}
	releasedOnSelf := false
	if slot, ok := s.board.SlotAt(p); ok && slot == e.Slot {
		releasedOnSelf = true
	}
	if wasDragging || releasedOnSelf {
		s.Click(e)
	}
}

// Click 点击实体：选中；生成器同时尝试生成
// 拖拽结束或长按锁定后的收尾点击被吞掉
func (s *Session) Click(e *components.Entity) {
	if !s.gesture.Click(e) {
		return
	}
	if e.IsSpawner() {
		outcome, item := s.spawn.TrySpawn(e)
		if item != nil {
			log.Printf("[Session] %v spawned %v", e, item)
		} else {
			log.Printf("[Session] %v: %v", e, outcome)
		}
	}
}

// Update 每帧推进计时
// 参数：
//   - dt: 距上一帧的时间（秒）
func (s *Session) Update(dt float64) {
	s.gesture.Update(dt)
	s.spawn.Update(dt)

	// 拖拽中的生成器不在棋盘上，单独推进冷却
	if d := s.gesture.Dragging(); d != nil && d.IsSpawner() {
		systems.TickCooldown(d.Spawner, dt)
	}

	s.pollCatalog()
}

// EnableCatalogWatch 监听目录文件，变化时热重载
func (s *Session) EnableCatalogWatch(path string) error {
	if s.watcher != nil {
		return nil
	}
	w, err := config.NewCatalogWatcher(path)
	if err != nil {
		return fmt.Errorf("failed to watch catalog: %w", err)
	}
	s.watcher = w
	log.Printf("[Session] Watching catalog %s", w.Path())
	return nil
}

func (s *Session) pollCatalog() {
	if s.watcher == nil {
		return
	}
	changed, err := s.watcher.Poll()
	if err != nil {
		log.Printf("[Session] Warning: catalog watcher: %v", err)
	}
	if !changed {
		return
	}
	if err := s.ReloadCatalog(s.watcher.Path()); err != nil {
		log.Printf("[Session] Warning: catalog reload failed, keeping previous catalog: %v", err)
	}
}

// ReloadCatalog 从文件重新加载目录并原地替换
// 新目录校验失败时保留旧目录
func (s *Session) ReloadCatalog(path string) error {
	next, err := config.LoadCatalog(path)
	if err != nil {
		return err
	}
	s.catalog.Replace(next)
	log.Printf("[Session] Catalog reloaded: %d entries", s.catalog.Len())
	return nil
}

// Close 结束会话，释放监听器
func (s *Session) Close() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}
