package game

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/decker502/mergegrid/pkg/components"
	"github.com/decker502/mergegrid/pkg/systems"
)

// PersistenceCodec 棋盘状态与存档记录之间的转换
//
// 读档是严格的两阶段过程：先完整重置棋盘，再逐条应用记录。
// 单条记录出错只跳过该记录，不会中止整个读档。
type PersistenceCodec struct {
	board   *systems.GridBoard
	factory *systems.EntityFactory
}

// RestoreReport 读档结果
type RestoreReport struct {
	Restored int                  // 成功恢复的实体数量
	Skipped  []error              // 被跳过的记录及原因
	Removed  []*components.Entity // 重置时从棋盘移除的旧实体
}

// NewPersistenceCodec 创建存档编解码器
// 类型ID通过 factory 使用的目录解析
func NewPersistenceCodec(board *systems.GridBoard, factory *systems.EntityFactory) *PersistenceCodec {
	return &PersistenceCodec{
		board:   board,
		factory: factory,
	}
}

// Serialize 把棋盘上每个被占用的格子写成一条记录
//
// 参数：
//   - panelOpen: 面板是否打开，作为顶层字段保存
func (c *PersistenceCodec) Serialize(panelOpen bool) *GameSaveData {
	data := NewGameSaveData()
	data.SavedAt = time.Now()
	data.WasGridPanelOpen = panelOpen

	for _, e := range c.board.Entities() {
		record := SavedGridEntity{
			SlotIndex:     int(e.Slot),
			ItemTypeID:    e.TypeID,
			IsSpawnerType: e.IsSpawner(),
			Locked:        e.Locked,
		}
		if e.IsSpawner() {
			record.SpawnerItemsSpawned = e.Spawner.ItemsSpawned
			record.SpawnerCooldownRemaining = e.Spawner.CooldownRemaining
		}
		data.GridEntities = append(data.GridEntities, record)
	}
	return data
}

// Restore 用存档重建棋盘
//
// 步骤：
//  1. ResetAll 清空棋盘（必须先于任何记录应用）
//  2. 对每条记录：解析类型（未知则跳过）→ 解析格子（越界则跳过）→
//     校验变体一致 → 校验冷却为有限值 → 创建实体 → 恢复生成器计数 → 恢复锁定 → 放置
//
// 记录之间与顺序无关；同一格子出现多条记录时后者覆盖前者。
func (c *PersistenceCodec) Restore(data *GameSaveData) RestoreReport {
	report := RestoreReport{Removed: c.board.ResetAll()}

	for i, record := range data.GridEntities {
		e, def, err := c.factory.Create(record.ItemTypeID)
		if err != nil {
			report.skip(fmt.Errorf("record %d (slot %d): %w", i, record.SlotIndex, err))
			continue
		}

		slot := components.SlotIndex(record.SlotIndex)
		if !c.board.IsValidSlot(slot) {
			report.skip(fmt.Errorf("record %d (%s): %w: %d", i, record.ItemTypeID, systems.ErrInvalidSlot, record.SlotIndex))
			continue
		}

		if def.IsSpawner() != record.IsSpawnerType {
			report.skip(fmt.Errorf("record %d (slot %d): %q kind mismatch (saved spawner=%v)",
				i, record.SlotIndex, record.ItemTypeID, record.IsSpawnerType))
			continue
		}

		if cd := record.SpawnerCooldownRemaining; math.IsNaN(cd) || math.IsInf(cd, 0) {
			report.skip(fmt.Errorf("record %d (slot %d): %q has non-finite cooldown %v",
				i, record.SlotIndex, record.ItemTypeID, cd))
			continue
		}

		if e.IsSpawner() {
			e.Spawner.ItemsSpawned = max(record.SpawnerItemsSpawned, 0)
			e.Spawner.CooldownRemaining = max(record.SpawnerCooldownRemaining, 0)
		}
		e.Locked = record.Locked

		// 同一格子的重复记录：后者覆盖前者，不产生警告
		if prior := c.board.EntityAt(slot); prior != nil {
			c.board.Clear(slot)
			prior.Destroy()
			report.Restored--
		}

		if err := c.board.Place(e, slot); err != nil {
			report.skip(fmt.Errorf("record %d: %w", i, err))
			continue
		}
		report.Restored++
	}

	log.Printf("[SaveManager] Restored %d entities (%d records skipped)", report.Restored, len(report.Skipped))
	return report
}

func (r *RestoreReport) skip(err error) {
	log.Printf("[SaveManager] Warning: skipping save record: %v", err)
	r.Skipped = append(r.Skipped, err)
}
