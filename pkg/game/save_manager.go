package game

import (
	"errors"
	"fmt"
	"log"
)

// SaveManager 存档管理器
//
// 职责：
//   - 序列化棋盘并写入存储后端
//   - 读取、校验并恢复存档
//   - 损坏存档直接丢弃，不做部分恢复
//
// 架构说明：
//   - 由 Session 创建并持有，不是全局单例
//   - 保存是同步的，返回时数据已经落盘
type SaveManager struct {
	store SaveStore
	codec *PersistenceCodec
}

// NewSaveManager 创建存档管理器
func NewSaveManager(store SaveStore, codec *PersistenceCodec) *SaveManager {
	return &SaveManager{
		store: store,
		codec: codec,
	}
}

// HasSave 是否存在存档
func (sm *SaveManager) HasSave() bool {
	return sm.store.Exists()
}

// SaveGame 保存棋盘状态
//
// 参数：
//   - panelOpen: 面板是否打开
//
// 返回：
//   - error: 序列化或写入失败
func (sm *SaveManager) SaveGame(panelOpen bool) error {
	data := sm.codec.Serialize(panelOpen)

	raw, err := EncodeSaveData(data)
	if err != nil {
		return err
	}
	if err := sm.store.Write(raw); err != nil {
		return err
	}

	log.Printf("[SaveManager] Saved %d grid entities (panelOpen=%v)", len(data.GridEntities), panelOpen)
	return nil
}

// LoadGame 读取并恢复存档
//
// 存档先完整解析再重置棋盘：损坏的存档不会触碰当前棋盘。
//
// 返回：
//   - *GameSaveData: 解析后的存档
//   - RestoreReport: 恢复统计
//   - error: 没有存档返回 ErrNoSave；损坏返回 ErrCorruptSave（损坏记录已被删除）
func (sm *SaveManager) LoadGame() (*GameSaveData, RestoreReport, error) {
	raw, err := sm.store.Read()
	if err != nil {
		if errors.Is(err, ErrNoSave) {
			return nil, RestoreReport{}, ErrNoSave
		}
		if !errors.Is(err, ErrCorruptSave) {
			err = fmt.Errorf("%w: %v", ErrCorruptSave, err)
		}
		sm.discard(err)
		return nil, RestoreReport{}, err
	}

	data, err := DecodeSaveData(raw)
	if err != nil {
		sm.discard(err)
		return nil, RestoreReport{}, err
	}

	report := sm.codec.Restore(data)
	return data, report, nil
}

// discard 删除损坏的存档
func (sm *SaveManager) discard(cause error) {
	log.Printf("[SaveManager] Warning: discarding unreadable save: %v", cause)
	if err := sm.store.Delete(); err != nil {
		log.Printf("[SaveManager] Warning: failed to delete corrupt save: %v", err)
	}
}

// DeleteSave 删除存档
func (sm *SaveManager) DeleteSave() error {
	if err := sm.store.Delete(); err != nil {
		return err
	}
	log.Printf("[SaveManager] Save deleted")
	return nil
}
