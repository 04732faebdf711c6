package game

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/decker502/mergegrid/pkg/config"
	"github.com/decker502/mergegrid/pkg/utils"
	"github.com/klauspost/compress/zstd"
	"github.com/quasilyte/gdata/v2"
)

// SaveStore 持久化存档记录的后端
type SaveStore interface {
	// Exists 是否存在存档
	Exists() bool
	// Read 读取原始记录，不存在时返回 ErrNoSave
	Read() ([]byte, error)
	// Write 写入原始记录（同步完成后返回）
	Write(data []byte) error
	// Delete 删除存档，不存在时不报错
	Delete() error
}

// gdata 存储键
const (
	boardObject   = "board"
	boardProperty = "state"
)

// GdataStore 基于 gdata 的跨平台存储（桌面、移动端、浏览器）
//
// manager 为 nil 时进入降级模式：不持久化，也不报错。
type GdataStore struct {
	manager *gdata.Manager
}

// NewGdataStore 创建 gdata 存储
func NewGdataStore(manager *gdata.Manager) *GdataStore {
	return &GdataStore{manager: manager}
}

func (s *GdataStore) Exists() bool {
	if s.manager == nil {
		return false
	}
	return s.manager.ObjectPropExists(boardObject, boardProperty)
}

func (s *GdataStore) Read() ([]byte, error) {
	if !s.Exists() {
		return nil, ErrNoSave
	}
	data, err := s.manager.LoadObjectProp(boardObject, boardProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to load board state: %w", err)
	}
	return data, nil
}

func (s *GdataStore) Write(data []byte) error {
	if s.manager == nil {
		return nil
	}
	if err := s.manager.SaveObjectProp(boardObject, boardProperty, data); err != nil {
		return fmt.Errorf("failed to save board state: %w", err)
	}
	return nil
}

func (s *GdataStore) Delete() error {
	if !s.Exists() {
		return nil
	}
	if err := s.manager.DeleteObjectProp(boardObject, boardProperty); err != nil {
		return fmt.Errorf("failed to delete board state: %w", err)
	}
	return nil
}

// FileStore 单文件存储，内容为 zstd 压缩的 YAML
// 写入先落到同目录临时文件再重命名，避免中途退出留下半个存档
type FileStore struct {
	path string
}

// NewFileStore 创建文件存储
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path 存档文件路径
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *FileStore) Read() ([]byte, error) {
	compressed, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSave
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	return data, nil
}

func (s *FileStore) Write(data []byte) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create save directory: %w", err)
		}
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	compressed := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close zstd encoder: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp save file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close save file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace save file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// NewSaveStore 根据配置创建存储后端
// gdata 打开失败时回退到文件存储
func NewSaveStore(cfg config.SaveConfig) SaveStore {
	path := utils.ResolveStoragePath(cfg.FilePath)

	switch cfg.Backend {
	case config.SaveBackendFile:
		log.Printf("[SaveManager] Using file store: %s", path)
		return NewFileStore(path)
	default:
		if err := utils.EnsureStorageDir(); err != nil {
			log.Printf("[SaveManager] Warning: storage directory: %v", err)
		}
		manager, err := gdata.Open(gdata.Config{AppName: cfg.AppName})
		if err != nil {
			log.Printf("[SaveManager] Warning: gdata unavailable (%v), falling back to file store %s", err, path)
			return NewFileStore(path)
		}
		return NewGdataStore(manager)
	}
}
