package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// catalogDebounce 同一文件连续事件的合并间隔
const catalogDebounce = 100 * time.Millisecond

// CatalogWatcher 监听目录文件变化（开发模式热重载）
//
// 监听文件所在目录而非文件本身，编辑器保存时常用的
// "写临时文件再重命名" 方式也能被捕获。
// Events 在监听结束后关闭。
type CatalogWatcher struct {
	watcher *fsnotify.Watcher
	path    string

	Events chan string
	Errors chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewCatalogWatcher 创建目录文件监听器
func NewCatalogWatcher(path string) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	cw := &CatalogWatcher{
		watcher: w,
		path:    abs,
		Events:  make(chan string, 4),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go cw.run()
	return cw, nil
}

// Path 返回被监听文件的绝对路径
func (cw *CatalogWatcher) Path() string {
	return cw.path
}

// Close 停止监听
func (cw *CatalogWatcher) Close() error {
	var err error
	cw.once.Do(func() {
		close(cw.closeCh)
		err = cw.watcher.Close()
		<-cw.done
	})
	return err
}

func (cw *CatalogWatcher) run() {
	defer func() {
		close(cw.Events)
		close(cw.Errors)
		close(cw.done)
	}()

	var last time.Time
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			now := time.Now()
			if now.Sub(last) < catalogDebounce {
				continue
			}
			last = now
			select {
			case cw.Events <- cw.path:
			default:
				// 已有未处理的通知，合并
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			select {
			case cw.Errors <- err:
			default:
			}
		case <-cw.closeCh:
			return
		}
	}
}

// Poll 非阻塞地检查是否有变化通知
// 返回 true 表示目录文件在上次检查后被修改过
func (cw *CatalogWatcher) Poll() (changed bool, err error) {
	for {
		select {
		case _, ok := <-cw.Events:
			if !ok {
				return changed, err
			}
			changed = true
		case e, ok := <-cw.Errors:
			if ok && err == nil {
				err = e
			}
			if !ok {
				return changed, err
			}
		default:
			return changed, err
		}
	}
}
