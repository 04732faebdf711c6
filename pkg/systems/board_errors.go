package systems

import "errors"

// 棋盘结构错误，均可在本地恢复（记录日志后拒绝操作）
var (
	// ErrInvalidSlot 格子索引不属于棋盘
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrNoBoard 棋盘没有声明任何格子，所有放置操作被禁用
	ErrNoBoard = errors.New("board has no slots")
	// ErrDesync 格子占用表与实体反向引用不一致
	ErrDesync = errors.New("slot/entity map desync")
)
