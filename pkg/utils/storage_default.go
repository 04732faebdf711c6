//go:build !android

package utils

import "path/filepath"

// EnsureStorageDir 非 Android 平台由 gdata 自行创建目录
func EnsureStorageDir() error {
	return nil
}

// StorageDir 非 Android 平台没有固定的存储目录
func StorageDir() string {
	return ""
}

// ResolveStoragePath 相对路径保持不变（相对于工作目录）
func ResolveStoragePath(path string) string {
	return filepath.Clean(path)
}
