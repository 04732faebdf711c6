//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureStorageDir 确保应用私有目录下的 saves 目录存在且可写
// gdata 在 Android 上不会预先创建子目录，需要在打开存储前调用
func EnsureStorageDir() error {
	dir := StorageDir()
	if dir == "" {
		return fmt.Errorf("cannot determine Android package name")
	}
	saves := filepath.Join(dir, "saves")
	if err := os.MkdirAll(saves, 0755); err != nil {
		return fmt.Errorf("failed to create saves directory %s: %w", saves, err)
	}

	probe := filepath.Join(saves, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("saves directory %s is not writable: %w", saves, err)
	}
	return os.Remove(probe)
}

// StorageDir 应用私有目录 /data/data/{package}
func StorageDir() string {
	pkg, err := androidPackage()
	if err != nil {
		return ""
	}
	return filepath.Join("/data/data", pkg)
}

// ResolveStoragePath 相对路径放到 saves 目录下，工作目录在 Android 上不可写
func ResolveStoragePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	dir := StorageDir()
	if dir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, "saves", path)
}

// androidPackage 从 /proc/self/cmdline 读取包名
func androidPackage() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}
	name := strings.Map(func(r rune) rune {
		if r == 0 || r == '\n' {
			return -1
		}
		return r
	}, string(data))
	if name == "" {
		return "", fmt.Errorf("got empty output from /proc/self/cmdline")
	}
	return name, nil
}
