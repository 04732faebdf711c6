package components

// SpawnerState 生成器运行时计数器
//
// 这两个字段会被完整写入存档，读档时原样恢复，
// 因此冷却中途退出游戏后再进入，冷却会从剩余时间继续。
type SpawnerState struct {
	ItemsSpawned      int     // 本轮已生成的物品数量（>= 0）
	CooldownRemaining float64 // 剩余冷却时间（秒，>= 0）
}

// IsCoolingDown 是否处于冷却中
// 只有生成数量达到上限且剩余冷却时间大于 0 时才拒绝生成
func (s *SpawnerState) IsCoolingDown(maxSpawns int) bool {
	return s.ItemsSpawned >= maxSpawns && s.CooldownRemaining > 0
}
