package components

// SlotIndex 格子标识
// 即棋盘声明顺序中的稳定索引 (0..N-1)，棋盘创建后不再变化
type SlotIndex int

// NoSlot 表示"不在任何格子中"
const NoSlot SlotIndex = -1

// Valid 索引是否落在 [0, count) 范围内
func (s SlotIndex) Valid(count int) bool {
	return s >= 0 && int(s) < count
}
