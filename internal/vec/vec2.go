package vec

// Vec2 представляет 2D координаты (X, Z на горизонтальной плоскости)
type Vec2 struct {
	X, Y int
}

// ChunkShift задаёт размер колонки чанка: 1<<4 = 16 блоков
const ChunkShift = 4

// ToChunkCoords преобразует глобальные координаты в координаты чанка
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> ChunkShift, Y: v.Y >> ChunkShift}
}

// LocalInChunk возвращает локальные координаты внутри чанка
func (v Vec2) LocalInChunk() Vec2 {
	return Vec2{X: v.X & 0xF, Y: v.Y & 0xF}
}
