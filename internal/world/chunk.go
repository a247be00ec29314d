package world

import (
	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/world/block"
)

const (
	// ChunkSize ширина колонки чанка по X и Z
	ChunkSize = 16
	// SectionHeight высота секции чанка
	SectionHeight = 16

	sectionVolume = ChunkSize * SectionHeight * ChunkSize
)

// section кубик 16×16×16 с палитрой состояний. Индекс 0 палитры всегда воздух.
type section struct {
	palette []block.State
	index   map[block.State]uint16
	blocks  [sectionVolume]uint16
	nonAir  int
}

func newSection() *section {
	return &section{
		palette: []block.State{block.Air},
		index:   map[block.State]uint16{block.Air: 0},
	}
}

func sectionOffset(x, y, z int) int {
	return (y*ChunkSize+z)*ChunkSize + x
}

func (s *section) get(x, y, z int) block.State {
	return s.palette[s.blocks[sectionOffset(x, y, z)]]
}

func (s *section) set(x, y, z int, st block.State) {
	idx, ok := s.index[st]
	if !ok {
		idx = uint16(len(s.palette))
		s.palette = append(s.palette, st)
		s.index[st] = idx
	}

	off := sectionOffset(x, y, z)
	wasAir := s.blocks[off] == 0
	s.blocks[off] = idx

	switch {
	case wasAir && idx != 0:
		s.nonAir++
	case !wasAir && idx == 0:
		s.nonAir--
	}
}

// Chunk вертикальная колонка 16×16 блоков, разбитая на секции по высоте
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	sections map[int]*section

	ChangeCounter int // Счетчик изменений
}

// NewChunk создаёт пустой (воздушный) чанк с указанными координатами
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords:   coords,
		sections: make(map[int]*section),
	}
}

// GetState возвращает состояние блока. x и z локальные (0..15), y мировая.
func (c *Chunk) GetState(x, y, z int) block.State {
	s, ok := c.sections[y>>4]
	if !ok {
		return block.Air
	}
	return s.get(x, y&(SectionHeight-1), z)
}

// SetState записывает состояние блока. x и z локальные (0..15), y мировая.
func (c *Chunk) SetState(x, y, z int, st block.State) {
	key := y >> 4
	s, ok := c.sections[key]
	if !ok {
		if st.IsAir() {
			return
		}
		s = newSection()
		c.sections[key] = s
	}
	s.set(x, y&(SectionHeight-1), z, st)
	if s.nonAir == 0 {
		delete(c.sections, key)
	}
	c.ChangeCounter++
}

// NonAirCount количество не воздушных блоков в чанке
func (c *Chunk) NonAirCount() int {
	total := 0
	for _, s := range c.sections {
		total += s.nonAir
	}
	return total
}

// chunkCoords координаты чанка и локальные x, z для мировой позиции
func chunkCoords(pos vec.Vec3) (vec.Vec2, int, int) {
	col := pos.ColumnXZ()
	local := col.LocalInChunk()
	return col.ToChunkCoords(), local.X, local.Y
}
