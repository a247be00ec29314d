package voxel

import (
	"fmt"
	"iter"

	"github.com/annel0/voxel-edit/internal/vec"
)

// CellRole роль клетки внутри региона
type CellRole uint8

const (
	ShellWall CellRole = iota
	ShellFloor
	ShellCeiling
	Interior
	ShapeSurface
	ShapeFill
)

var roleNames = [...]string{"shell_wall", "shell_floor", "shell_ceiling", "interior", "shape_surface", "shape_fill"}

func (r CellRole) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", r)
}

// IsShell true для стен, пола и потолка коробки
func (r CellRole) IsShell() bool {
	return r == ShellWall || r == ShellFloor || r == ShellCeiling
}

// Cell абсолютная позиция клетки, её роль и локальные координаты (dx, dy, dz)
type Cell struct {
	Pos   vec.Vec3
	Role  CellRole
	Local vec.Vec3
}

// ShapeKind вид фигуры
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCylinder
	ShapePyramid
)

var shapeNames = [...]string{"box", "sphere", "cylinder", "pyramid"}

func (k ShapeKind) String() string {
	if int(k) < len(shapeNames) {
		return shapeNames[k]
	}
	return fmt.Sprintf("shape(%d)", k)
}

// ParseShapeKind разбирает имя фигуры
func ParseShapeKind(name string) (ShapeKind, error) {
	for i, n := range shapeNames {
		if n == name {
			return ShapeKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

// MarshalText кодирует вид фигуры именем
func (k ShapeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText разбирает вид фигуры из имени
func (k *ShapeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseShapeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ShapeParams параметры фигуры. Используются поля, относящиеся к виду:
// box (W, H, D), sphere (Radius), cylinder (Radius, Height), pyramid (Base, Height).
type ShapeParams struct {
	W      int `json:"w,omitempty"`
	H      int `json:"h,omitempty"`
	D      int `json:"d,omitempty"`
	Radius int `json:"radius,omitempty"`
	Height int `json:"height,omitempty"`
	Base   int `json:"base,omitempty"`
}

// BoxGeometry ориентированная коробка перед игроком.
// Клетка (dx, dy, dz) лежит в Base + Facing·dz + Sideways·dx + (0, dy, 0).
type BoxGeometry struct {
	Base     vec.Vec3
	Facing   vec.Direction
	Sideways vec.Direction
	OW       int
	OH       int
	OD       int
	MinW     int
	MaxW     int
}

// NewBoxGeometry строит коробку внешних размеров (ow, oh, od).
// Ширина центрируется как min_w = -(ow/2), поэтому при чётной ширине лишний столбец уходит в -Sideways.
func NewBoxGeometry(frame Frame, ow, oh, od int) BoxGeometry {
	minW := -(ow / 2)
	return BoxGeometry{
		Base:     frame.Base(),
		Facing:   frame.Facing,
		Sideways: frame.Sideways(),
		OW:       ow,
		OH:       oh,
		OD:       od,
		MinW:     minW,
		MaxW:     minW + ow - 1,
	}
}

// RoomGeometry коробка для hollow/room: внутренние размеры плюс оболочка в один блок
func RoomGeometry(frame Frame, iw, ih, id int) BoxGeometry {
	return NewBoxGeometry(frame, iw+2, ih+2, id+2)
}

// At переводит локальные координаты коробки в мировые
func (g BoxGeometry) At(dx, dy, dz int) vec.Vec3 {
	return g.Base.
		Add(g.Facing.Vec().Scale(dz)).
		Add(g.Sideways.Vec().Scale(dx)).
		Above(dy)
}

// Role классифицирует клетку коробки
func (g BoxGeometry) Role(dx, dy, dz int) CellRole {
	shell := dz == 0 || dz == g.OD-1 || dx == g.MinW || dx == g.MaxW || dy == 0 || dy == g.OH-1
	switch {
	case !shell:
		return Interior
	case dy == 0:
		return ShellFloor
	case dy == g.OH-1:
		return ShellCeiling
	default:
		return ShellWall
	}
}

// CenterDepth и CenterWidth центр коробки по глубине и ширине
func (g BoxGeometry) CenterDepth() int { return (g.OD - 1) / 2 }

// CenterWidth смещение центра по ширине
func (g BoxGeometry) CenterWidth() int { return g.MinW + (g.OW-1)/2 }

// DropPoint точка для разбрасывания лута: центр коробки на уровень выше пола
func (g BoxGeometry) DropPoint() vec.Vec3 {
	return g.At(g.CenterWidth(), 1, g.CenterDepth())
}

// Cells перечисляет клетки в порядке dz, затем dx, затем dy.
// Последовательность ленивая и перезапускаемая.
func (g BoxGeometry) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for dz := 0; dz < g.OD; dz++ {
			for dx := g.MinW; dx <= g.MaxW; dx++ {
				for dy := 0; dy < g.OH; dy++ {
					c := Cell{Pos: g.At(dx, dy, dz), Role: g.Role(dx, dy, dz), Local: vec.Vec3{X: dx, Y: dy, Z: dz}}
					if !yield(c) {
						return
					}
				}
			}
		}
	}
}

// ShapeAnchor опорная точка фигуры при правке
func ShapeAnchor(frame Frame, kind ShapeKind, p ShapeParams) vec.Vec3 {
	switch kind {
	case ShapeSphere:
		return frame.Ahead(max(2, p.Radius+2)).Above(p.Radius)
	case ShapeCylinder:
		return frame.Ahead(max(2, p.Radius+2))
	case ShapePyramid:
		return frame.Ahead(max(2, p.Base/2+2))
	default:
		return frame.Base()
	}
}

// ShapeCells клетки фигуры для правки
func ShapeCells(frame Frame, kind ShapeKind, p ShapeParams, hollow bool) (iter.Seq[Cell], error) {
	anchor := ShapeAnchor(frame, kind, p)
	switch kind {
	case ShapeBox:
		return boxShapeCells(NewBoxGeometry(frame, p.W, p.H, p.D), hollow), nil
	case ShapeSphere:
		return sphereCells(anchor, p.Radius, hollow), nil
	case ShapeCylinder:
		return cylinderCells(anchor, p.Radius, p.Height, hollow), nil
	case ShapePyramid:
		return pyramidCells(anchor, p.Base, p.Height, hollow), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownShape, kind)
}

func boxShapeCells(g BoxGeometry, hollow bool) iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for c := range g.Cells() {
			role := ShapeFill
			if c.Role.IsShell() {
				role = ShapeSurface
			} else if hollow {
				continue
			}
			c.Role = role
			if !yield(c) {
				return
			}
		}
	}
}

func sphereCells(center vec.Vec3, r int, hollow bool) iter.Seq[Cell] {
	r2 := r * r
	inner2 := (r - 1) * (r - 1)
	return func(yield func(Cell) bool) {
		for x := -r; x <= r; x++ {
			for y := -r; y <= r; y++ {
				for z := -r; z <= r; z++ {
					d2 := x*x + y*y + z*z
					if d2 > r2 {
						continue
					}
					role := ShapeSurface
					if d2 <= inner2 {
						if hollow {
							continue
						}
						role = ShapeFill
					}
					local := vec.Vec3{X: x, Y: y, Z: z}
					if !yield(Cell{Pos: center.Add(local), Role: role, Local: local}) {
						return
					}
				}
			}
		}
	}
}

func cylinderCells(base vec.Vec3, r, h int, hollow bool) iter.Seq[Cell] {
	r2 := r * r
	inner2 := (r - 1) * (r - 1)
	return func(yield func(Cell) bool) {
		for y := 0; y < h; y++ {
			for x := -r; x <= r; x++ {
				for z := -r; z <= r; z++ {
					d2 := x*x + z*z
					if d2 > r2 {
						continue
					}
					role := ShapeFill
					if d2 > inner2 || y == 0 || y == h-1 {
						role = ShapeSurface
					} else if hollow {
						continue
					}
					local := vec.Vec3{X: x, Y: y, Z: z}
					if !yield(Cell{Pos: base.Add(local), Role: role, Local: local}) {
						return
					}
				}
			}
		}
	}
}

// pyramidLayerHalf полуширина слоя y пирамиды, линейно сужающейся к вершине
func pyramidLayerHalf(base, h, y int) int {
	half := base / 2
	return max(0, half-(y*half)/max(1, h-1))
}

func pyramidCells(anchor vec.Vec3, base, h int, hollow bool) iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for y := 0; y < h; y++ {
			lh := pyramidLayerHalf(base, h, y)
			for x := -lh; x <= lh; x++ {
				for z := -lh; z <= lh; z++ {
					role := ShapeFill
					if x == -lh || x == lh || z == -lh || z == lh || y == 0 || y == h-1 {
						role = ShapeSurface
					} else if hollow {
						continue
					}
					local := vec.Vec3{X: x, Y: y, Z: z}
					if !yield(Cell{Pos: anchor.Add(local), Role: role, Local: local}) {
						return
					}
				}
			}
		}
	}
}
