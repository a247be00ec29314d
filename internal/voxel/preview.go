package voxel

import (
	"iter"

	"github.com/annel0/voxel-edit/internal/vec"
)

// Предпросмотр рисует разреженный контур региона. Фигуры в предпросмотре
// привязаны к точке перед игроком (origin + facing), а не к опорной точке правки.

// PreviewBox рёбра коробки (клетки минимум на двух гранях) через одну.
// padded добавляет оболочку, как у hollow/room.
func PreviewBox(f Frame, w, h, d int, padded bool) iter.Seq[vec.Vec3] {
	g := NewBoxGeometry(f, w, h, d)
	if padded {
		g = RoomGeometry(f, w, h, d)
	}
	return func(yield func(vec.Vec3) bool) {
		for c := range g.Cells() {
			dx, dy, dz := c.Local.X, c.Local.Y, c.Local.Z
			planes := 0
			if dx == g.MinW || dx == g.MaxW {
				planes++
			}
			if dy == 0 || dy == g.OH-1 {
				planes++
			}
			if dz == 0 || dz == g.OD-1 {
				planes++
			}
			if planes < 2 || ((dx-g.MinW)+dy+dz)%2 != 0 {
				continue
			}
			if !yield(c.Pos) {
				return
			}
		}
	}
}

// PreviewShape поверхность фигуры с прореживанием по чётности x+y+z
func PreviewShape(f Frame, kind ShapeKind, p ShapeParams) (iter.Seq[vec.Vec3], error) {
	anchor := f.Ahead(1)
	var cells iter.Seq[Cell]
	switch kind {
	case ShapeBox:
		return PreviewBox(f, p.W, p.H, p.D, false), nil
	case ShapeSphere:
		cells = sphereCells(anchor.Above(p.Radius/2), p.Radius, true)
	case ShapeCylinder:
		cells = cylinderCells(anchor, p.Radius, p.Height, true)
	case ShapePyramid:
		cells = pyramidCells(anchor, p.Base, p.Height, true)
	default:
		return nil, ErrUnknownShape
	}
	return func(yield func(vec.Vec3) bool) {
		for c := range cells {
			if (c.Local.X+c.Local.Y+c.Local.Z)&1 != 0 {
				continue
			}
			if !yield(c.Pos) {
				return
			}
		}
	}, nil
}
