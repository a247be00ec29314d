package voxel

import (
	"fmt"

	"github.com/annel0/voxel-edit/internal/world/block"
)

// ReplaceMode фильтр клеток для replace
type ReplaceMode uint8

const (
	ReplaceAll ReplaceMode = iota
	ReplaceShellOnly
	ReplaceInsideOnly
)

func (m ReplaceMode) String() string {
	switch m {
	case ReplaceShellOnly:
		return "shell"
	case ReplaceInsideOnly:
		return "inside"
	default:
		return "all"
	}
}

// ParseReplaceMode разбирает all/shell/inside
func ParseReplaceMode(name string) (ReplaceMode, error) {
	switch name {
	case "", "all":
		return ReplaceAll, nil
	case "shell", "shell_only":
		return ReplaceShellOnly, nil
	case "inside", "inside_only":
		return ReplaceInsideOnly, nil
	}
	return ReplaceAll, fmt.Errorf("неизвестный режим замены %q", name)
}

// MarshalText кодирует режим именем
func (m ReplaceMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText разбирает режим из имени
func (m *ReplaceMode) UnmarshalText(text []byte) error {
	parsed, err := ParseReplaceMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func roomMeta(walls, floor, ceiling block.BlockID) string {
	return fmt.Sprintf("room:walls=%s,floor=%s,ceiling=%s",
		block.NameOf(walls), block.NameOf(floor), block.NameOf(ceiling))
}

func replaceMeta(from, to block.BlockID, mode ReplaceMode, chance int) string {
	return fmt.Sprintf("replace:from=%s,to=%s,mode=%s,chance=%d",
		block.NameOf(from), block.NameOf(to), mode, chance)
}

func shapeMeta(kind ShapeKind, p ShapeParams, material block.BlockID, hollow bool) string {
	name := block.NameOf(material)
	switch kind {
	case ShapeSphere:
		return fmt.Sprintf("shape:sphere r=%d block=%s hollow=%t", p.Radius, name, hollow)
	case ShapeCylinder:
		return fmt.Sprintf("shape:cylinder r=%d h=%d block=%s hollow=%t", p.Radius, p.Height, name, hollow)
	case ShapePyramid:
		return fmt.Sprintf("shape:pyramid base=%d h=%d block=%s hollow=%t", p.Base, p.Height, name, hollow)
	default:
		return fmt.Sprintf("shape:box w=%d h=%d d=%d block=%s hollow=%t", p.W, p.H, p.D, name, hollow)
	}
}

// shapeInnerDims размеры фигуры для записи в историю
func shapeInnerDims(kind ShapeKind, p ShapeParams) (int, int, int) {
	switch kind {
	case ShapeSphere:
		return p.Radius, p.Radius, p.Radius
	case ShapeCylinder:
		return p.Radius, p.Height, p.Radius
	case ShapePyramid:
		return p.Base, p.Height, p.Base
	default:
		return p.W, p.H, p.D
	}
}
