package voxel

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/annel0/voxel-edit/internal/vec"
)

// Frame снимок положения игрока на момент получения команды.
// Все регионы строятся от него; движение игрока во время правки регион не сдвигает.
type Frame struct {
	Actor     uuid.UUID     `json:"actor"`
	Origin    vec.Vec3      `json:"origin"`
	Facing    vec.Direction `json:"facing"`
	Creative  bool          `json:"creative"`
	Dimension string        `json:"dimension"`
	Tool      string        `json:"tool,omitempty"`
}

// Validate проверяет, что кадр принадлежит игроку
func (f Frame) Validate() error {
	if f.Actor == uuid.Nil {
		return ErrInvalidActor
	}
	return nil
}

// Sideways ось ширины: направление взгляда, повёрнутое по часовой стрелке
func (f Frame) Sideways() vec.Direction {
	return f.Facing.RotateCW()
}

// Base блок под ногами игрока, сдвинутый на один вперёд
func (f Frame) Base() vec.Vec3 {
	return f.Origin.Sub(vec.Up).Add(f.Facing.Vec())
}

// Ahead возвращает позицию на n блоков перед игроком на уровне ног
func (f Frame) Ahead(n int) vec.Vec3 {
	return f.Origin.Add(f.Facing.Vec().Scale(n))
}

func (f Frame) String() string {
	return fmt.Sprintf("actor=%s dim=%s origin=%s facing=%s creative=%t",
		f.Actor, f.Dimension, f.Origin, f.Facing, f.Creative)
}
