package vec

import (
	"fmt"
	"strings"
)

// Direction горизонтальное направление взгляда игрока
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{"north", "east", "south", "west"}

var directionVectors = [...]Vec3{
	North: {Z: -1},
	East:  {X: 1},
	South: {Z: 1},
	West:  {X: -1},
}

// Vec возвращает единичный вектор направления
func (d Direction) Vec() Vec3 {
	return directionVectors[d&3]
}

// RotateCW поворачивает направление по часовой стрелке (вид сверху): N→E→S→W
func (d Direction) RotateCW() Direction {
	return (d + 1) & 3
}

// Opposite возвращает противоположное направление
func (d Direction) Opposite() Direction {
	return (d + 2) & 3
}

func (d Direction) String() string {
	return directionNames[d&3]
}

// ParseDirection разбирает имя направления (north/east/south/west или n/e/s/w)
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "north", "n":
		return North, nil
	case "east", "e":
		return East, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	}
	return North, fmt.Errorf("неизвестное направление %q", name)
}

// MarshalText кодирует направление именем
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText разбирает направление из имени
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
