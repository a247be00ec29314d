package voxel

import "errors"

var (
	// ErrInvalidActor команда пришла не от игрока
	ErrInvalidActor = errors.New("voxel: источник команды не является игроком")
	// ErrInvalidMaterial грань комнаты задана воздухом или неизвестным блоком
	ErrInvalidMaterial = errors.New("voxel: недопустимый материал")
	// ErrInvalidSize размеры вне допустимого диапазона
	ErrInvalidSize = errors.New("voxel: недопустимый размер")
	// ErrUnknownShape неизвестный вид фигуры
	ErrUnknownShape = errors.New("voxel: неизвестная фигура")
)

// UnknownDimension идентификатор измерения для действий в неизменяемом мире
const UnknownDimension = "?"
