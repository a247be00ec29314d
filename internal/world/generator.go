package world

import (
	"math"
	"math/rand"

	"github.com/annel0/voxel-edit/internal/util"
	"github.com/annel0/voxel-edit/internal/world/block"
)

// Generator заполняет только что созданный чанк. minY и maxY границы мира.
type Generator interface {
	Generate(c *Chunk, minY, maxY int)
}

// Layer слой плоского мира
type Layer struct {
	Block  block.BlockID
	Height int
}

// FlatGenerator плоский мир из слоёв, начиная с minY
type FlatGenerator struct {
	Layers []Layer
}

// DefaultFlatGenerator bedrock, 3 слоя камня, 2 слоя земли и трава
func DefaultFlatGenerator() *FlatGenerator {
	return &FlatGenerator{Layers: []Layer{
		{Block: block.BedrockBlockID, Height: 1},
		{Block: block.StoneBlockID, Height: 3},
		{Block: block.DirtBlockID, Height: 2},
		{Block: block.GrassBlockID, Height: 1},
	}}
}

// Generate реализует Generator
func (g *FlatGenerator) Generate(c *Chunk, minY, maxY int) {
	y := minY
	for _, layer := range g.Layers {
		st := block.Default(layer.Block)
		for i := 0; i < layer.Height && y < maxY; i++ {
			for x := 0; x < ChunkSize; x++ {
				for z := 0; z < ChunkSize; z++ {
					c.SetState(x, y, z, st)
				}
			}
			y++
		}
	}
}

// Высоты рельефа относительно уровня моря
const (
	DefaultSeaLevel  = 62
	TerrainAmplitude = 24
	DirtDepth        = 3
)

// PerlinGenerator рельеф по шуму Перлина: bedrock на дне, камень, земля, трава, вода до уровня моря
type PerlinGenerator struct {
	Seed       int64
	NoiseScale float64 // Масштаб шума высоты
	SeaLevel   int

	noise *util.Noise
}

// NewPerlinGenerator создаёт генератор рельефа
func NewPerlinGenerator(seed int64) *PerlinGenerator {
	return &PerlinGenerator{
		Seed:       seed,
		NoiseScale: 0.02, // Сглаженность ландшафта
		SeaLevel:   DefaultSeaLevel,
		noise:      util.NewNoise(seed),
	}
}

// SurfaceHeight высота поверхности в колонке (x, z)
func (g *PerlinGenerator) SurfaceHeight(x, z int) int {
	h := g.noise.Noise2D(float64(x)*g.NoiseScale, float64(z)*g.NoiseScale)
	return g.SeaLevel + int(math.Round((h-0.5)*2*TerrainAmplitude))
}

// Generate реализует Generator
func (g *PerlinGenerator) Generate(c *Chunk, minY, maxY int) {
	// Детерминированный сид на чанк для гравия под водой
	chunkSeed := g.Seed + int64(c.Coords.X*31) + int64(c.Coords.Y*17)
	rng := rand.New(rand.NewSource(chunkSeed))

	bedrock := block.Default(block.BedrockBlockID)
	stone := block.Default(block.StoneBlockID)
	dirt := block.Default(block.DirtBlockID)
	grass := block.Default(block.GrassBlockID)
	sand := block.Default(block.SandBlockID)
	gravel := block.Default(block.GravelBlockID)
	water := block.Default(block.WaterBlockID)

	startX := c.Coords.X * ChunkSize
	startZ := c.Coords.Y * ChunkSize

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			surface := min(g.SurfaceHeight(startX+x, startZ+z), maxY-1)
			underwater := surface < g.SeaLevel

			for y := minY; y <= surface; y++ {
				var st block.State
				switch {
				case y == minY:
					st = bedrock
				case y < surface-DirtDepth:
					st = stone
				case underwater && rng.Float64() < 0.2:
					st = gravel
				case underwater || surface <= g.SeaLevel+1:
					st = sand
				case y < surface:
					st = dirt
				default:
					st = grass
				}
				c.SetState(x, y, z, st)
			}
			for y := surface + 1; y <= g.SeaLevel && y < maxY; y++ {
				c.SetState(x, y, z, water)
			}
		}
	}
}
