package implementations

import "github.com/annel0/voxel-edit/internal/world/block"

// Регистрируем все типы блоков при импорте пакета
func init() {
	// Базовые блоки
	block.Register(block.AirBlockID, &AirBehavior{})
	block.Register(block.StoneBlockID, NewSimple(block.StoneBlockID, "stone", 1.5).DroppingAs("cobblestone"))
	block.Register(block.GrassBlockID, NewSimple(block.GrassBlockID, "grass_block", 0.6).DroppingAs("dirt"))
	block.Register(block.WaterBlockID, NewSimple(block.WaterBlockID, "water", 100).DroppingAs(""))
	block.Register(block.SandBlockID, NewSimple(block.SandBlockID, "sand", 0.5))
	block.Register(block.DirtBlockID, NewSimple(block.DirtBlockID, "dirt", 0.5))
	block.Register(block.AndesiteBlockID, NewSimple(block.AndesiteBlockID, "andesite", 1.5))
	block.Register(block.CobblestoneBlockID, NewSimple(block.CobblestoneBlockID, "cobblestone", 2))
	block.Register(block.GravelBlockID, NewSimple(block.GravelBlockID, "gravel", 0.6))

	bedrock := NewSimple(block.BedrockBlockID, "bedrock", -1).DroppingAs("")
	bedrock.props.Unbreakable = true
	block.Register(block.BedrockBlockID, bedrock)

	// Строительные блоки
	block.Register(block.OakPlanksBlockID, NewSimple(block.OakPlanksBlockID, "oak_planks", 2))
	block.Register(block.OakLogBlockID, NewSimple(block.OakLogBlockID, "oak_log", 2))
	block.Register(block.GlassBlockID, &GlassBehavior{})

	// Блоки с block entity
	block.Register(block.ChestBlockID, &ChestBehavior{})
	block.Register(block.SignBlockID, &SignBehavior{})
	block.Register(block.SpawnerBlockID, &SpawnerBehavior{})
}
