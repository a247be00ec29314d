package voxel

import "github.com/annel0/voxel-edit/internal/world/block"

// IsProtected блоки с block entity и спаунеры правятся только с force
func IsProtected(st block.State) bool {
	props := block.PropertiesOf(st.ID)
	return props.BlockEntity || props.Spawner
}

// isImmune бедрок не трогается никогда, даже с force
func isImmune(st block.State) bool {
	return st.ID == block.BedrockBlockID
}
