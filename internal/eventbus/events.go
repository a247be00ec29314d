package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы событий движка правок
const (
	TypeVoxelEdit = "VoxelEdit"
	TypeVoxelUndo = "VoxelUndo"
	TypeVoxelRedo = "VoxelRedo"
)

// SourceVoxel источник событий движка
const SourceVoxel = "voxel-edit"

// VoxelEditEvent полезная нагрузка VoxelEdit
type VoxelEditEvent struct {
	Actor         string `json:"actor"`
	Op            string `json:"op"`
	Dimension     string `json:"dimension"`
	Changed       int    `json:"changed"`
	ShellMeta     string `json:"shell_meta,omitempty"`
	InnerW        int    `json:"inner_w"`
	InnerH        int    `json:"inner_h"`
	InnerD        int    `json:"inner_d"`
	Force         bool   `json:"force"`
	Loot          bool   `json:"loot"`
	LootItemCount int    `json:"loot_item_count"`
	TimestampMs   int64  `json:"timestamp_ms"`
}

// VoxelReplayEvent полезная нагрузка VoxelUndo и VoxelRedo
type VoxelReplayEvent struct {
	Actor     string `json:"actor"`
	Dimension string `json:"dimension"`
	Requested int    `json:"requested"`
	Restored  int    `json:"restored"`
}

// NewEnvelope упаковывает полезную нагрузку в JSON конверт
func NewEnvelope(eventType, correlationID string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        SourceVoxel,
		EventType:     eventType,
		Version:       1,
		CorrelationID: correlationID,
		Priority:      3,
		Payload:       data,
	}, nil
}

// Decode разбирает полезную нагрузку конверта
func (e *Envelope) Decode(out any) error {
	return json.Unmarshal(e.Payload, out)
}

// PublishPayload создаёт конверт и публикует его в глобальную шину
func PublishPayload(ctx context.Context, eventType, correlationID string, payload any) error {
	ev, err := NewEnvelope(eventType, correlationID, payload)
	if err != nil {
		return err
	}
	return Publish(ctx, ev)
}
