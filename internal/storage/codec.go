package storage

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/annel0/voxel-edit/internal/logging"
	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/voxel"
	"github.com/annel0/voxel-edit/internal/world/block"
)

// RecordVersion версия формата записи истории
const RecordVersion = 1

type recordJSON struct {
	Version int          `json:"version"`
	Actor   string       `json:"actor"`
	Undo    []actionJSON `json:"undo"`
	Redo    []actionJSON `json:"redo"`
}

type actionJSON struct {
	Dimension     string         `json:"dimension"`
	TimestampMs   int64          `json:"timestamp_ms"`
	InnerW        int            `json:"inner_w"`
	InnerH        int            `json:"inner_h"`
	InnerD        int            `json:"inner_d"`
	ShellMeta     string         `json:"shell_meta,omitempty"`
	Force         bool           `json:"force"`
	Loot          bool           `json:"loot"`
	LootItemCount int            `json:"loot_item_count"`
	Changed       int            `json:"changed"`
	Snapshots     []snapshotJSON `json:"snapshots"`
}

type snapshotJSON struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Z      int    `json:"z"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// EncodeRecord кодирует запись в JSON
func EncodeRecord(rec *Record) ([]byte, error) {
	out := recordJSON{
		Version: RecordVersion,
		Actor:   rec.Actor.String(),
		Undo:    encodeActions(rec.Undo),
		Redo:    encodeActions(rec.Redo),
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования истории %s: %w", rec.Actor, err)
	}
	return data, nil
}

func encodeActions(actions []*voxel.Action) []actionJSON {
	out := make([]actionJSON, 0, len(actions))
	for _, a := range actions {
		snaps := a.Snapshots()
		aj := actionJSON{
			Dimension:     a.Dimension,
			TimestampMs:   a.TimestampMs,
			InnerW:        a.InnerW,
			InnerH:        a.InnerH,
			InnerD:        a.InnerD,
			ShellMeta:     a.ShellMeta,
			Force:         a.Force,
			Loot:          a.Loot,
			LootItemCount: a.LootItemCount,
			Changed:       a.Changed(),
			Snapshots:     make([]snapshotJSON, 0, len(snaps)),
		}
		for _, s := range snaps {
			aj.Snapshots = append(aj.Snapshots, snapshotJSON{
				X: s.Pos.X, Y: s.Pos.Y, Z: s.Pos.Z,
				Before: s.Before.String(),
				After:  s.After.String(),
			})
		}
		out = append(out, aj)
	}
	return out
}

// DecodeRecord разбирает запись. Неизвестные поля и более новая версия не мешают разбору; снимки с нераспознанными
// состояниями отбрасываются, а действие сохраняется с пересчитанным Changed.
func DecodeRecord(data []byte) (*Record, error) {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("ошибка разбора истории: %w", err)
	}
	actor, err := uuid.Parse(in.Actor)
	if err != nil {
		return nil, fmt.Errorf("некорректный актор %q: %w", in.Actor, err)
	}
	if in.Version > RecordVersion {
		// более новая запись: читаем известные поля
		logging.GetComponentLogger("history").Warn("Актор %s: версия истории %d новее %d", actor, in.Version, RecordVersion)
	}
	return &Record{
		Actor: actor,
		Undo:  decodeActions(actor, in.Undo),
		Redo:  decodeActions(actor, in.Redo),
	}, nil
}

func decodeActions(actor uuid.UUID, in []actionJSON) []*voxel.Action {
	out := make([]*voxel.Action, 0, len(in))
	for _, aj := range in {
		snaps := make([]voxel.Snapshot, 0, len(aj.Snapshots))
		dropped := 0
		for _, sj := range aj.Snapshots {
			before, errB := block.ParseState(sj.Before)
			after, errA := block.ParseState(sj.After)
			if errB != nil || errA != nil {
				dropped++
				continue
			}
			snaps = append(snaps, voxel.Snapshot{
				Pos:    vec.Vec3{X: sj.X, Y: sj.Y, Z: sj.Z},
				Before: before,
				After:  after,
			})
		}
		if dropped > 0 {
			logging.GetComponentLogger("history").Warn("Актор %s: отброшено %d нераспознанных снимков", actor, dropped)
		}
		out = append(out, voxel.Assemble(voxel.ActionMeta{
			Dimension:     aj.Dimension,
			TimestampMs:   aj.TimestampMs,
			InnerW:        aj.InnerW,
			InnerH:        aj.InnerH,
			InnerD:        aj.InnerD,
			ShellMeta:     aj.ShellMeta,
			Force:         aj.Force,
			Loot:          aj.Loot,
			LootItemCount: aj.LootItemCount,
		}, snaps))
	}
	return out
}
