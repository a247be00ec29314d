package history

import (
	"fmt"
	"time"

	"github.com/annel0/voxel-edit/internal/voxel"
)

// TimestampLayout формат времени в листинге истории (UTC)
const TimestampLayout = "2006-01-02 15:04:05"

// Entry строка листинга истории
type Entry struct {
	Index     int       `json:"index"` // 1 для самого свежего
	Time      time.Time `json:"time"`
	Dimension string    `json:"dimension"`
	InnerW    int       `json:"inner_w"`
	InnerH    int       `json:"inner_h"`
	InnerD    int       `json:"inner_d"`
	ShellMeta string    `json:"shell_meta,omitempty"`
	Force     bool      `json:"force"`
	Loot      bool      `json:"loot"`
	Changed   int       `json:"changed"`
}

func newEntry(index int, a *voxel.Action) Entry {
	return Entry{
		Index:     index,
		Time:      time.UnixMilli(a.TimestampMs).UTC(),
		Dimension: a.Dimension,
		InnerW:    a.InnerW,
		InnerH:    a.InnerH,
		InnerD:    a.InnerD,
		ShellMeta: a.ShellMeta,
		Force:     a.Force,
		Loot:      a.Loot,
		Changed:   a.Changed(),
	}
}

// String "#1 2024-05-01 12:00:00 dim=overworld inner=3x3x3 shell=- force=false loot=false changed=27"
func (e Entry) String() string {
	shell := e.ShellMeta
	if shell == "" {
		shell = "-"
	}
	return fmt.Sprintf("#%d %s dim=%s inner=%dx%dx%d shell=%s force=%t loot=%t changed=%d",
		e.Index, e.Time.Format(TimestampLayout), e.Dimension,
		e.InnerW, e.InnerH, e.InnerD, shell, e.Force, e.Loot, e.Changed)
}

// Listing результат запроса истории
type Listing struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"` // размер стека undo
}

// Lines текстовое представление листинга
func (l Listing) Lines() []string {
	if l.Total == 0 {
		return []string{"Истории нет"}
	}
	lines := make([]string, 0, len(l.Entries)+1)
	lines = append(lines, fmt.Sprintf("История (новые сверху) [%d/%d]", len(l.Entries), l.Total))
	for _, e := range l.Entries {
		lines = append(lines, e.String())
	}
	return lines
}
