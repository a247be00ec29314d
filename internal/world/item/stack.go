package item

import (
	"fmt"
	"maps"
	"sort"
	"strings"
)

// Stack описывает стопку предметов: тип, количество и компоненты (зачарования, имя и т.п.)
type Stack struct {
	Item       string            `json:"item"`
	Count      int               `json:"count"`
	Components map[string]string `json:"components,omitempty"`
}

// New создаёт стопку без компонентов
func New(itemName string, count int) Stack {
	return Stack{Item: itemName, Count: count}
}

// IsEmpty возвращает true для пустой стопки
func (s Stack) IsEmpty() bool {
	return s.Item == "" || s.Count <= 0
}

// MaxCount возвращает максимальный размер стопки для типа предмета
func (s Stack) MaxCount() int {
	return MaxStackSize(s.Item)
}

// Clone создаёт глубокую копию стопки
func (s Stack) Clone() Stack {
	out := Stack{Item: s.Item, Count: s.Count}
	if len(s.Components) > 0 {
		out.Components = maps.Clone(s.Components)
	}
	return out
}

// SameItemAndComponents сравнивает тип предмета и компоненты, без учёта количества
func (s Stack) SameItemAndComponents(other Stack) bool {
	if s.Item != other.Item || len(s.Components) != len(other.Components) {
		return false
	}
	for k, v := range s.Components {
		if ov, ok := other.Components[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (s Stack) String() string {
	if len(s.Components) == 0 {
		return fmt.Sprintf("%dx %s", s.Count, s.Item)
	}
	keys := make([]string, 0, len(s.Components))
	for k := range s.Components {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+s.Components[k])
	}
	return fmt.Sprintf("%dx %s{%s}", s.Count, s.Item, strings.Join(parts, ","))
}

// TotalCount суммирует количество по непустым стопкам
func TotalCount(stacks []Stack) int {
	total := 0
	for _, st := range stacks {
		if st.IsEmpty() {
			continue
		}
		total += st.Count
	}
	return total
}
