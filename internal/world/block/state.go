package block

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// State конкретное состояние блока: тип плюс свойства в каноническом виде
// ("facing=north,type=left", ключи отсортированы). Значения сравниваются через ==.
type State struct {
	ID    BlockID
	Props string
}

// Air состояние воздуха
var Air = State{ID: AirBlockID}

// Default возвращает состояние по умолчанию для типа блока
func Default(id BlockID) State {
	if behavior, ok := Get(id); ok {
		return behavior.DefaultState()
	}
	return State{ID: id}
}

// IsAir проверяет, является ли состояние воздухом
func (s State) IsAir() bool {
	return s.ID == AirBlockID
}

// Name возвращает имя типа блока
func (s State) Name() string {
	return NameOf(s.ID)
}

// Property возвращает значение свойства
func (s State) Property(key string) (string, bool) {
	for _, kv := range splitProps(s.Props) {
		if kv[0] == key {
			return kv[1], true
		}
	}
	return "", false
}

// With возвращает копию состояния с заменённым свойством
func (s State) With(key, value string) State {
	props := splitProps(s.Props)
	replaced := false
	for i := range props {
		if props[i][0] == key {
			props[i][1] = value
			replaced = true
		}
	}
	if !replaced {
		props = append(props, [2]string{key, value})
	}
	return State{ID: s.ID, Props: joinProps(props)}
}

// String кодирует состояние как name или name[k=v,...]
func (s State) String() string {
	if s.Props == "" {
		return s.Name()
	}
	return s.Name() + "[" + s.Props + "]"
}

// MarshalText кодирует состояние в канонический текст
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText разбирает состояние из канонического текста
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState разбирает "stone", "minecraft:stone", "chest[facing=north]" или "#12".
// Свойства нормализуются в канонический порядок.
func ParseState(text string) (State, error) {
	text = strings.TrimSpace(text)
	name, props := text, ""
	if i := strings.IndexByte(text, '['); i >= 0 {
		if !strings.HasSuffix(text, "]") {
			return State{}, fmt.Errorf("незакрытые свойства в %q", text)
		}
		name, props = text[:i], text[i+1:len(text)-1]
	}

	var id BlockID
	if strings.HasPrefix(name, "#") {
		n, err := strconv.ParseUint(name[1:], 10, 16)
		if err != nil {
			return State{}, fmt.Errorf("некорректный ID блока %q: %w", name, err)
		}
		id = BlockID(n)
	} else {
		found, ok := Lookup(name)
		if !ok {
			return State{}, fmt.Errorf("неизвестный блок %q", name)
		}
		id = found
	}

	if props == "" {
		return State{ID: id}, nil
	}

	pairs := splitProps(props)
	for _, kv := range pairs {
		if kv[0] == "" {
			return State{}, fmt.Errorf("пустое имя свойства в %q", text)
		}
	}
	return State{ID: id, Props: joinProps(pairs)}, nil
}

func splitProps(props string) [][2]string {
	if props == "" {
		return nil
	}
	parts := strings.Split(props, ",")
	out := make([][2]string, 0, len(parts))
	for _, p := range parts {
		k, v, _ := strings.Cut(p, "=")
		out = append(out, [2]string{strings.TrimSpace(k), strings.TrimSpace(v)})
	}
	return out
}

func joinProps(props [][2]string) string {
	sort.Slice(props, func(i, j int) bool { return props[i][0] < props[j][0] })
	parts := make([]string, 0, len(props))
	for _, kv := range props {
		parts = append(parts, kv[0]+"="+kv[1])
	}
	return strings.Join(parts, ",")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
