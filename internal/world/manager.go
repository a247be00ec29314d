package world

import (
	"fmt"
	"sort"
	"sync"
)

// Manager набор измерений сервера
type Manager struct {
	mu     sync.RWMutex
	worlds map[string]*World
}

// NewManager создаёт пустой менеджер измерений
func NewManager() *Manager {
	return &Manager{worlds: make(map[string]*World)}
}

// Add регистрирует измерение; идентификаторы должны быть уникальны
func (m *Manager) Add(w *World) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.worlds[w.DimensionID()]; exists {
		return fmt.Errorf("измерение %q уже зарегистрировано", w.DimensionID())
	}
	m.worlds[w.DimensionID()] = w
	return nil
}

// Get возвращает измерение по идентификатору
func (m *Manager) Get(dimension string) (*World, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.worlds[dimension]
	return w, ok
}

// Dimensions список идентификаторов измерений в алфавитном порядке
func (m *Manager) Dimensions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.worlds))
	for id := range m.worlds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Tick тикает все измерения и возвращает суммарное число изменённых чанков
func (m *Manager) Tick() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dirty := 0
	for _, w := range m.worlds {
		dirty += w.Tick()
	}
	return dirty
}
