package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryInsertMergesBeforeEmptySlot(t *testing.T) {
	inv := NewInventory(3)
	inv.SetSlot(1, New("cobblestone", 60))

	rest := inv.Insert(New("cobblestone", 10))
	assert.True(t, rest.IsEmpty(), "всё должно поместиться")

	assert.Equal(t, 64, inv.Slot(1).Count, "сначала дополняется существующая стопка")
	assert.Equal(t, 6, inv.Slot(0).Count, "остаток уходит в первый пустой слот")
	assert.Equal(t, "cobblestone", inv.Slot(0).Item)
}

func TestInventoryInsertRespectsComponents(t *testing.T) {
	inv := NewInventory(2)
	inv.SetSlot(0, Stack{Item: "sign", Count: 4, Components: map[string]string{"text": "hi"}})

	rest := inv.Insert(New("sign", 3))
	assert.True(t, rest.IsEmpty())
	assert.Equal(t, 4, inv.Slot(0).Count, "стопки с разными компонентами не сливаются")
	assert.Equal(t, 3, inv.Slot(1).Count)
}

func TestInventoryInsertOverflow(t *testing.T) {
	inv := NewInventory(1)
	inv.SetSlot(0, New("dirt", 64))

	rest := inv.Insert(New("dirt", 5))
	require.False(t, rest.IsEmpty())
	assert.Equal(t, 5, rest.Count)
}

func TestStackCloneIsDeep(t *testing.T) {
	st := Stack{Item: "sign", Count: 1, Components: map[string]string{"text": "a"}}
	cp := st.Clone()
	cp.Components["text"] = "b"
	assert.Equal(t, "a", st.Components["text"])
	assert.True(t, st.SameItemAndComponents(Stack{Item: "sign", Count: 9, Components: map[string]string{"text": "a"}}))
}

func TestTotalCountSkipsEmpty(t *testing.T) {
	assert.Equal(t, 7, TotalCount([]Stack{New("dirt", 3), {}, New("stone", 4), New("", 5)}))
	assert.Equal(t, 16, MaxStackSize("sign"))
	assert.Equal(t, DefaultMaxStack, MaxStackSize("stone"))
}
