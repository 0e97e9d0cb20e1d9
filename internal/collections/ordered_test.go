package collections_test

import (
	"testing"

	"bennypowers.dev/flatscss/internal/collections"
	"github.com/stretchr/testify/assert"
)

func TestOrderedMapSetIfAbsent(t *testing.T) {
	m := collections.NewOrderedMap[string, string]()

	assert.True(t, m.SetIfAbsent("#DDF0F1", "$primary-color"))
	assert.False(t, m.SetIfAbsent("#DDF0F1", "$surface-color"), "first write should win")
	assert.True(t, m.SetIfAbsent("#333333", "$text-color"))

	v, ok := m.Get("#DDF0F1")
	assert.True(t, ok)
	assert.Equal(t, "$primary-color", v)
	assert.Equal(t, []string{"#DDF0F1", "#333333"}, m.Keys())
	assert.Equal(t, 2, m.Len())
}

func TestOrderedMapPut(t *testing.T) {
	m := collections.NewOrderedMap[string, int]()

	assert.False(t, m.Put("c-card", 1))
	assert.False(t, m.Put("c-button", 2))
	assert.True(t, m.Put("c-card", 3), "second write should replace")

	v, _ := m.Get("c-card")
	assert.Equal(t, 3, v, "last write should win")
	assert.Equal(t, []string{"c-card", "c-button"}, m.Keys(), "replaced key keeps its first position")
	assert.Equal(t, []int{3, 2}, m.Values())
}

func TestOrderedMapMissingKey(t *testing.T) {
	m := collections.NewOrderedMap[string, string]()
	_, ok := m.Get("nope")
	assert.False(t, ok)
	assert.False(t, m.Has("nope"))
	assert.Empty(t, m.Keys())
	assert.Empty(t, m.Values())
}
