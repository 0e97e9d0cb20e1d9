package selector_test

import (
	"testing"

	"bennypowers.dev/flatscss/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want selector.Kind
	}{
		{".c-card", selector.Block},
		{"c-card", selector.Block},
		{".c-card__title", selector.Element},
		{".c-card__title:hover", selector.Element},
		{".c-card:hover", selector.PseudoClass},
		{".c-card::before", selector.PseudoClass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selector.Classify(tt.name))
		})
	}
}

func TestBlockName(t *testing.T) {
	assert.Equal(t, "c-card", selector.BlockName(".c-card__title:hover"))
	assert.Equal(t, "c-card", selector.BlockName("c-card:hover"))
	assert.Equal(t, "p-top", selector.BlockName("p-top"))
}

func TestOwnership(t *testing.T) {
	assert.True(t, selector.IsElementOf("c-card__title", "c-card"))
	assert.True(t, selector.IsElementOf(".c-card__title:hover", ".c-card"))
	assert.False(t, selector.IsElementOf("c-cardigan__title", "c-card"))
	assert.True(t, selector.IsPseudoClassOf("c-card:hover", "c-card"))
	assert.False(t, selector.IsPseudoClassOf("c-card__title:hover", "c-card"))
	assert.True(t, selector.IsPseudoClassOf("c-card__title:hover", "c-card__title"))
}

func TestMatcher(t *testing.T) {
	m := selector.Default

	t.Run("tracked classes", func(t *testing.T) {
		assert.True(t, m.IsTrackedClass("c-card"))
		assert.True(t, m.IsTrackedClass("p-top__hero"))
		assert.True(t, m.IsTrackedClass("l-main"))
		assert.False(t, m.IsTrackedClass("card"))
		assert.False(t, m.IsTrackedClass("u-mt-16"))
		assert.False(t, m.IsTrackedClass("is-active"))
	})

	t.Run("tracked selectors", func(t *testing.T) {
		assert.True(t, m.IsTrackedSelector(".c-card"))
		assert.True(t, m.IsTrackedSelector(".c-card__title:hover"))
		assert.True(t, m.IsTrackedSelector(".c-list__item:nth-child(2n)"))
		assert.False(t, m.IsTrackedSelector("c-card"), "class dot is required")
		assert.False(t, m.IsTrackedSelector(".c-card .icon"))
		assert.False(t, m.IsTrackedSelector(".c-card, .c-panel"))
		assert.False(t, m.IsTrackedSelector("body"))
	})

	t.Run("custom prefixes", func(t *testing.T) {
		custom, err := selector.NewMatcher([]string{"x", "y"})
		require.NoError(t, err)
		assert.True(t, custom.IsTrackedClass("x-card"))
		assert.False(t, custom.IsTrackedClass("c-card"))
		assert.Equal(t, []string{"x", "y"}, custom.Prefixes())
	})

	t.Run("invalid prefixes", func(t *testing.T) {
		_, err := selector.NewMatcher(nil)
		assert.Error(t, err)
		_, err = selector.NewMatcher([]string{"c-"})
		assert.Error(t, err)
	})
}
