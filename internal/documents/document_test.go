package documents_test

import (
	"testing"

	"bennypowers.dev/flatscss/internal/documents"
	"bennypowers.dev/flatscss/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	doc := documents.NewDocument("file:///card.scss", "scss", 1, ".c-card {}")

	assert.Equal(t, "file:///card.scss", doc.URI())
	assert.Equal(t, "scss", doc.LanguageID())
	assert.Equal(t, 1, doc.Version())
	assert.Equal(t, ".c-card {}", doc.Content())
	assert.True(t, doc.IsStylesheet())
}

func TestDocument_SetContent(t *testing.T) {
	t.Run("accepts newer and same versions", func(t *testing.T) {
		doc := documents.NewDocument("file:///card.scss", "scss", 1, "original")
		require.NoError(t, doc.SetContent("same", 1))
		require.NoError(t, doc.SetContent("updated", 2))
		assert.Equal(t, "updated", doc.Content())
		assert.Equal(t, 2, doc.Version())
	})

	t.Run("rejects older version", func(t *testing.T) {
		doc := documents.NewDocument("file:///card.scss", "scss", 5, "original")
		err := doc.SetContent("stale", 4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected stale update")
		assert.Equal(t, "original", doc.Content())
	})
}

func TestDocument_Result(t *testing.T) {
	doc := documents.NewDocument("file:///card.scss", "scss", 1, ".c-card {}")
	_, ok := doc.Result()
	assert.False(t, ok, "nothing cached yet")

	res := &pipeline.Result{NormalizedStylesheet: ".c-card {}"}
	doc.SetResult(1, res)
	got, ok := doc.Result()
	require.True(t, ok)
	assert.Same(t, res, got)

	t.Run("results for other versions are ignored", func(t *testing.T) {
		doc.SetResult(0, &pipeline.Result{})
		got, ok := doc.Result()
		require.True(t, ok)
		assert.Same(t, res, got)
	})

	t.Run("clearing drops the cached result", func(t *testing.T) {
		doc.ClearResult()
		_, ok := doc.Result()
		assert.False(t, ok)
		doc.SetResult(1, res)
	})

	t.Run("changing content invalidates", func(t *testing.T) {
		require.NoError(t, doc.SetContent(".c-card { color: red; }", 2))
		_, ok := doc.Result()
		assert.False(t, ok)
	})
}

func TestDocument_Snapshot(t *testing.T) {
	doc := documents.NewDocument("file:///card.scss", "scss", 3, ".c-card {}")
	content, version := doc.Snapshot()
	assert.Equal(t, ".c-card {}", content)
	assert.Equal(t, 3, version)
}

func TestIsStylesheet(t *testing.T) {
	tests := []struct {
		uri, languageID string
		want            bool
	}{
		{"file:///a.scss", "scss", true},
		{"file:///a.txt", "scss", true},
		{"file:///a.scss", "css", false},
		{"file:///a.scss", "", true},
		{"file:///A.SCSS", "", true},
		{"file:///a.html", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri+"/"+tt.languageID, func(t *testing.T) {
			assert.Equal(t, tt.want, documents.IsStylesheet(tt.uri, tt.languageID))
		})
	}
}
