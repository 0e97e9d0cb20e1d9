package palette_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"bennypowers.dev/flatscss/internal/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want palette.Format
	}{
		{"palette.yaml", palette.FormatYAML},
		{"palette.YML", palette.FormatYAML},
		{"palette.json", palette.FormatJSON},
		{"palette.jsonc", palette.FormatJSON},
		{"_colors.scss", palette.FormatSCSS},
		{"colors.tokens.json", palette.FormatTokens},
		{"colors.tokens.yaml", palette.FormatTokens},
		{"design.tokens", palette.FormatTokens},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := palette.FormatFromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := palette.FormatFromPath("palette.png")
	assert.ErrorIs(t, err, palette.ErrUnknownFormat)
}

func TestLoadYAML(t *testing.T) {
	p, err := palette.Load(filepath.Join("testdata", "palette.yaml"))
	require.NoError(t, err)

	want := palette.FromPairs(
		"primary-color", "#DDF0F1",
		"accent", "#FF6B35",
		"text-base", "#333333",
		"text-muted", "lighten($text-base, 20%)",
	)
	assert.Equal(t, want, p)
}

func TestLoadJSONC(t *testing.T) {
	p, err := palette.Load(filepath.Join("testdata", "palette.jsonc"))
	require.NoError(t, err)

	want := palette.FromPairs(
		"primary-color", "#DDF0F1",
		"accent", "#FF6B35",
		"gray-100", "#F5F5F5",
		"gray-900", "#212121",
	)
	assert.Equal(t, want, p)
}

func TestLoadSCSS(t *testing.T) {
	p, err := palette.Load(filepath.Join("testdata", "palette.scss"))
	require.NoError(t, err)

	want := palette.FromPairs(
		"primary-color", "#DDF0F1",
		"accent", "#FF6B35",
		"hover", "darken($accent, 10%)",
	)
	assert.Equal(t, want, p)
}

func TestLoadTokens(t *testing.T) {
	for _, name := range []string{"colors.tokens.json", "colors.tokens.yaml"} {
		t.Run(name, func(t *testing.T) {
			p, err := palette.Load(filepath.Join("testdata", name))
			require.NoError(t, err)

			red, ok := p.Lookup("$color-red")
			require.True(t, ok, "palette: %v", p)
			assert.Equal(t, "#FF0000", red)

			brand, ok := p.Lookup("$color-brand")
			require.True(t, ok)
			assert.Equal(t, "$color-red", brand)

			assert.False(t, p.Has("$spacing-small"), "only color tokens are loaded")

			hex, ok := p.Hex("$color-brand")
			require.True(t, ok)
			assert.Equal(t, "#ff0000", hex)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := palette.Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsNonStringValues(t *testing.T) {
	_, err := palette.Parse([]byte("primary: [1, 2]\n"), palette.FormatYAML)
	assert.Error(t, err)

	_, err = palette.Parse([]byte(`{"primary": 1}`), palette.FormatJSON)
	assert.Error(t, err)

	_, err = palette.Parse([]byte(`[]`), palette.FormatJSON)
	assert.Error(t, err)
}

func TestParseYAMLSequence(t *testing.T) {
	p, err := palette.Parse([]byte("- variable: primary\n  value: \"#fff\"\n"), palette.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, palette.FromPairs("primary", "#fff"), p)
}

func TestMarshalKeepsOrder(t *testing.T) {
	p := palette.FromPairs("zebra", "#000", "apple", "#fff")

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"$zebra":"#000","$apple":"#fff"}`, string(data))
	assert.Equal(t, `{"$zebra":"#000","$apple":"#fff"}`, string(data))

	out, err := yaml.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, "$zebra: \"#000\"\n$apple: \"#fff\"\n", string(out))

	var back palette.Palette
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}
