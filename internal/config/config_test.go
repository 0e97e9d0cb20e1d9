package config_test

import (
	"path/filepath"
	"testing"

	"bennypowers.dev/flatscss/internal/config"
	"bennypowers.dev/flatscss/internal/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"p", "c", "l"}, cfg.Prefixes)
	assert.Equal(t, 16.0, cfg.RootFontSize)
	assert.Equal(t, preview.DefaultBreakpoints, cfg.Breakpoints)

	cfg.Breakpoints["sp"] = "changed"
	assert.NotEqual(t, "changed", preview.DefaultBreakpoints["sp"], "defaults must not share maps")
}

func TestDiscoverYAML(t *testing.T) {
	root := filepath.Join("testdata", "yaml")
	cfg, path, err := config.Discover(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".config", "flatscss.yaml"), path)

	assert.Equal(t, []string{"p", "c", "l", "u"}, cfg.Prefixes)
	assert.Equal(t, 10.0, cfg.RootFontSize)
	assert.Equal(t, 12.5, cfg.ColorThreshold)
	assert.True(t, cfg.PerceptualColors)
	assert.Equal(t, "#ff0000", cfg.ColorOverrides["$accent-color"])

	t.Run("breakpoints merge with defaults", func(t *testing.T) {
		assert.Equal(t, "(max-width: 599px)", cfg.Breakpoints["sp"])
		assert.Equal(t, preview.DefaultBreakpoints["pc"], cfg.Breakpoints["pc"])
	})

	t.Run("unset fields keep defaults", func(t *testing.T) {
		assert.Equal(t, "@include mq(", cfg.MediaInclude)
		assert.Equal(t, "#808080", cfg.FallbackColor)
		assert.Equal(t, []string{"**/*.scss"}, cfg.Include)
	})

	t.Run("inline palette keeps order and comes before files", func(t *testing.T) {
		p, err := cfg.LoadPalette(root)
		require.NoError(t, err)
		assert.Equal(t, []string{"$primary", "$text", "$surface", "$border"}, p.Variables())
	})

	t.Run("pipeline options", func(t *testing.T) {
		opts := cfg.PipelineOptions()
		assert.Equal(t, 10.0, opts.RootFontSize)
		assert.True(t, opts.PerceptualColors)
	})
}

func TestDiscoverJSONC(t *testing.T) {
	cfg, _, err := config.Discover(filepath.Join("testdata", "json"))
	require.NoError(t, err)
	assert.Equal(t, "@include bp(", cfg.MediaInclude)
	assert.Equal(t, "@include bp(", cfg.PreviewOptions().MediaInclude)

	v, ok := cfg.Palette.Lookup("$primary")
	require.True(t, ok)
	assert.Equal(t, "#FF6B35", v)
}

func TestDiscoverPackageJSON(t *testing.T) {
	root := filepath.Join("testdata", "pkg")
	cfg, path, err := config.Discover(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "package.json"), path)
	assert.Equal(t, []string{"p", "c"}, cfg.Prefixes)
	assert.Equal(t, "#999999", cfg.FallbackColor)
	assert.Equal(t, 16.0, cfg.RootFontSize)
}

func TestDiscoverNothing(t *testing.T) {
	for _, dir := range []string{"none", "does-not-exist"} {
		t.Run(dir, func(t *testing.T) {
			cfg, path, err := config.Discover(filepath.Join("testdata", dir))
			require.NoError(t, err)
			assert.Empty(t, path)
			assert.Equal(t, config.Default(), cfg)
		})
	}
}

func TestDiscoverErrors(t *testing.T) {
	t.Run("package.json field is not an object", func(t *testing.T) {
		_, _, err := config.Discover(filepath.Join("testdata", "badpkg"))
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrConfig)
	})

	t.Run("invalid settings are all reported", func(t *testing.T) {
		_, _, err := config.Discover(filepath.Join("testdata", "invalid"))
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrConfig)
		assert.Len(t, multierr.Errors(err), 3)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := config.Load(filepath.Join("testdata", "yaml", "colors.scss"))
		assert.ErrorIs(t, err, config.ErrConfig)
	})
}

func TestMatches(t *testing.T) {
	cfg := config.Default()
	cfg.Exclude = append(cfg.Exclude, "vendor/**")

	tests := []struct {
		path string
		want bool
	}{
		{"src/card.scss", true},
		{"card.scss", true},
		{"src/card.css", false},
		{"node_modules/lib/a.scss", false},
		{"vendor/a.scss", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Matches(tt.path))
		})
	}
}
