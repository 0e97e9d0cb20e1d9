package html_test

import (
	"os"
	"sync"
	"testing"

	"bennypowers.dev/flatscss/internal/parser/html"
	"bennypowers.dev/flatscss/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	source, err := os.ReadFile("testdata/card.html")
	require.NoError(t, err)
	return string(source)
}

func TestScanClasses(t *testing.T) {
	records := html.ScanClasses(loadFixture(t), nil)

	want := []html.ClassRecord{
		{ClassName: "p-top", TagName: "section"},
		{ClassName: "c-card", TagName: "article"},
		{ClassName: "c-card__title", TagName: "h2"},
		{ClassName: "c-card__image", TagName: "img"},
		{ClassName: "c-card__body", TagName: "p"},
		{ClassName: "c-card-list", TagName: "ul"},
	}
	assert.Equal(t, want, records)
}

func TestScanClassesCustomPrefixes(t *testing.T) {
	records := html.ScanClasses(loadFixture(t), selector.MustMatcher([]string{"u"}))
	assert.Equal(t, []html.ClassRecord{{ClassName: "u-text", TagName: "p"}}, records)
}

func TestScanClassesEmpty(t *testing.T) {
	assert.Empty(t, html.ScanClasses("", nil))
	assert.Empty(t, html.ScanClasses("<div>no classes</div>", nil))
}

func TestScanClassesWordMatch(t *testing.T) {
	records := html.ScanClasses(`<span class="c-card-x"></span><b class="c-card"></b>`, nil)
	assert.Equal(t, []html.ClassRecord{
		{ClassName: "c-card-x", TagName: "span"},
		{ClassName: "c-card", TagName: "b"},
	}, records)
}

func TestExtractFragment(t *testing.T) {
	source := loadFixture(t)

	fragment, ok := html.ExtractFragment(source, "c-card__title")
	require.True(t, ok)
	assert.Equal(t, `<h2 class="c-card__title">Title</h2>`, fragment)

	fragment, ok = html.ExtractFragment(source, ".c-card__image")
	require.True(t, ok)
	assert.Equal(t, `<img class="c-card__image" src="card.png" />`, fragment)

	_, ok = html.ExtractFragment(source, "c-missing")
	assert.False(t, ok)
}

func TestParserPoolConcurrency(t *testing.T) {
	source := loadFixture(t)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := html.AcquireParser()
			defer html.ReleaseParser(p)
			assert.Len(t, p.ScanClasses(source, nil), 6)
		}()
	}
	wg.Wait()
}
