package lysbild

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteConfigFixture = `{
  "theme": {
    "accent": "#c0ffee",
    "breakpoints": [480, 960, 1440]
  },
  "panel": {
    "text": "hand-written by the operator"
  },
  "galleries": {
    "default": "bw",
    "defaultLayout": "organic",
    "items": {
      "bw": {
        "displayName": "Black & White (custom)",
        "order": 2,
        "layout": {"columns": 3},
        "randomOrder": true
      },
      "vanished": {
        "displayName": "No Longer Here",
        "order": 1
      }
    }
  }
}`

func syncFixture(t *testing.T, galleries []string) map[string]json.RawMessage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.json")
	writeFile(t, path, siteConfigFixture)

	require.NoError(t, SyncSiteConfig(path, galleries))

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(bs, &doc))
	return doc
}

func TestSyncSiteConfig(t *testing.T) {
	doc := syncFixture(t, []string{"bw", "new_city-walk"})

	sec := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(doc["galleries"], &sec))
	items := map[string]GalleryEntry{}
	require.NoError(t, json.Unmarshal(sec["items"], &items))

	require.Len(t, items, 2)
	assert.NotContains(t, items, "vanished")

	bw := items["bw"]
	assert.Equal(t, "Black & White (custom)", bw.DisplayName, "user display name preserved")
	assert.Equal(t, 1, bw.Order, "order rewritten to discovery order")
	assert.JSONEq(t, `{"columns": 3}`, string(bw.Extra["layout"]), "unknown fields preserved")
	assert.JSONEq(t, `true`, string(bw.Extra["randomOrder"]))

	nw := items["new_city-walk"]
	assert.Equal(t, "New City Walk", nw.DisplayName, "auto-derived display name")
	assert.Equal(t, 2, nw.Order)

	assert.JSONEq(t, `"bw"`, string(sec["default"]), "default survives while its gallery does")
	assert.JSONEq(t, `"organic"`, string(sec["defaultLayout"]))
}

func TestSyncSiteConfigSiblingSectionsUntouched(t *testing.T) {
	doc := syncFixture(t, []string{"bw"})

	assert.JSONEq(t, `{"accent": "#c0ffee", "breakpoints": [480, 960, 1440]}`, string(doc["theme"]))
	assert.JSONEq(t, `{"text": "hand-written by the operator"}`, string(doc["panel"]))
}

func TestSyncSiteConfigDefaultFallsBack(t *testing.T) {
	doc := syncFixture(t, []string{"color", "zoo"})

	sec := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(doc["galleries"], &sec))
	assert.JSONEq(t, `"color"`, string(sec["default"]), "first discovered gallery when the old default vanished")
}

func TestSyncSiteConfigNoGalleries(t *testing.T) {
	doc := syncFixture(t, nil)

	sec := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(doc["galleries"], &sec))
	assert.JSONEq(t, `null`, string(sec["default"]))
	assert.JSONEq(t, `{}`, string(sec["items"]))
}

func TestSyncSiteConfigFreshDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	writeFile(t, path, `{}`)

	require.NoError(t, SyncSiteConfig(path, []string{"bw"}))

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(bs, &doc))

	sec := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(doc["galleries"], &sec))
	items := map[string]GalleryEntry{}
	require.NoError(t, json.Unmarshal(sec["items"], &items))
	assert.Equal(t, "Bw", items["bw"].DisplayName)
	assert.Equal(t, 1, items["bw"].Order)
}

func TestSyncSiteConfigMissingFile(t *testing.T) {
	err := SyncSiteConfig(filepath.Join(t.TempDir(), "nope.json"), []string{"bw"})
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"bw":              "Bw",
		"black_and_white": "Black And White",
		"city-walk":       "City Walk",
		"mixed_case-set":  "Mixed Case Set",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in))
	}
}
