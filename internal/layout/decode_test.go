package layout

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgalvez56/nvim-voice/internal/geometry"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestDecodeFixture(t *testing.T) {
	l, err := Decode(readFixture(t, "voyager.json"))
	require.NoError(t, err)

	assert.Equal(t, "Daily Driver", l.Title)
	assert.Equal(t, geometry.Voyager, l.Geometry)
	require.Len(t, l.Layers, 3)

	base := l.Layers[0]
	assert.Equal(t, "Main", base.Title)
	require.Len(t, base.Keys, 10)

	t.Run("plain tap", func(t *testing.T) {
		k := base.Keys[0]
		require.NotNil(t, k.Tap)
		assert.Equal(t, "KC_ESCAPE", k.Tap.Code)
		assert.Equal(t, "Esc", k.Tap.Label)
		assert.Nil(t, k.Hold)
		assert.Nil(t, k.HoldLayer)
		assert.Nil(t, k.CustomLabel)
	})

	t.Run("tap and hold", func(t *testing.T) {
		k := base.Keys[2]
		require.NotNil(t, k.Tap)
		require.NotNil(t, k.Hold)
		assert.Equal(t, "W", k.Tap.Label)
		assert.Equal(t, "LAlt", k.Hold.Label)
	})

	t.Run("placeholders are absent", func(t *testing.T) {
		assert.Nil(t, base.Keys[3].Tap)
		assert.True(t, base.Keys[3].IsEmpty())

		k := base.Keys[4]
		assert.Nil(t, k.Tap)
		assert.Nil(t, k.Hold)
		require.NotNil(t, k.HoldLayer)
		assert.Equal(t, 2, *k.HoldLayer)
	})

	t.Run("hold layer falls back to tap layer", func(t *testing.T) {
		k := base.Keys[5]
		require.NotNil(t, k.HoldLayer)
		assert.Equal(t, 1, *k.HoldLayer)
		assert.Equal(t, "Space", k.Tap.Label)
	})

	t.Run("hold layer prefers hold", func(t *testing.T) {
		k := base.Keys[6]
		require.NotNil(t, k.HoldLayer)
		assert.Equal(t, 3, *k.HoldLayer)
	})

	t.Run("custom label only", func(t *testing.T) {
		k := base.Keys[7]
		require.NotNil(t, k.CustomLabel)
		assert.Equal(t, "Hyper", *k.CustomLabel)
		assert.Nil(t, k.Tap)
	})

	t.Run("unknown code falls back", func(t *testing.T) {
		assert.Equal(t, "Media Stop", base.Keys[8].Tap.Label)
	})

	t.Run("empty object", func(t *testing.T) {
		assert.True(t, base.Keys[9].IsEmpty())
	})

	t.Run("untitled layer", func(t *testing.T) {
		assert.Equal(t, "", l.Layers[1].Title)
		require.Len(t, l.Layers[1].Keys, 2)
		assert.Nil(t, l.Layers[1].Keys[0].Tap)
	})

	t.Run("keys not a list", func(t *testing.T) {
		assert.Equal(t, "Broken", l.Layers[2].Title)
		assert.Empty(t, l.Layers[2].Keys)
	})

	assert.False(t, l.Conforms())
}

func TestDecodeIsDeterministic(t *testing.T) {
	data := readFixture(t, "voyager.json")
	a, err := Decode(data)
	require.NoError(t, err)
	b, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a, b)
}

func TestFromValue(t *testing.T) {
	data := readFixture(t, "voyager.json")
	var v any
	require.NoError(t, json.Unmarshal(data, &v))

	fromValue, err := FromValue(v)
	require.NoError(t, err)
	fromBytes, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, fromValue.Equal(fromBytes))
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		reason error
	}{
		{"not json", `{"layout":`, ErrInvalidDocument},
		{"not an object", `[1, 2]`, ErrInvalidDocument},
		{"no layout", `{"title": "x"}`, ErrInvalidDocument},
		{"layout not object", `{"layout": "moonlander"}`, ErrInvalidDocument},
		{"missing geometry", `{"layout": {"title": "x", "revision": {"layers": []}}}`, ErrMissingGeometry},
		{"null geometry", `{"layout": {"geometry": null, "revision": {"layers": []}}}`, ErrMissingGeometry},
		{"unknown geometry", `{"layout": {"geometry": "planck", "revision": {"layers": []}}}`, ErrUnknownGeometry},
		{"geometry not string", `{"layout": {"geometry": 3, "revision": {"layers": []}}}`, ErrUnknownGeometry},
		{"missing revision", `{"layout": {"geometry": "voyager"}}`, ErrMissingLayers},
		{"missing layers", `{"layout": {"geometry": "voyager", "revision": {}}}`, ErrMissingLayers},
		{"layers not array", `{"layout": {"geometry": "voyager", "revision": {"layers": {}}}}`, ErrMissingLayers},
		{"layer not object", `{"layout": {"geometry": "voyager", "revision": {"layers": [{}, 4]}}}`, ErrMissingLayers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, l)
			assert.True(t, errors.Is(err, ErrNoLayout), "got %v", err)
			assert.True(t, errors.Is(err, tt.reason), "got %v", err)
		})
	}
}

func TestDecodeDefaults(t *testing.T) {
	l, err := Decode([]byte(`{"layout": {"geometry": "moonlander", "revision": {"layers": [{}]}}}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, l.Title)
	require.Len(t, l.Layers, 1)
	assert.Equal(t, "", l.Layers[0].Title)
	assert.Empty(t, l.Layers[0].Keys)

	l, err = Decode([]byte(`{"layout": {"title": null, "geometry": "moonlander", "revision": {"layers": []}}}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, l.Title)
	assert.Empty(t, l.Layers)
}

func TestDecodeLenientOptionalFields(t *testing.T) {
	doc := `{"layout": {"title": 7, "geometry": "ergodox-ez", "revision": {"layers": [
		{"title": ["x"], "keys": [
			{"tap": "KC_A"},
			{"tap": {"code": 12}},
			{"tap": {"code": "KC_B", "layer": 1}, "hold": {"code": "KC_C", "layer": "two"}},
			{"tap": {"code": "KC_D"}, "customLabel": 5},
			{"tap": {"code": "KC_E", "layer": 1.5}}
		]},
		{"keys": [{"tap": {"code": "KC_A"}}, "KC_B"]}
	]}}}`

	l, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, l.Title)
	require.Len(t, l.Layers, 2)

	keys := l.Layers[0].Keys
	assert.Equal(t, "", l.Layers[0].Title)
	require.Len(t, keys, 5)

	assert.Nil(t, keys[0].Tap)
	assert.Nil(t, keys[1].Tap)

	require.NotNil(t, keys[2].HoldLayer)
	assert.Equal(t, 1, *keys[2].HoldLayer)
	assert.Equal(t, "C", keys[2].Hold.Label)

	assert.Nil(t, keys[3].CustomLabel)
	assert.Equal(t, "D", keys[3].Tap.Label)

	assert.Nil(t, keys[4].HoldLayer)

	// One non-object entry empties the whole layer.
	assert.Empty(t, l.Layers[1].Keys)
}

func TestSchemaAcceptsFixtures(t *testing.T) {
	schema, err := compileSchema()
	require.NoError(t, err)

	for _, name := range []string{"voyager.json"} {
		t.Run(name, func(t *testing.T) {
			var instance any
			require.NoError(t, json.Unmarshal(readFixture(t, name), &instance))
			assert.NoError(t, schema.Validate(instance))
		})
	}
}
