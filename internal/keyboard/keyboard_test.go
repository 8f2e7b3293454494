package keyboard

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgalvez56/nvim-voice/internal/geometry"
	"github.com/victorgalvez56/nvim-voice/internal/keymapp"
	"github.com/victorgalvez56/nvim-voice/internal/layout"
	"github.com/victorgalvez56/nvim-voice/internal/metrics"
	"github.com/victorgalvez56/nvim-voice/internal/sequence"
)

const voyagerDoc = `{"layout": {"title": "Daily", "geometry": "voyager", "revision": {"layers": [
	{"title": "Base", "keys": [
		{"tap": {"code": "KC_ESCAPE"}},
		{"tap": {"code": "KC_F"}},
		{"tap": {"code": "KC_SPACE"}, "hold": {"code": "KC_NO", "layer": 1}}
	]}
]}}}`

type fakeSource struct {
	mu   sync.Mutex
	data []byte
	err  error
	hits int
}

func (f *fakeSource) LoadLayout(_ context.Context, prev string) (*layout.KeyboardLayout, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++
	if f.err != nil {
		return nil, "", f.err
	}
	return keymapp.DecodeRevision(f.data, prev)
}

func (f *fakeSource) set(data string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = []byte(data)
	f.err = err
}

func TestNewStartsWithStandard(t *testing.T) {
	s := New(&fakeSource{})
	require.NotNil(t, s.Layout())
	assert.Equal(t, geometry.Standard, s.Layout().Geometry)
	assert.Equal(t, uint64(1), s.Version())
	assert.Equal(t, OriginStandard, s.Status().Origin)
}

func TestReloadFromSource(t *testing.T) {
	src := &fakeSource{}
	src.set(voyagerDoc, nil)
	s := New(src)

	st := s.Reload(context.Background())
	assert.Equal(t, OriginKeymapp, st.Origin)
	assert.Equal(t, "Daily", st.Title)
	assert.Equal(t, geometry.Voyager, st.Geometry)
	assert.True(t, st.Changed)
	assert.Equal(t, uint64(2), st.Version)
	assert.Empty(t, st.Reason)

	assert.Equal(t, sequence.HighlightMap{2: {1}, 1: {2, 3}}, s.Resolve("<leader>ff"))
	assert.Equal(t, "Esc (left pinky)", s.Explain("<esc>"))
	assert.Len(t, s.Describe(), 3)
}

func TestReloadSkipsIdenticalDocument(t *testing.T) {
	src := &fakeSource{}
	src.set(voyagerDoc, nil)
	s := New(src)

	first := s.Reload(context.Background())
	layoutBefore := s.Layout()

	second := s.Reload(context.Background())
	assert.False(t, second.Changed)
	assert.Equal(t, first.Version, second.Version)
	assert.Same(t, layoutBefore, s.Layout())
	assert.Equal(t, 2, src.hits)
}

func TestReloadFallsBack(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  error
	}{
		{"load error", "", errors.New("database is locked")},
		{"missing geometry", `{"layout": {"revision": {"layers": []}}}`, nil},
		{"not json", `nope`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			src.set(voyagerDoc, nil)
			s := New(src)
			s.Reload(context.Background())
			require.Equal(t, geometry.Voyager, s.Layout().Geometry)

			src.set(tt.data, tt.err)
			st := s.Reload(context.Background())
			assert.Equal(t, OriginStandard, st.Origin)
			assert.True(t, st.Changed)
			assert.NotEmpty(t, st.Reason)
			assert.Equal(t, uint64(3), st.Version)
			assert.Equal(t, geometry.Standard, s.Layout().Geometry)

			// Already on the fallback: nothing is republished.
			st = s.Reload(context.Background())
			assert.False(t, st.Changed)
			assert.Equal(t, uint64(3), s.Version())
		})
	}
}

func TestReloadRecordsMetrics(t *testing.T) {
	m := metrics.NewLayout(metrics.NewRegistry("test"))
	src := &fakeSource{}
	src.set(voyagerDoc, nil)
	s := New(src, WithMetrics(m))

	s.Reload(context.Background())
	s.Reload(context.Background())
	assert.Equal(t, uint64(2), m.Reloads.Value())
	assert.Equal(t, uint64(1), m.Unchanged.Value())
	assert.Equal(t, int64(2), m.Version.Value())
	assert.Equal(t, int64(1), m.Keymapp.Value())
	assert.Equal(t, uint64(2), m.ReloadDuration.Count())

	src.set("", errors.New("gone"))
	s.Reload(context.Background())
	assert.Equal(t, uint64(1), m.Fallbacks.Value())
	assert.Equal(t, int64(0), m.Keymapp.Value())
	assert.Equal(t, int64(3), m.Version.Value())

	s.Resolve("gg")
	assert.Equal(t, uint64(1), m.Resolves.Value())
}

func TestReloadWithoutSource(t *testing.T) {
	s := New(nil)
	st := s.Reload(context.Background())
	assert.Equal(t, OriginStandard, st.Origin)
	assert.False(t, st.Changed)
	assert.Equal(t, "no layout source configured", st.Reason)
}

func TestConcurrentReadsDuringReload(t *testing.T) {
	src := &fakeSource{}
	s := New(src)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				l := s.Layout()
				if l.Geometry == geometry.Standard {
					assert.Len(t, l.Layers[0].Keys, 61)
				} else {
					assert.Len(t, l.Layers[0].Keys, 3)
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			src.set(voyagerDoc, nil)
		} else {
			src.set("", errors.New("gone"))
		}
		s.Reload(context.Background())
	}
	close(stop)
	wg.Wait()
}

func TestRunReloadsOnDatabaseChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymapp.sqlite3")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE revision (data TEXT)`)
	require.NoError(t, err)

	s := New(keymapp.NewSource(path), WithWatch(keymapp.WatchPaths(path), 50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return s.Status().Reason != ""
	}, 2*time.Second, 10*time.Millisecond, "initial reload should fall back on an empty table")

	_, err = db.Exec(`INSERT INTO revision (data) VALUES (?)`, voyagerDoc)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.Layout().Geometry == geometry.Voyager
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, OriginKeymapp, s.Status().Origin)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
