package geometry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		id       string
		expected Geometry
		hasError bool
	}{
		{"moonlander", Moonlander, false},
		{"voyager", Voyager, false},
		{"ergodox-ez", ErgodoxEZ, false},
		{"standard", Standard, false},
		{"Moonlander", 0, true},
		{"ergodox", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			g, err := Parse(tt.id)
			if tt.hasError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownGeometry))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, g)
			assert.Equal(t, tt.id, g.String())
		})
	}
}

func TestGeometryAttributes(t *testing.T) {
	tests := []struct {
		g       Geometry
		keys    int
		name    string
		isSplit bool
	}{
		{Moonlander, 72, "Moonlander", true},
		{Voyager, 52, "Voyager", true},
		{ErgodoxEZ, 76, "ErgoDox EZ", true},
		{Standard, 61, "Standard", false},
	}

	for _, tt := range tests {
		t.Run(tt.g.String(), func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.g.KeyCount())
			assert.Equal(t, tt.name, tt.g.DisplayName())
			assert.Equal(t, tt.isSplit, tt.g.IsSplit())
			assert.True(t, tt.g.Valid())
		})
	}

	assert.False(t, Geometry(0).Valid())
	assert.Equal(t, 0, Geometry(99).KeyCount())
}

func TestPositionForCoversKeyCount(t *testing.T) {
	for _, g := range All {
		t.Run(g.String(), func(t *testing.T) {
			for i := 0; i < g.KeyCount(); i++ {
				_, ok := PositionFor(i, g)
				assert.True(t, ok, "index %d", i)
			}
			for _, i := range []int{-100, -1, g.KeyCount(), g.KeyCount() + 1, 1 << 20} {
				_, ok := PositionFor(i, g)
				assert.False(t, ok, "index %d", i)
			}
		})
	}
}

func TestPositionForUnknownGeometry(t *testing.T) {
	_, ok := PositionFor(0, Geometry(0))
	assert.False(t, ok)
	assert.Empty(t, Positions(Geometry(42)))
}

func TestThumbClusterSizes(t *testing.T) {
	tests := []struct {
		g       Geometry
		perHand int
	}{
		{Moonlander, 3},
		{Voyager, 2},
		{ErgodoxEZ, 5},
		{Standard, 0},
	}

	for _, tt := range tests {
		t.Run(tt.g.String(), func(t *testing.T) {
			cluster := map[Hand]int{}
			for _, p := range Positions(tt.g) {
				if p.Row == ThumbCluster {
					assert.Equal(t, Thumb, p.Finger)
					cluster[p.Hand]++
				}
			}
			assert.Equal(t, tt.perHand, cluster[Left])
			assert.Equal(t, tt.perHand, cluster[Right])
		})
	}
}

func TestSplitHalvesAreMirrored(t *testing.T) {
	for _, g := range []Geometry{Moonlander, Voyager, ErgodoxEZ} {
		t.Run(g.String(), func(t *testing.T) {
			positions := Positions(g)
			half := len(positions) / 2
			require.Equal(t, g.KeyCount(), 2*half)
			for i := 0; i < half; i++ {
				l, r := positions[i], positions[half+i]
				assert.Equal(t, Left, l.Hand, "index %d", i)
				assert.Equal(t, Right, r.Hand, "index %d", half+i)
				assert.Equal(t, l.Finger, r.Finger, "index %d", i)
				assert.Equal(t, l.Row, r.Row, "index %d", i)
			}
		})
	}
}

func TestMoonlanderBanding(t *testing.T) {
	expect := map[int]PhysicalPosition{
		0:  {Left, Pinky, NumberRow},
		1:  {Left, Pinky, NumberRow},
		2:  {Left, Ring, NumberRow},
		3:  {Left, Middle, NumberRow},
		6:  {Left, Index, NumberRow},
		14: {Left, Pinky, HomeRow},
		28: {Left, Pinky, FunctionRow},
		32: {Left, Index, FunctionRow},
		33: {Left, Thumb, ThumbCluster},
		35: {Left, Thumb, ThumbCluster},
		36: {Right, Pinky, NumberRow},
		71: {Right, Thumb, ThumbCluster},
	}
	for i, want := range expect {
		got, ok := PositionFor(i, Moonlander)
		require.True(t, ok)
		assert.Equal(t, want, got, "index %d", i)
	}
}

func TestVoyagerBanding(t *testing.T) {
	expect := map[int]PhysicalPosition{
		0:  {Left, Pinky, NumberRow},
		1:  {Left, Ring, NumberRow},
		2:  {Left, Middle, NumberRow},
		5:  {Left, Index, NumberRow},
		23: {Left, Index, BottomRow},
		24: {Left, Thumb, ThumbCluster},
		26: {Right, Pinky, NumberRow},
		51: {Right, Thumb, ThumbCluster},
	}
	for i, want := range expect {
		got, ok := PositionFor(i, Voyager)
		require.True(t, ok)
		assert.Equal(t, want, got, "index %d", i)
	}
}

func TestStandardTable(t *testing.T) {
	expect := map[int]PhysicalPosition{
		0:  {Left, Pinky, NumberRow},  // Esc
		7:  {Right, Index, NumberRow}, // 7
		13: {Right, Pinky, NumberRow}, // Bksp
		19: {Left, Index, TopRow},     // T
		20: {Right, Index, TopRow},    // Y
		33: {Left, Index, HomeRow},    // G
		40: {Right, Pinky, HomeRow},   // Enter
		41: {Left, Pinky, BottomRow},  // LShift
		52: {Right, Pinky, BottomRow}, // RShift
		55: {Left, Thumb, BottomRow},  // LCmd
		56: {Left, Thumb, BottomRow},  // Space
		57: {Right, Thumb, BottomRow}, // RCmd
		60: {Right, Pinky, BottomRow}, // Right
	}
	for i, want := range expect {
		got, ok := PositionFor(i, Standard)
		require.True(t, ok)
		assert.Equal(t, want, got, "index %d", i)
	}
}

func TestSegmentsCoverIndices(t *testing.T) {
	for _, g := range All {
		t.Run(g.String(), func(t *testing.T) {
			next := 0
			for _, s := range Segments(g) {
				assert.Equal(t, next, s.Start)
				for i := s.Start; i < s.Start+s.Count; i++ {
					p, ok := PositionFor(i, g)
					require.True(t, ok)
					assert.Equal(t, s.Hand, p.Hand)
					assert.Equal(t, s.Row, p.Row)
				}
				next += s.Count
			}
			assert.Equal(t, g.KeyCount(), next)
		})
	}
}

func TestPositionString(t *testing.T) {
	p := PhysicalPosition{Hand: Left, Finger: Pinky, Row: NumberRow}
	assert.Equal(t, "left pinky, number row", p.String())
	assert.Equal(t, "left pinky", p.FingerHint())

	p = PhysicalPosition{Hand: Right, Finger: Thumb, Row: ThumbCluster}
	assert.Equal(t, "right thumb, thumb cluster", p.String())
}

func TestGeometryText(t *testing.T) {
	text, err := Voyager.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "voyager", string(text))

	var g Geometry
	require.NoError(t, g.UnmarshalText([]byte("ergodox-ez")))
	assert.Equal(t, ErgodoxEZ, g)

	assert.Error(t, g.UnmarshalText([]byte("planck")))
	_, err = Geometry(0).MarshalText()
	assert.Error(t, err)
}
