package geometry

// segment is a run of keys on one row of one hand. Fingers holds one band
// letter per key in index order: P pinky, R ring, M middle, I index, T thumb.
type segment struct {
	hand    Hand
	row     Row
	fingers string
}

// Split halves list their rows top to bottom, then the function row, then the
// thumb cluster. The right half repeats the left half's banding and follows it
// in index order.

var moonlanderHalf = []segment{
	{row: NumberRow, fingers: "PPRMIII"},
	{row: TopRow, fingers: "PPRMIII"},
	{row: HomeRow, fingers: "PPRMIII"},
	{row: BottomRow, fingers: "PPRMIII"},
	{row: FunctionRow, fingers: "PPRMI"},
	{row: ThumbCluster, fingers: "TTT"},
}

var voyagerHalf = []segment{
	{row: NumberRow, fingers: "PRMIII"},
	{row: TopRow, fingers: "PRMIII"},
	{row: HomeRow, fingers: "PRMIII"},
	{row: BottomRow, fingers: "PRMIII"},
	{row: ThumbCluster, fingers: "TT"},
}

var ergodoxHalf = []segment{
	{row: NumberRow, fingers: "PPRMIII"},
	{row: TopRow, fingers: "PPRMIII"},
	{row: HomeRow, fingers: "PPRMIII"},
	{row: BottomRow, fingers: "PPRMIII"},
	{row: FunctionRow, fingers: "PPRMI"},
	{row: ThumbCluster, fingers: "TTTTT"},
}

// standardRows is the 61-key ANSI board, split between hands at the T/Y
// column. The modifier row is pressed with thumbs around the space bar but
// has no dedicated thumb cluster.
//
//	Esc 1 2 3 4 5 6    | 7 8 9 0 - = Bksp
//	Tab Q W E R T      | Y U I O P [ ] \
//	Caps A S D F G     | H J K L ; ' Enter
//	LShift Z X C V B   | N M , . / RShift
//	LCtrl LAlt LCmd Spc| RCmd RAlt Left Right
var standardRows = []segment{
	{Left, NumberRow, "PPRMIII"}, {Right, NumberRow, "IIMRPPP"},
	{Left, TopRow, "PPRMII"}, {Right, TopRow, "IIMRPPPP"},
	{Left, HomeRow, "PPRMII"}, {Right, HomeRow, "IIMRPPP"},
	{Left, BottomRow, "PPRMII"}, {Right, BottomRow, "IIMRPP"},
	{Left, BottomRow, "PRTT"}, {Right, BottomRow, "TRPP"},
}

var tables = map[Geometry][]PhysicalPosition{
	Moonlander: expand(mirror(moonlanderHalf)),
	Voyager:    expand(mirror(voyagerHalf)),
	ErgodoxEZ:  expand(mirror(ergodoxHalf)),
	Standard:   expand(standardRows),
}

var segments = map[Geometry][]segment{
	Moonlander: mirror(moonlanderHalf),
	Voyager:    mirror(voyagerHalf),
	ErgodoxEZ:  mirror(ergodoxHalf),
	Standard:   standardRows,
}

// mirror returns the left half followed by the same rows for the right hand.
func mirror(half []segment) []segment {
	out := make([]segment, 0, 2*len(half))
	for _, hand := range []Hand{Left, Right} {
		for _, s := range half {
			s.hand = hand
			out = append(out, s)
		}
	}
	return out
}

func expand(segs []segment) []PhysicalPosition {
	var out []PhysicalPosition
	for _, s := range segs {
		for _, band := range s.fingers {
			out = append(out, PhysicalPosition{Hand: s.hand, Finger: fingerBand(band), Row: s.row})
		}
	}
	return out
}

func fingerBand(b rune) Finger {
	switch b {
	case 'P':
		return Pinky
	case 'R':
		return Ring
	case 'M':
		return Middle
	case 'I':
		return Index
	case 'T':
		return Thumb
	default:
		panic("geometry: bad finger band " + string(b))
	}
}

// Segment is a contiguous run of key indices on one row of one hand, in the
// order a renderer lays them out.
type Segment struct {
	Hand  Hand
	Row   Row
	Start int
	Count int
}

// Segments returns the row runs of g in index order. Concatenating the
// ranges covers [0, g.KeyCount()) exactly once.
func Segments(g Geometry) []Segment {
	segs := segments[g]
	out := make([]Segment, 0, len(segs))
	start := 0
	for _, s := range segs {
		n := len(s.fingers)
		out = append(out, Segment{Hand: s.hand, Row: s.row, Start: start, Count: n})
		start += n
	}
	return out
}
