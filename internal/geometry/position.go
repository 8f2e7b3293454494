package geometry

// Hand is the hand that presses a key.
type Hand int

const (
	Left Hand = iota
	Right
)

func (h Hand) String() string {
	if h == Right {
		return "right"
	}
	return "left"
}

// Finger is the finger that presses a key.
type Finger int

const (
	Pinky Finger = iota
	Ring
	Middle
	Index
	Thumb
)

func (f Finger) String() string {
	switch f {
	case Pinky:
		return "pinky"
	case Ring:
		return "ring"
	case Middle:
		return "middle"
	case Index:
		return "index"
	case Thumb:
		return "thumb"
	default:
		return "unknown"
	}
}

// Row is the physical row a key sits on.
type Row int

const (
	NumberRow Row = iota
	TopRow
	HomeRow
	BottomRow
	FunctionRow
	ThumbCluster
)

func (r Row) String() string {
	switch r {
	case NumberRow:
		return "number row"
	case TopRow:
		return "top row"
	case HomeRow:
		return "home row"
	case BottomRow:
		return "bottom row"
	case FunctionRow:
		return "function row"
	case ThumbCluster:
		return "thumb cluster"
	default:
		return "unknown row"
	}
}

// PhysicalPosition locates one key relative to the typist.
type PhysicalPosition struct {
	Hand   Hand
	Finger Finger
	Row    Row
}

// String renders the position as "left pinky, number row".
func (p PhysicalPosition) String() string {
	return p.Hand.String() + " " + p.Finger.String() + ", " + p.Row.String()
}

// FingerHint renders the short "left index" form used in key explanations.
func (p PhysicalPosition) FingerHint() string {
	return p.Hand.String() + " " + p.Finger.String()
}

// PositionFor returns the physical position of the key at index on g.
// The second result is false when index is outside [0, g.KeyCount()) or g is
// not a supported geometry.
func PositionFor(index int, g Geometry) (PhysicalPosition, bool) {
	table := tables[g]
	if index < 0 || index >= len(table) {
		return PhysicalPosition{}, false
	}
	return table[index], true
}

// Positions returns a copy of the full position table for g in index order.
func Positions(g Geometry) []PhysicalPosition {
	table := tables[g]
	out := make([]PhysicalPosition, len(table))
	copy(out, table)
	return out
}
