package relayconn

import (
	"fmt"

	"gorm.io/gorm"
)

// Window is an inclusive range of offsets [Start, End] within an ordered
// source. A window with End < Start is empty.
type Window struct {
	Start int
	End   int
}

func NewWindow(start, end int) Window {
	return Window{Start: start, End: end}
}

// Len returns the number of offsets covered by the window. It is never
// negative.
func (w Window) Len() int {
	return max(w.End-w.Start+1, 0)
}

// IsEmpty reports whether the window covers no offsets.
func (w Window) IsEmpty() bool {
	return w.Len() == 0
}

// Clip bounds the window to a source of the given size.
func (w Window) Clip(size int) Window {
	return Window{
		Start: max(w.Start, 0),
		End:   min(w.End, size-1),
	}
}

// Apply applies the window to a gorm query as OFFSET/LIMIT. The caller must
// not apply an empty window: LIMIT 0 is not portable across dialects.
func (w Window) Apply(db *gorm.DB) *gorm.DB {
	if w.Start > 0 {
		db = db.Offset(w.Start)
	}

	return db.Limit(w.Len())
}

// String implements fmt.Stringer.
func (w Window) String() string {
	return fmt.Sprintf("[%d, %d]", w.Start, w.End)
}

var _ fmt.Stringer = Window{}
