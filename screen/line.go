package screen

import "github.com/javanhut/termcore/cell"

// cellState is one column of a Line: the styled rune plus the two overlay
// bits the buffer needs to decide what to redraw and what to invert.
type cellState struct {
	rune     cell.Rune
	dirty    bool
	selected bool
}

// Line is an ordered sequence of styled elements of length columns, each
// carrying per-cell dirty/selected bits plus a line-level dirty flag that
// is the logical OR of the per-cell bits (but may be set independently to
// force a whole-line redraw).
type Line struct {
	cells []cellState
	dirty bool
}

func newLine(columns int) Line {
	cells := make([]cellState, columns)
	for i := range cells {
		cells[i].rune = cell.DefaultRune()
	}
	return Line{cells: cells}
}

func (l *Line) columns() int { return len(l.cells) }

// resize grows or shrinks the line to exactly columns cells, padding with
// default runes and discarding any truncated tail.
func (l *Line) resize(columns int) {
	if len(l.cells) == columns {
		return
	}
	next := make([]cellState, columns)
	for i := range next {
		next[i].rune = cell.DefaultRune()
	}
	copy(next, l.cells)
	l.cells = next
}

func (l *Line) setRune(column int, r cell.Rune) {
	if column < 0 || column >= len(l.cells) {
		return
	}
	l.cells[column].rune = r
	l.cells[column].dirty = true
	l.dirty = true
}

func (l *Line) get(column int) cell.Rune {
	if column < 0 || column >= len(l.cells) {
		return cell.DefaultRune()
	}
	return l.cells[column].rune
}

func (l *Line) clearDirty() {
	l.dirty = false
	for i := range l.cells {
		l.cells[i].dirty = false
	}
}

func (l *Line) markDirty() {
	l.dirty = true
	for i := range l.cells {
		l.cells[i].dirty = true
	}
}

func (l *Line) setSelected(column int, selected bool) {
	if column < 0 || column >= len(l.cells) {
		return
	}
	l.cells[column].selected = selected
}

func (l *Line) text() string {
	runes := make([]rune, 0, len(l.cells))
	for _, c := range l.cells {
		if c.rune.CodePoint == 0 {
			runes = append(runes, ' ')
			continue
		}
		runes = append(runes, rune(c.rune.CodePoint))
	}
	// trim trailing spaces
	end := len(runes)
	for end > 0 && runes[end-1] == ' ' {
		end--
	}
	return string(runes[:end])
}

func (l *Line) clone() Line {
	cells := make([]cellState, len(l.cells))
	copy(cells, l.cells)
	return Line{cells: cells, dirty: l.dirty}
}
