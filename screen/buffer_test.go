package screen

import (
	"testing"

	"github.com/javanhut/termcore/cell"
	"github.com/javanhut/termcore/decoder"
)

func collectDraws(fn func(sink func(DrawAction))) []DrawAction {
	var draws []DrawAction
	fn(func(d DrawAction) { draws = append(draws, d) })
	return draws
}

func applyText(t *testing.T, b *ScreenBuffer, d *decoder.Decoder, s string) {
	t.Helper()
	d.Decode([]byte(s), func(a decoder.Action) { b.Apply(a) })
}

func TestPlainTextWritesCellsAndMovesCursor(t *testing.T) {
	var draws []DrawAction
	b := New(24, 80, func(d DrawAction) { draws = append(draws, d) })
	d := decoder.New()
	applyText(t, b, d, "hi")

	if got := b.GetCell(0, 0).CodePoint; got != 'h' {
		t.Errorf("cell(0,0) = %q, want 'h'", got)
	}
	if got := b.GetCell(0, 1).CodePoint; got != 'i' {
		t.Errorf("cell(0,1) = %q, want 'i'", got)
	}
	if b.Cursor() != (cell.CursorPos{Row: 0, Column: 2}) {
		t.Errorf("cursor = %+v, want (0,2)", b.Cursor())
	}
	_ = draws
}

func TestCursorNeverLeavesBounds(t *testing.T) {
	b := New(5, 10, func(DrawAction) {})
	d := decoder.New()
	// move far left/up past origin, then far right/down past the edges.
	applyText(t, b, d, "\x1b[100D\x1b[100A")
	if c := b.Cursor(); c.Row < 0 || c.Row >= 5 || c.Column < 0 || c.Column >= 10 {
		t.Fatalf("cursor escaped bounds: %+v", c)
	}
	applyText(t, b, d, "\x1b[100C\x1b[100B")
	if c := b.Cursor(); c.Row < 0 || c.Row >= 5 || c.Column < 0 || c.Column >= 10 {
		t.Fatalf("cursor escaped bounds: %+v", c)
	}
}

func TestScrollOnOverflowPreservesTopRows(t *testing.T) {
	b := New(3, 10, func(DrawAction) {})
	d := decoder.New()
	applyText(t, b, d, "one\r\ntwo\r\nthree\r\nfour")
	// four lines of content in a 3-row buffer: "one" must have
	// scrolled into scrollback, and the bottom row holds the most recent line.
	if got := b.content[2].text(); got != "four" {
		t.Errorf("bottom row = %q, want %q", got, "four")
	}
	if len(b.scrollback) == 0 {
		t.Errorf("expected scrolled lines to be retained in scrollback")
	}
}

func TestSelectionStartThenUpdateSameCoordinatesSelectsNothing(t *testing.T) {
	b := New(10, 20, func(DrawAction) {})
	b.SelectionStart(2, 5)
	b.SelectionUpdate(2, 5)
	line := &b.content[2]
	for col, cs := range line.cells {
		if cs.selected {
			t.Fatalf("cell (2,%d) unexpectedly selected after zero-length selection", col)
		}
	}
}

func TestSelectionUpdateSelectsOrderedRange(t *testing.T) {
	b := New(10, 20, func(DrawAction) {})
	b.SelectionStart(0, 5)
	b.SelectionUpdate(0, 2)
	line := &b.content[0]
	for col := 2; col < 5; col++ {
		if !line.cells[col].selected {
			t.Errorf("expected column %d selected", col)
		}
	}
	if line.cells[5].selected {
		t.Errorf("column 5 should be excluded (half-open range)")
	}
}

func TestFlushEmitsDirtyCellsThenFlushAction(t *testing.T) {
	b := New(4, 4, func(DrawAction) {})
	var draws []DrawAction
	b2 := New(4, 4, func(d DrawAction) { draws = append(draws, d) })
	d := decoder.New()
	applyText(t, b2, d, "a")
	b2.Flush()
	_ = b

	var sawRunes, sawFlush bool
	for _, dr := range draws {
		if dr.Type == DrawRunes {
			sawRunes = true
		}
		if dr.Type == DrawFlush {
			sawFlush = true
		}
	}
	if !sawRunes || !sawFlush {
		t.Fatalf("expected Runes and Flush draw actions, got %+v", draws)
	}
}

func TestClearScreenEmitsClearScreenDrawAction(t *testing.T) {
	draws := collectDraws(func(sink func(DrawAction)) {
		b := New(3, 3, sink)
		d := decoder.New()
		applyText(t, b, d, "\x1b[2J")
	})
	found := false
	for _, dr := range draws {
		if dr.Type == DrawClearScreen {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a ClearScreen draw action, got %+v", draws)
	}
}

func TestResizeTruncatesAndPads(t *testing.T) {
	b := New(5, 5, func(DrawAction) {})
	d := decoder.New()
	applyText(t, b, d, "hello")
	b.Resize(3, 8)
	if b.Rows() != 3 || b.Columns() != 8 {
		t.Fatalf("resize did not update dimensions: rows=%d cols=%d", b.Rows(), b.Columns())
	}
	if got := b.GetCell(0, 0).CodePoint; got != 'h' {
		t.Errorf("expected surviving row content after resize, got %q", got)
	}
}

func TestSetScrollRegionStoresHalfOpenRange(t *testing.T) {
	b := New(5, 10, func(DrawAction) {})
	d := decoder.New()
	applyText(t, b, d, "\x1b[2;4r")
	top := b.scrollRegionTop
	bottom := b.scrollRegionBottom
	if top != 1 || bottom != 4 {
		t.Fatalf("scroll region = [%d,%d), want [1,4)", top, bottom)
	}
}
