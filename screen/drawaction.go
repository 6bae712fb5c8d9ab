package screen

import "github.com/javanhut/termcore/cell"

// DrawActionType discriminates the DrawAction union emitted to the display.
type DrawActionType int

const (
	DrawClearScreen DrawActionType = iota
	DrawFlush
	DrawResetViewport
	DrawClose
	DrawScroll
	DrawClear
	DrawRunes
)

// PositionedRune pairs a styled rune with the viewport position it belongs at.
type PositionedRune struct {
	Rune cell.Rune
	Pos  cell.CursorPos
}

// DrawAction is a tagged union emitted by the buffer to the display. Only
// the fields relevant to Type are populated.
type DrawAction struct {
	Type DrawActionType

	// Scroll
	Amount, Top, Bottom int

	// Clear
	Attribute             cell.Attribute
	Row, Column           int
	Width, Height         int

	// Runes
	Runes []PositionedRune
}

func drawClearScreen() DrawAction   { return DrawAction{Type: DrawClearScreen} }
func drawFlush() DrawAction         { return DrawAction{Type: DrawFlush} }
func drawResetViewport() DrawAction { return DrawAction{Type: DrawResetViewport} }
func drawClose() DrawAction         { return DrawAction{Type: DrawClose} }

func drawScroll(amount, top, bottom int) DrawAction {
	return DrawAction{Type: DrawScroll, Amount: amount, Top: top, Bottom: bottom}
}

func drawClear(attr cell.Attribute, row, column, width, height int) DrawAction {
	return DrawAction{Type: DrawClear, Attribute: attr, Row: row, Column: column, Width: width, Height: height}
}

func drawRunes(runes []PositionedRune) DrawAction {
	return DrawAction{Type: DrawRunes, Runes: runes}
}
