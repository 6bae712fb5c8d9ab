// Package screen implements the two-dimensional grid of styled cells that
// backs a terminal viewport: cursor discipline, scroll regions, scrollback,
// dirty-region tracking, selection, and the flush algorithm that turns
// pending mutations into a DrawAction stream for a display backend.
package screen

import (
	"github.com/javanhut/termcore/cell"
	"github.com/javanhut/termcore/decoder"
)

// maxScrollback bounds how many lines are retained once they scroll off
// the top of the visible region.
const maxScrollback = 10000

type selectionState struct {
	start, end cell.CursorPos
}

// ScreenBuffer is the primary entity of the core: a grid of Lines plus
// cursor, active drawing attribute, scroll region, scrollback, viewport
// offset and selection state. It owns no goroutines; the orchestrator is
// responsible for serializing access to a single goroutine.
type ScreenBuffer struct {
	rows, columns int

	cursor    cell.CursorPos
	attribute cell.Attribute

	scrollRegionTop    int
	scrollRegionBottom int
	scrollBuffer       int

	content    []Line
	scrollback []Line

	viewportOffset int
	selection      *selectionState

	sink func(DrawAction)
}

// New constructs a ScreenBuffer of the given size with fresh blank lines.
// sink receives every DrawAction the buffer emits; it must not block.
func New(rows, columns int, sink func(DrawAction)) *ScreenBuffer {
	content := make([]Line, rows)
	for i := range content {
		content[i] = newLine(columns)
	}
	return &ScreenBuffer{
		rows:               rows,
		columns:            columns,
		attribute:          cell.DefaultAttribute(),
		scrollRegionTop:    0,
		scrollRegionBottom: rows,
		content:            content,
		sink:               sink,
	}
}

func (b *ScreenBuffer) Rows() int    { return b.rows }
func (b *ScreenBuffer) Columns() int { return b.columns }
func (b *ScreenBuffer) Cursor() cell.CursorPos { return b.cursor }

// GetCell returns the rune currently at buffer coordinates (row, column),
// ignoring viewport offset. Out-of-bounds coordinates return a default rune.
func (b *ScreenBuffer) GetCell(row, column int) cell.Rune {
	if row < 0 || row >= b.rows {
		return cell.DefaultRune()
	}
	return b.content[row].get(column)
}

// Apply dispatches a decoder Action to the buffer. Response actions are not
// applied; their payload is returned so the orchestrator can write it
// directly to the pty master.
func (b *ScreenBuffer) Apply(a decoder.Action) []byte {
	switch a.Type {
	case decoder.ActionTypeCodePoint:
		b.typeRune(a.CodePoint)
	case decoder.ActionInsert:
		b.insert(a.Amount)
	case decoder.ActionDelete:
		b.delete(a.Amount)
	case decoder.ActionErase:
		b.erase(a.Amount)
	case decoder.ActionNewLine:
		b.newLine()
	case decoder.ActionCarriageReturn:
		b.carriageReturn()
	case decoder.ActionInsertLines:
		b.insertLines(a.Amount)
	case decoder.ActionDeleteLines:
		b.deleteLines(a.Amount)
	case decoder.ActionCursorMove:
		switch a.Direction {
		case decoder.Up:
			b.cursorUp(a.Amount)
		case decoder.Down:
			b.cursorDown(a.Amount)
		case decoder.Left:
			b.cursorLeft(a.Amount)
		case decoder.Right:
			b.cursorRight(a.Amount)
		}
	case decoder.ActionCursorSet:
		b.cursorSet(a.Row, a.Column)
	case decoder.ActionCursorSetRow:
		b.cursorSetRow(a.Row)
	case decoder.ActionCursorSetColumn:
		b.cursorSetColumn(a.Column)
	case decoder.ActionClearFromCursor:
		switch a.Direction {
		case decoder.Right:
			b.clearFromCursorRight()
		case decoder.Left:
			b.clearFromCursorLeft()
		case decoder.Down:
			b.clearFromCursorDown()
		case decoder.Up:
			b.clearFromCursorUp()
		}
	case decoder.ActionClearLine:
		b.clearWholeLine()
	case decoder.ActionClearScreen:
		b.clearWholeScreen()
	case decoder.ActionSetScrollRegion:
		b.setScrollRegion(a.Top, a.Bottom)
	case decoder.ActionFill:
		b.fill(a.CodePoint)
	case decoder.ActionSetColor:
		b.setColor(a.ColorSlot, a.Color)
	case decoder.ActionColorInvert:
		b.colorInvert()
	case decoder.ActionResponse:
		return a.Message
	}
	return nil
}

/* cursor discipline */

func (b *ScreenBuffer) cursorCheckMove() {
	row := b.cursor.Row
	if row >= b.scrollRegionBottom {
		b.scroll(b.scrollRegionBottom - row - 1)
	}
	if row < b.scrollRegionTop-1 {
		b.scroll(b.scrollRegionTop - row)
	}
	b.cursor = b.cursor.Clamp(b.columns, b.rows)
}

func (b *ScreenBuffer) cursorMove(dr, dc int) {
	b.cursor = b.cursor.MoveBy(dr, dc)
	b.cursorCheckMove()
}

func (b *ScreenBuffer) cursorSet(row, column int) {
	b.cursor = b.cursor.MoveTo(row, column)
	b.cursorCheckMove()
}

func (b *ScreenBuffer) cursorSetRow(row int)    { b.cursorSet(row, b.cursor.Column) }
func (b *ScreenBuffer) cursorSetColumn(col int) { b.cursorSet(b.cursor.Row, col) }

func (b *ScreenBuffer) cursorLeft(n int)  { b.cursorMove(0, -n) }
func (b *ScreenBuffer) cursorRight(n int) { b.cursorMove(0, n) }
func (b *ScreenBuffer) cursorUp(n int)    { b.cursorMove(-n, 0) }
func (b *ScreenBuffer) cursorDown(n int)  { b.cursorMove(n, 0) }

/* writing */

func (b *ScreenBuffer) outOfBounds(pos cell.CursorPos) bool {
	return pos.Row < 0 || pos.Row >= b.rows || pos.Column < 0 || pos.Column >= b.columns
}

func (b *ScreenBuffer) setRuneAt(pos cell.CursorPos, r cell.Rune) {
	if b.outOfBounds(pos) {
		return
	}
	b.content[pos.Row].setRune(pos.Column, r)
}

func (b *ScreenBuffer) typeRune(cp cell.CodePoint) {
	pos := b.cursor
	b.setRuneAt(pos, cell.Rune{CodePoint: cp, Attribute: b.attribute})
	b.cursorMove(0, 1)
}

func (b *ScreenBuffer) fill(cp cell.CodePoint) {
	r := cell.Rune{CodePoint: cp, Attribute: cell.DefaultAttribute()}
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.columns; col++ {
			b.setRuneAt(cell.CursorPos{Row: row, Column: col}, r)
		}
	}
}

func (b *ScreenBuffer) insert(n int) {
	if n <= 0 || b.cursor.Row < 0 || b.cursor.Row >= b.rows {
		return
	}
	line := &b.content[b.cursor.Row]
	start := b.cursor.Column
	for col := b.columns - 1; col >= start+n; col-- {
		line.setRune(col, line.get(col-n))
	}
}

func (b *ScreenBuffer) delete(n int) {
	if n <= 0 || b.cursor.Row < 0 || b.cursor.Row >= b.rows {
		return
	}
	line := &b.content[b.cursor.Row]
	start := b.cursor.Column
	blank := cell.Rune{CodePoint: 0, Attribute: b.attribute}
	for col := start; col < b.columns; col++ {
		src := col + n
		if src < b.columns {
			line.setRune(col, line.get(src))
		} else {
			line.setRune(col, blank)
		}
	}
}

func (b *ScreenBuffer) erase(n int) {
	if b.cursor.Row < 0 || b.cursor.Row >= b.rows {
		return
	}
	start := b.cursor.Column
	end := start + n
	if end > b.columns {
		end = b.columns
	}
	blank := cell.Rune{CodePoint: ' ', Attribute: b.attribute}
	for col := start; col < end; col++ {
		b.content[b.cursor.Row].setRune(col, blank)
	}
}

/* clearing */

func (b *ScreenBuffer) clearLineRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > b.columns {
		end = b.columns
	}
	if start >= end || b.cursor.Row < 0 || b.cursor.Row >= b.rows {
		return
	}
	blank := cell.Rune{CodePoint: ' ', Attribute: b.attribute}
	row := b.cursor.Row
	for col := start; col < end; col++ {
		b.content[row].setRune(col, blank)
	}
	b.sink(drawClear(b.attribute, row, start, end-start, 1))
}

func (b *ScreenBuffer) clearBlockRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > b.rows {
		end = b.rows
	}
	if start >= end {
		return
	}
	blank := cell.Rune{CodePoint: ' ', Attribute: b.attribute}
	for row := start; row < end; row++ {
		for col := 0; col < b.columns; col++ {
			b.content[row].setRune(col, blank)
		}
	}
	b.sink(drawClear(b.attribute, start, 0, b.columns, end-start))
}

func (b *ScreenBuffer) clearFromCursorRight() { b.clearLineRange(b.cursor.Column, b.columns) }
func (b *ScreenBuffer) clearFromCursorLeft()  { b.clearLineRange(0, b.cursor.Column) }
func (b *ScreenBuffer) clearWholeLine()       { b.clearLineRange(0, b.columns) }

func (b *ScreenBuffer) clearFromCursorDown() {
	b.clearFromCursorRight()
	b.clearBlockRange(b.cursor.Row+1, b.rows)
}
func (b *ScreenBuffer) clearFromCursorUp() {
	b.clearFromCursorLeft()
	b.clearBlockRange(0, b.cursor.Row)
}

func (b *ScreenBuffer) clearWholeScreen() {
	blank := cell.Rune{CodePoint: ' ', Attribute: b.attribute}
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.columns; col++ {
			b.content[row].setRune(col, blank)
		}
	}
	b.sink(drawClearScreen())
}

/* scrolling */

func (b *ScreenBuffer) scrollUp(amount, top, bottom int) {
	if amount > bottom-top {
		amount = bottom - top
	}
	startRow := top + amount
	for row := bottom - 1; row >= startRow; row-- {
		b.content[row] = b.content[row-amount].clone()
	}
	for row := top; row < startRow; row++ {
		b.content[row] = newLine(b.columns)
	}
}

func (b *ScreenBuffer) scrollDown(amount, top, bottom int) {
	if amount > bottom-top {
		amount = bottom - top
	}
	endRow := bottom - amount

	for row := top; row < top+amount; row++ {
		b.scrollback = append(b.scrollback, b.content[row].clone())
	}
	if over := len(b.scrollback) - maxScrollback; over > 0 {
		b.scrollback = b.scrollback[over:]
	}

	for row := top; row < endRow; row++ {
		b.content[row] = b.content[row+amount].clone()
	}
	for row := endRow; row < bottom; row++ {
		b.content[row] = newLine(b.columns)
	}
}

func (b *ScreenBuffer) flushScrollBuffer() {
	if b.scrollBuffer != 0 {
		b.sink(drawScroll(b.scrollBuffer, b.scrollRegionTop, b.scrollRegionBottom))
		b.scrollBuffer = 0
	}
}

// scrollInBounds performs the line mutation for scrolling [top,bottom) by
// amount, then either coalesces the emitted Scroll into scrollBuffer (when
// the region is the buffer's whole current scroll region) or emits it
// immediately for a sub-region scroll (InsertLines/DeleteLines).
func (b *ScreenBuffer) scrollInBounds(amount, top, bottom int) {
	if amount < 0 {
		b.scrollDown(-amount, top, bottom)
	} else if amount > 0 {
		b.scrollUp(amount, top, bottom)
	}

	if top == b.scrollRegionTop && bottom == b.scrollRegionBottom {
		b.scrollBuffer += amount
	} else {
		b.flushScrollBuffer()
		b.sink(drawScroll(amount, top, bottom))
	}

	b.cursorMove(amount, 0)
}

func (b *ScreenBuffer) scroll(amount int) {
	b.scrollInBounds(amount, b.scrollRegionTop, b.scrollRegionBottom)
}

func (b *ScreenBuffer) insertLines(n int) { b.scrollInBounds(n, b.cursor.Row, b.scrollRegionBottom) }
func (b *ScreenBuffer) deleteLines(n int) { b.scrollInBounds(-n, b.cursor.Row, b.scrollRegionBottom) }

func (b *ScreenBuffer) newLine() {
	b.cursorMove(1, 0)
	b.cursor = b.cursor.CarriageReturn()
}
func (b *ScreenBuffer) carriageReturn() { b.cursor = b.cursor.CarriageReturn() }

func (b *ScreenBuffer) setScrollRegion(top, bottom *int) {
	b.flushScrollBuffer()
	if top != nil && bottom != nil {
		b.scrollRegionTop = *top
		b.scrollRegionBottom = *bottom
	} else {
		b.scrollRegionTop = 0
		b.scrollRegionBottom = b.rows
	}
}

/* colors */

func (b *ScreenBuffer) setColor(which cell.ColorSlot, c cell.Color) {
	*b.attribute.Slot(which) = c
}
func (b *ScreenBuffer) colorInvert() { b.attribute = b.attribute.Inverted() }

/* resize */

// Resize grows or shrinks the buffer to new_rows x new_cols, discarding any
// truncated tail and padding with fresh blank lines, then redraws.
func (b *ScreenBuffer) Resize(rows, columns int) {
	if rows == b.rows && columns == b.columns {
		b.redraw()
		return
	}
	next := make([]Line, rows)
	for i := range next {
		if i < len(b.content) {
			next[i] = b.content[i]
			next[i].resize(columns)
		} else {
			next[i] = newLine(columns)
		}
	}
	b.content = next
	b.rows = rows
	b.columns = columns
	b.scrollRegionTop = 0
	b.scrollRegionBottom = rows
	b.cursor = b.cursor.Clamp(columns, rows)
	b.redraw()
}

func (b *ScreenBuffer) redraw() {
	for i := range b.content {
		b.content[i].markDirty()
	}
	b.Flush()
}

/* viewport & scrollback */

// lineForViewportRow maps a viewport row to its backing Line, resolving
// into scrollback from the tail when the mapped buffer row is negative.
func (b *ScreenBuffer) lineForViewportRow(vrow int) *Line {
	bufRow := vrow - b.viewportOffset
	if bufRow >= 0 {
		if bufRow < len(b.content) {
			return &b.content[bufRow]
		}
		return nil
	}
	idx := len(b.scrollback) + bufRow
	if idx < 0 || idx >= len(b.scrollback) {
		return nil
	}
	line := &b.scrollback[idx]
	line.resize(b.columns)
	return line
}

// ScrollViewport moves the viewport by amount (positive = further into
// history) and redraws the affected rows.
func (b *ScreenBuffer) ScrollViewport(amount int) {
	if amount == 0 {
		return
	}
	if b.selection != nil {
		b.selection.start.Row += amount
		b.selection.end.Row += amount
	}

	b.viewportOffset += amount
	if b.viewportOffset < 0 {
		b.viewportOffset = 0
	}
	if max := len(b.scrollback); b.viewportOffset > max {
		b.viewportOffset = max
	}

	if amount > b.rows || -amount > b.rows {
		b.redraw()
		return
	}

	b.sink(drawScroll(amount, 0, b.rows))
	if amount > 0 {
		for row := 0; row < amount; row++ {
			if line := b.lineForViewportRow(row); line != nil {
				line.markDirty()
			}
		}
	} else {
		for row := b.rows + amount; row < b.rows; row++ {
			if line := b.lineForViewportRow(row); line != nil {
				line.markDirty()
			}
		}
	}
	b.Flush()
}

// ResetViewport returns to the live view.
func (b *ScreenBuffer) ResetViewport() {
	if b.viewportOffset == 0 {
		return
	}
	b.viewportOffset = 0
	b.sink(drawResetViewport())
	b.redraw()
}

/* dirty tracking & flush */

// Flush drains pending mutations into the DrawAction stream: any coalesced
// Scroll first, then one Runes batch per dirty line, then the inverted
// cursor cell bracketing a Flush so a redraw always leaves the grid in a
// consistent, non-inverted state.
func (b *ScreenBuffer) Flush() {
	b.flushScrollBuffer()

	for vrow := 0; vrow < b.rows; vrow++ {
		line := b.lineForViewportRow(vrow)
		if line == nil || !line.dirty {
			continue
		}
		var batch []PositionedRune
		for col := range line.cells {
			cs := &line.cells[col]
			if !cs.dirty {
				continue
			}
			r := cs.rune
			if cs.selected {
				r.Attribute = r.Attribute.Inverted()
			}
			batch = append(batch, PositionedRune{Rune: r, Pos: cell.CursorPos{Row: vrow, Column: col}})
		}
		line.clearDirty()
		if len(batch) > 0 {
			b.sink(drawRunes(batch))
		}
	}

	if b.viewportOffset == 0 {
		if cursorLine := b.lineForViewportRow(b.cursor.Row); cursorLine != nil {
			r := cursorLine.get(b.cursor.Column)
			inverted := r
			inverted.Attribute = inverted.Attribute.Inverted()
			b.sink(drawRunes([]PositionedRune{{Rune: inverted, Pos: b.cursor}}))
			b.sink(drawFlush())
			b.sink(drawRunes([]PositionedRune{{Rune: r, Pos: b.cursor}}))
			return
		}
	}
	b.sink(drawFlush())
}

// Close emits the terminal DrawClose action.
func (b *ScreenBuffer) Close() { b.sink(drawClose()) }
