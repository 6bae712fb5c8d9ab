package screen

import "github.com/javanhut/termcore/cell"

// orderPositions returns (a, b) in row-major order.
func orderPositions(a, b cell.CursorPos) (cell.CursorPos, cell.CursorPos) {
	if a.Row > b.Row || (a.Row == b.Row && a.Column > b.Column) {
		return b, a
	}
	return a, b
}

func (b *ScreenBuffer) setSelectedRange(selected bool) {
	if b.selection == nil {
		return
	}
	start, end := orderPositions(b.selection.start, b.selection.end)
	if start == end {
		return
	}
	for row := start.Row; row <= end.Row; row++ {
		line := b.lineForViewportRow(row)
		if line == nil {
			continue
		}
		colStart, colEnd := 0, line.columns()
		if row == start.Row {
			colStart = start.Column
		}
		if row == end.Row {
			colEnd = end.Column
		}
		for col := colStart; col < colEnd; col++ {
			line.setSelected(col, selected)
			line.dirty = true
			if col >= 0 && col < len(line.cells) {
				line.cells[col].dirty = true
			}
		}
	}
}

// SelectionStart collapses any prior selection and anchors a new one at
// (row, column).
func (b *ScreenBuffer) SelectionStart(row, column int) {
	b.setSelectedRange(false)
	b.Flush()
	pos := cell.CursorPos{Row: row, Column: column}
	b.selection = &selectionState{start: pos, end: pos}
}

// SelectionUpdate moves the live endpoint of the selection to (row, column),
// toggling selected bits on the cells that leave or enter the range.
func (b *ScreenBuffer) SelectionUpdate(row, column int) {
	if b.selection == nil {
		return
	}
	b.setSelectedRange(false)
	b.selection.end = cell.CursorPos{Row: row, Column: column}
	b.setSelectedRange(true)
	b.Flush()
}

// SelectionClear drops the current selection, deselecting its cells.
func (b *ScreenBuffer) SelectionClear() {
	if b.selection == nil {
		return
	}
	b.setSelectedRange(false)
	b.selection = nil
	b.Flush()
}

func isWordByte(cp cell.CodePoint) bool {
	return cp != 0 && cp != ' '
}

// SelectionWord expands the selection to the maximal run of non-blank
// cells containing (row, column).
func (b *ScreenBuffer) SelectionWord(row, column int) {
	line := b.lineForViewportRow(row)
	if line == nil {
		return
	}
	if !isWordByte(line.get(column).CodePoint) {
		b.SelectionStart(row, column)
		b.SelectionUpdate(row, column)
		return
	}
	start := column
	for start > 0 && isWordByte(line.get(start-1).CodePoint) {
		start--
	}
	end := column
	for end < line.columns()-1 && isWordByte(line.get(end+1).CodePoint) {
		end++
	}
	b.SelectionStart(row, start)
	b.SelectionUpdate(row, end+1)
}

// SelectedText renders the current selection as plain text, one line per row.
func (b *ScreenBuffer) SelectedText() string {
	if b.selection == nil {
		return ""
	}
	start, end := orderPositions(b.selection.start, b.selection.end)
	if start == end {
		return ""
	}
	var out []byte
	for row := start.Row; row <= end.Row; row++ {
		line := b.lineForViewportRow(row)
		if line == nil {
			continue
		}
		text := line.text()
		colStart, colEnd := 0, len([]rune(text))
		if row == start.Row {
			colStart = start.Column
		}
		if row == end.Row {
			colEnd = end.Column
		}
		runes := []rune(text)
		if colStart < 0 {
			colStart = 0
		}
		if colEnd > len(runes) {
			colEnd = len(runes)
		}
		if colStart < colEnd {
			out = append(out, []byte(string(runes[colStart:colEnd]))...)
		}
		if row != end.Row {
			out = append(out, '\n')
		}
	}
	return string(out)
}
