package decoder

import "github.com/javanhut/termcore/cell"

// Direction is a cursor-movement or clear-from-cursor direction.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// ActionType discriminates the Action union.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionTypeCodePoint
	ActionInsert
	ActionDelete
	ActionErase
	ActionNewLine
	ActionCarriageReturn
	ActionInsertLines
	ActionDeleteLines
	ActionCursorMove
	ActionCursorSet
	ActionCursorSetRow
	ActionCursorSetColumn
	ActionClearFromCursor
	ActionClearLine
	ActionClearScreen
	ActionSetScrollRegion
	ActionFill
	ActionSetColor
	ActionColorInvert
	ActionResponse
)

// Action is a tagged union emitted by the decoder and consumed by the
// screen buffer. Only the fields relevant to ActionType are populated.
type Action struct {
	Type ActionType

	CodePoint cell.CodePoint
	Amount    int

	Direction Direction

	Row    int
	Column int

	Top    *int
	Bottom *int

	ColorSlot cell.ColorSlot
	Color     cell.Color

	Message []byte
}

func TypeCodePoint(cp cell.CodePoint) Action {
	return Action{Type: ActionTypeCodePoint, CodePoint: cp}
}
func Insert(n int) Action { return Action{Type: ActionInsert, Amount: n} }
func Delete(n int) Action { return Action{Type: ActionDelete, Amount: n} }
func Erase(n int) Action  { return Action{Type: ActionErase, Amount: n} }

func NewLine() Action       { return Action{Type: ActionNewLine} }
func CarriageReturn() Action { return Action{Type: ActionCarriageReturn} }
func InsertLines(n int) Action { return Action{Type: ActionInsertLines, Amount: n} }
func DeleteLines(n int) Action { return Action{Type: ActionDeleteLines, Amount: n} }

func CursorMove(dir Direction, n int) Action {
	return Action{Type: ActionCursorMove, Direction: dir, Amount: n}
}
func CursorSet(row, column int) Action {
	return Action{Type: ActionCursorSet, Row: row, Column: column}
}
func CursorSetRow(row int) Action       { return Action{Type: ActionCursorSetRow, Row: row} }
func CursorSetColumn(column int) Action { return Action{Type: ActionCursorSetColumn, Column: column} }

func ClearFromCursor(dir Direction) Action { return Action{Type: ActionClearFromCursor, Direction: dir} }
func ClearLine() Action                    { return Action{Type: ActionClearLine} }
func ClearScreen() Action                  { return Action{Type: ActionClearScreen} }

func SetScrollRegion(top, bottom *int) Action {
	return Action{Type: ActionSetScrollRegion, Top: top, Bottom: bottom}
}
func Fill(cp cell.CodePoint) Action { return Action{Type: ActionFill, CodePoint: cp} }

func SetColor(slot cell.ColorSlot, c cell.Color) Action {
	return Action{Type: ActionSetColor, ColorSlot: slot, Color: c}
}
func ColorInvert() Action { return Action{Type: ActionColorInvert} }

func Response(message []byte) Action { return Action{Type: ActionResponse, Message: message} }
