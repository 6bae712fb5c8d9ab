// Package keys translates GLFW key events into the byte sequences the pty
// expects, per the wire protocol's key-encoding contract.
package keys

import "github.com/go-gl/glfw/v3.3/glfw"

// Action is what a key press should do to the terminal session, beyond
// forwarding bytes to the child process.
type Action int

const (
	ActionNone Action = iota
	ActionInput
	ActionScrollPageUp
	ActionScrollPageDown
	ActionScrollLineUp
	ActionScrollLineDown
)

// Result is the outcome of translating one key event.
type Result struct {
	Action Action
	Data   []byte
}

var functionKeys = map[glfw.Key][]byte{
	glfw.KeyF1:  []byte("\x1bOP"),
	glfw.KeyF2:  []byte("\x1bOQ"),
	glfw.KeyF3:  []byte("\x1bOR"),
	glfw.KeyF4:  []byte("\x1bOS"),
	glfw.KeyF5:  []byte("\x1b[15~"),
	glfw.KeyF6:  []byte("\x1b[17~"),
	glfw.KeyF7:  []byte("\x1b[18~"),
	glfw.KeyF8:  []byte("\x1b[19~"),
	glfw.KeyF9:  []byte("\x1b[20~"),
	glfw.KeyF10: []byte("\x1b[21~"),
	glfw.KeyF11: []byte("\x1b[23~"),
	glfw.KeyF12: []byte("\x1b[24~"),
}

// Translate converts a GLFW key press into a Result. appCursorMode selects
// between normal-mode (CSI) and application-mode (SS3) arrow-key sequences.
func Translate(key glfw.Key, mods glfw.ModifierKey, appCursorMode bool) Result {
	ctrl := mods&glfw.ModControl != 0
	shift := mods&glfw.ModShift != 0
	alt := mods&glfw.ModAlt != 0

	if shift && key == glfw.KeyPageUp {
		return Result{Action: ActionScrollPageUp}
	}
	if shift && key == glfw.KeyPageDown {
		return Result{Action: ActionScrollPageDown}
	}
	if shift && key == glfw.KeyUp {
		return Result{Action: ActionScrollLineUp}
	}
	if shift && key == glfw.KeyDown {
		return Result{Action: ActionScrollLineDown}
	}

	switch key {
	case glfw.KeyUp:
		return input(arrowSeq("A", appCursorMode))
	case glfw.KeyDown:
		return input(arrowSeq("B", appCursorMode))
	case glfw.KeyRight:
		return input(arrowSeq("C", appCursorMode))
	case glfw.KeyLeft:
		return input(arrowSeq("D", appCursorMode))
	case glfw.KeyHome:
		return input([]byte("\x1b[H"))
	case glfw.KeyEnd:
		return input([]byte("\x1b[F"))
	case glfw.KeyPageUp:
		return input([]byte("\x1b[5~"))
	case glfw.KeyPageDown:
		return input([]byte("\x1b[6~"))
	case glfw.KeyInsert:
		return input([]byte("\x1b[2~"))
	case glfw.KeyDelete:
		return input([]byte("\x1b[3~"))
	case glfw.KeyBackspace:
		return input([]byte{0x08})
	case glfw.KeyEnter, glfw.KeyKPEnter:
		return input([]byte{'\n'})
	case glfw.KeyTab:
		if shift {
			return input([]byte("\x1b[Z"))
		}
		return input([]byte{'\t'})
	case glfw.KeyEscape:
		return input([]byte{0x1b})
	}

	if seq, ok := functionKeys[key]; ok {
		return input(seq)
	}

	if ctrl && key >= glfw.KeyA && key <= glfw.KeyZ {
		return input([]byte{byte(key - glfw.KeyA + 1)})
	}

	if key == glfw.KeySpace {
		if ctrl {
			return input([]byte{0})
		}
		// Printable space arrives through the char callback.
		return Result{Action: ActionNone}
	}

	if alt && key >= glfw.KeyA && key <= glfw.KeyZ {
		c := byte(key - glfw.KeyA + 'a')
		if shift {
			c = byte(key - glfw.KeyA + 'A')
		}
		return input([]byte{0x1b, c})
	}

	return Result{Action: ActionNone}
}

func input(data []byte) Result { return Result{Action: ActionInput, Data: data} }

func arrowSeq(letter string, appCursorMode bool) []byte {
	if appCursorMode {
		return []byte("\x1bO" + letter)
	}
	return []byte("\x1b[" + letter)
}

// TranslateChar converts a typed character (from GLFW's char callback)
// into the UTF-8 bytes to send, honoring Alt's ESC-prefix convention.
func TranslateChar(char rune, mods glfw.ModifierKey) []byte {
	if mods&glfw.ModAlt != 0 {
		buf := make([]byte, 1, 5)
		buf[0] = 0x1b
		return append(buf, []byte(string(char))...)
	}
	return []byte(string(char))
}
