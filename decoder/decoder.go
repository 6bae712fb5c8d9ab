// Package decoder implements the byte-oriented ANSI/VT state machine that
// turns a pty output stream into a sequence of Actions. All state persists
// across calls to Decode so a multi-byte UTF-8 sequence or an escape
// sequence may be split arbitrarily across reads.
package decoder

import (
	"log"

	"github.com/javanhut/termcore/cell"
)

type state int

const (
	stateAscii state = iota
	stateUtf8OneLeft
	stateUtf8TwoLeft
	stateUtf8ThreeLeft
	stateEscape
	statePrivate
	stateArgument
	stateCommand
	stateCommandBody
	stateBracket
	stateHash
)

// Decoder is the persistent state of the escape-sequence state machine.
// The zero value is a Decoder in the initial Ascii state; New returns one.
type Decoder struct {
	// Debug gates logging of unknown escapes and invalid UTF-8, per the
	// ambient logging policy; off by default so a fresh Decoder is quiet.
	Debug bool

	state state

	buffer    []byte
	currRune  uint32
	reconsume bool
	pendingC  byte

	isPrivate bool
	args      []int
	command   byte
}

// New returns a Decoder in its initial Ascii state.
func New() *Decoder {
	return &Decoder{}
}

func (d *Decoder) logf(format string, args ...any) {
	if d.Debug {
		log.Printf(format, args...)
	}
}

// Decode consumes bytes and invokes sink with zero or more Actions. It
// never panics on malformed input; invalid sequences are logged and
// dropped per the error-handling policy.
func (d *Decoder) Decode(data []byte, sink func(Action)) {
	i := 0
	for {
		var c byte
		if !d.reconsume {
			if i >= len(data) {
				break
			}
			c = data[i]
			i++
		} else {
			c = d.pendingC
		}
		d.reconsume = false

		switch d.state {
		case stateAscii:
			d.stepAscii(c, sink)
		case stateUtf8OneLeft:
			d.stepUtf8Continuation(c, sink, 0, stateAscii)
		case stateUtf8TwoLeft:
			d.stepUtf8Continuation(c, sink, 6, stateUtf8OneLeft)
		case stateUtf8ThreeLeft:
			d.stepUtf8Continuation(c, sink, 12, stateUtf8TwoLeft)
		case stateEscape:
			d.stepEscape(c, sink)
		case statePrivate:
			d.stepPrivate(c)
		case stateArgument:
			d.stepArgument(c, sink)
		case stateCommand:
			d.stepCommand(c)
		case stateCommandBody:
			d.stepCommandBody(c)
		case stateBracket:
			d.stepBracket(c)
		case stateHash:
			d.stepHash(c, sink)
		}
	}
}

func (d *Decoder) reconsumeAs(c byte, next state) {
	d.state = next
	d.reconsume = true
	d.pendingC = c
}

func (d *Decoder) stepAscii(c byte, sink func(Action)) {
	switch {
	case c&0b11100000 == 0b11000000:
		d.currRune = uint32(c&0b00011111) << 6
		d.state = stateUtf8OneLeft
	case c&0b11110000 == 0b11100000:
		d.currRune = uint32(c&0b00001111) << 12
		d.state = stateUtf8TwoLeft
	case c&0b11111000 == 0b11110000:
		d.currRune = uint32(c&0b00000111) << 18
		d.state = stateUtf8ThreeLeft
	default:
		switch c {
		case 0x0A:
			sink(NewLine())
		case 0x0D:
			sink(CarriageReturn())
		case 0x07:
			// bell, ignored
		case 0x08:
			sink(CursorMove(Left, 1))
		case 0x1B:
			d.state = stateEscape
		default:
			sink(TypeCodePoint(cell.CodePoint(c)))
		}
	}
}

// stepUtf8Continuation folds six bits of a continuation byte into currRune
// at the given shift, then either advances to next or, on the final
// continuation byte (next == stateAscii), emits the assembled code point.
func (d *Decoder) stepUtf8Continuation(c byte, sink func(Action), shift uint, next state) {
	if c&0b11000000 != 0b10000000 {
		d.logf("decoder: invalid UTF-8 continuation byte %#x", c)
		d.reconsumeAs(c, stateAscii)
		return
	}
	d.currRune |= uint32(c&0b00111111) << shift
	if next == stateAscii {
		sink(TypeCodePoint(cell.CodePoint(d.currRune)))
	}
	d.state = next
}

func (d *Decoder) stepEscape(c byte, sink func(Action)) {
	switch c {
	case '[':
		d.state = statePrivate
	case ']':
		d.state = stateCommand
	case '(':
		d.state = stateBracket
	case '#':
		d.state = stateHash
	default:
		d.state = stateAscii
		d.command = c
		d.finishSingleCharCode(sink)
	}
}

func (d *Decoder) stepPrivate(c byte) {
	if c == '?' {
		d.isPrivate = true
	} else {
		d.isPrivate = false
		d.reconsume = true
		d.pendingC = c
	}
	d.state = stateArgument
}

func (d *Decoder) stepArgument(c byte, sink func(Action)) {
	switch {
	case c >= '0' && c <= '9':
		d.buffer = append(d.buffer, c)
	case c == ';':
		d.finishArgument()
	case c == ' ':
		// ignored
	case c == 0x1B:
		d.reconsumeAs(c, stateAscii)
	default:
		d.state = stateAscii
		d.command = c
		d.finishArgument()
		d.finishEscape(sink)
	}
}

func (d *Decoder) stepCommand(c byte) {
	switch {
	case c >= '0' && c <= '9':
		d.buffer = append(d.buffer, c)
	case c == 0x07:
		d.finishArgument()
		d.finishCommand()
		d.state = stateAscii
	case c == ';':
		d.finishArgument()
		d.state = stateCommandBody
	default:
		// Malformed OSC introducer; tolerate and bail to Ascii rather
		// than abort the stream.
		d.logf("decoder: malformed OSC introducer byte %#x", c)
		d.buffer = d.buffer[:0]
		d.args = d.args[:0]
		d.state = stateAscii
	}
}

func (d *Decoder) stepCommandBody(c byte) {
	if c == 0x07 {
		d.finishCommand()
		d.state = stateAscii
		return
	}
	d.buffer = append(d.buffer, c)
}

func (d *Decoder) stepBracket(c byte) {
	// Charset selection is tolerated and ignored.
	d.state = stateAscii
	d.command = 0
	_ = c
}

func (d *Decoder) stepHash(c byte, sink func(Action)) {
	d.state = stateAscii
	d.command = c
	if c == '8' {
		sink(Fill('E'))
	} else {
		d.logf("decoder: unknown hash escape %q", c)
	}
	d.command = 0
}

func (d *Decoder) finishArgument() {
	if len(d.buffer) == 0 {
		return
	}
	n := 0
	for _, b := range d.buffer {
		n = n*10 + int(b-'0')
	}
	d.args = append(d.args, n)
	d.buffer = d.buffer[:0]
}

func (d *Decoder) finishCommand() {
	d.buffer = d.buffer[:0]
	d.args = d.args[:0]
}

func def(args []int, fallback int) int {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func defOrZero(args []int, fallback int) int {
	v := def(args, fallback)
	if v == 0 {
		return fallback
	}
	return v
}

func (d *Decoder) finishEscape(sink func(Action)) {
	args := d.args

	switch d.command {
	case 'm':
		decodeSGR(args, sink)

	case 'H', 'f':
		if len(args) == 2 {
			sink(CursorSet(args[0]-1, args[1]-1))
		} else {
			sink(CursorSet(0, 0))
		}

	case 'A':
		sink(CursorMove(Up, defOrZero(args, 1)))
	case 'B':
		sink(CursorMove(Down, defOrZero(args, 1)))
	case 'C':
		sink(CursorMove(Right, defOrZero(args, 1)))
	case 'D':
		sink(CursorMove(Left, defOrZero(args, 1)))

	case 'K':
		switch def(args, 0) {
		case 0:
			sink(ClearFromCursor(Right))
		case 1:
			sink(ClearFromCursor(Left))
		case 2:
			sink(ClearLine())
		case 3:
			// noop
		default:
			d.logf("decoder: unknown K mode %d", def(args, 0))
		}

	case 'J':
		switch def(args, 0) {
		case 0:
			sink(ClearFromCursor(Down))
		case 1:
			sink(ClearFromCursor(Up))
		case 2:
			sink(ClearScreen())
		case 3:
			// noop
		default:
			d.logf("decoder: unknown J mode %d", def(args, 0))
		}

	case 'd':
		sink(CursorSetRow(def(args, 1) - 1))
	case 'G':
		sink(CursorSetColumn(def(args, 1) - 1))

	case '@':
		sink(Insert(def(args, 1)))
	case 'P':
		sink(Delete(def(args, 1)))
	case 'X':
		sink(Erase(def(args, 1)))

	case 'L':
		sink(InsertLines(def(args, 1)))
	case 'M':
		sink(DeleteLines(def(args, 1)))

	case 'r':
		if len(args) == 2 {
			top := args[0] - 1
			bottom := args[1]
			sink(SetScrollRegion(&top, &bottom))
		} else {
			sink(SetScrollRegion(nil, nil))
		}

	case 'c':
		if def(args, 0) == 0 {
			sink(Response([]byte("\x1b[1;2c")))
		}

	default:
		d.logf("decoder: unknown escape %s%v%c", privateMark(d.isPrivate), args, d.command)
	}

	d.isPrivate = false
	d.args = d.args[:0]
	d.command = 0
}

func privateMark(private bool) string {
	if private {
		return "?"
	}
	return ""
}

func (d *Decoder) finishSingleCharCode(sink func(Action)) {
	switch d.command {
	case 'D':
		sink(CursorMove(Down, 1))
	case 'M':
		sink(CursorMove(Up, 1))
	case 'E':
		sink(NewLine())
	default:
		d.logf("decoder: unknown single-char escape %q", d.command)
	}
	d.command = 0
}
