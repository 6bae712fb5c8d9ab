// Package orchestrator wires the pty, the decoder and the screen buffer
// together: a pty reader goroutine, a display event source, and a single
// buffer-owning goroutine that serializes both onto the ScreenBuffer.
package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/javanhut/termcore/cell"
	"github.com/javanhut/termcore/config"
	"github.com/javanhut/termcore/decoder"
	"github.com/javanhut/termcore/ptyproc"
	"github.com/javanhut/termcore/screen"
)

// readBufferSize is the fixed-size input buffer the pty reader uses per
// read, chosen well above the 10 KiB floor so bulk output (e.g. cat of a
// large file) batches into few Flushes.
const readBufferSize = 32 * 1024

// Display is the contract a rendering backend must satisfy. DrawAction
// delivery happens by direct method call from the buffer goroutine, which
// is the DrawAction channel's sole consumer; backends must not block.
type Display interface {
	Runes(runes []screen.PositionedRune)
	Clear(attr cell.Attribute, row, column, width, height int)
	Scroll(amount, top, bottom int)
	ClearScreen()
	Flush()
	ResetViewport()
	Close()
}

type msgKind int

const (
	msgResetViewport msgKind = iota
	msgFlush
	msgEvent
	msgAction
	msgClose
	msgQuery
)

type message struct {
	kind   msgKind
	event  Event
	action decoder.Action
	query  func(*screen.ScreenBuffer)
	doneCh chan struct{}
}

// Orchestrator owns the pty process and the screen buffer, and pumps
// events and decoded actions onto the buffer goroutine.
type Orchestrator struct {
	pty     *ptyproc.Process
	display Display
	buffer  *screen.ScreenBuffer
	decoder *decoder.Decoder

	merged chan message
	done   chan struct{}
}

// New starts the child shell and constructs an Orchestrator ready to Run.
func New(cfg *config.Config, display Display, rows, columns int) (*Orchestrator, error) {
	proc, err := ptyproc.Start(cfg, uint16(columns), uint16(rows))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: start pty: %w", err)
	}

	o := &Orchestrator{
		pty:     proc,
		display: display,
		decoder: decoder.New(),
		merged:  make(chan message, 256),
		done:    make(chan struct{}),
	}
	o.buffer = screen.New(rows, columns, o.drawSink)
	return o, nil
}

// drawSink translates a screen.DrawAction into a Display method call. It
// runs on the buffer goroutine, the DrawAction channel's only consumer.
func (o *Orchestrator) drawSink(d screen.DrawAction) {
	switch d.Type {
	case screen.DrawClearScreen:
		o.display.ClearScreen()
	case screen.DrawFlush:
		o.display.Flush()
	case screen.DrawResetViewport:
		o.display.ResetViewport()
	case screen.DrawClose:
		o.display.Close()
	case screen.DrawScroll:
		o.display.Scroll(d.Amount, d.Top, d.Bottom)
	case screen.DrawClear:
		o.display.Clear(d.Attribute, d.Row, d.Column, d.Width, d.Height)
	case screen.DrawRunes:
		o.display.Runes(d.Runes)
	}
}

// SendEvent enqueues a display-originated event for the buffer goroutine.
// Safe to call from the display's own thread.
func (o *Orchestrator) SendEvent(e Event) {
	select {
	case o.merged <- message{kind: msgEvent, event: e}:
	case <-o.done:
	}
}

// Run starts the pty reader and buffer goroutines and blocks until the
// orchestrator shuts down, either because the child exited or the display
// requested a close.
func (o *Orchestrator) Run() {
	go o.readPty()
	o.runBuffer()
}

func (o *Orchestrator) readPty() {
	buf := make([]byte, readBufferSize)
	for {
		n, err := o.pty.Read(buf)
		if n > 0 {
			o.merged <- message{kind: msgResetViewport}
			data := append([]byte(nil), buf[:n]...)
			o.decoder.Decode(data, func(a decoder.Action) {
				o.merged <- message{kind: msgAction, action: a}
			})
			o.merged <- message{kind: msgFlush}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("orchestrator: pty read: %v", err)
			}
			o.logExit()
			o.merged <- message{kind: msgClose}
			return
		}
	}
}

// logExit reports the child shell's exit status, per the process-exit
// notification §6.2 documents. HasExited can be false here if the pty
// master closed before cmd.Wait() observed the child exiting.
func (o *Orchestrator) logExit() {
	if !o.pty.HasExited() {
		return
	}
	if err := o.pty.ExitErr(); err != nil {
		log.Printf("orchestrator: shell exited: %v", err)
	} else {
		log.Printf("orchestrator: shell exited")
	}
}

func (o *Orchestrator) runBuffer() {
	defer close(o.done)
	for msg := range o.merged {
		switch msg.kind {
		case msgResetViewport:
			o.buffer.ResetViewport()
		case msgFlush:
			o.buffer.Flush()
		case msgAction:
			if response := o.buffer.Apply(msg.action); response != nil {
				if _, err := o.pty.Write(response); err != nil {
					log.Printf("orchestrator: write response: %v", err)
				}
			}
		case msgEvent:
			o.applyEvent(msg.event)
		case msgQuery:
			msg.query(o.buffer)
			close(msg.doneCh)
		case msgClose:
			o.buffer.Close()
			o.pty.Close()
			return
		}
	}
}

// runOnBuffer executes fn on the buffer goroutine and waits for it to
// complete, for callers (e.g. a clipboard-copy keybinding) that need a
// synchronous result from the ScreenBuffer.
func (o *Orchestrator) runOnBuffer(fn func(*screen.ScreenBuffer)) {
	doneCh := make(chan struct{})
	select {
	case o.merged <- message{kind: msgQuery, query: fn, doneCh: doneCh}:
		<-doneCh
	case <-o.done:
	}
}

func (o *Orchestrator) applyEvent(e Event) {
	switch e.Type {
	case EventInput:
		if _, err := o.pty.Write(e.Data); err != nil {
			log.Printf("orchestrator: write input: %v", err)
		}
	case EventResize:
		o.buffer.Resize(e.Rows, e.Columns)
		if err := o.pty.Resize(uint16(e.Columns), uint16(e.Rows)); err != nil {
			log.Printf("orchestrator: resize pty: %v", err)
		}
	case EventRedrawRange:
		o.buffer.Flush()
	case EventMouseDown:
		o.buffer.SelectionStart(e.Row, e.Column)
	case EventMouseDrag:
		o.buffer.SelectionUpdate(e.Row, e.Column)
	case EventDoubleClick:
		o.buffer.SelectionWord(e.Row, e.Column)
	}
}

// Close requests an orderly shutdown, as if the display had closed.
func (o *Orchestrator) Close() {
	select {
	case o.merged <- message{kind: msgClose}:
	case <-o.done:
	}
}

// Done is closed once the buffer goroutine has returned.
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// SelectedText returns the current selection's plain-text contents. Safe
// to call from the display thread; it synchronizes with the buffer goroutine.
func (o *Orchestrator) SelectedText() string {
	var text string
	o.runOnBuffer(func(b *screen.ScreenBuffer) { text = b.SelectedText() })
	return text
}

// ScrollViewport scrolls the viewport into scrollback by amount. Safe to
// call from the display thread.
func (o *Orchestrator) ScrollViewport(amount int) {
	o.runOnBuffer(func(b *screen.ScreenBuffer) { b.ScrollViewport(amount) })
}
