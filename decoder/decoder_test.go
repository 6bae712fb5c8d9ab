package decoder

import (
	"testing"

	"github.com/javanhut/termcore/cell"
)

func collect(d *Decoder, data []byte) []Action {
	var actions []Action
	d.Decode(data, func(a Action) { actions = append(actions, a) })
	return actions
}

func TestPlainText(t *testing.T) {
	d := New()
	actions := collect(d, []byte("hi\n"))
	want := []ActionType{ActionTypeCodePoint, ActionTypeCodePoint, ActionNewLine}
	if len(actions) != len(want) {
		t.Fatalf("got %d actions, want %d: %+v", len(actions), len(want), actions)
	}
	for i, a := range actions {
		if a.Type != want[i] {
			t.Errorf("action %d: got %v, want %v", i, a.Type, want[i])
		}
	}
	if actions[0].CodePoint != 'h' || actions[1].CodePoint != 'i' {
		t.Errorf("unexpected code points: %+v", actions[:2])
	}
}

func TestBoldRedReset(t *testing.T) {
	d := New()
	actions := collect(d, []byte("\x1b[31mR\x1b[0mG"))

	var colorSets []Action
	for _, a := range actions {
		if a.Type == ActionSetColor {
			colorSets = append(colorSets, a)
		}
	}
	if len(colorSets) != 3 {
		t.Fatalf("expected 3 SetColor actions (red fg, reset bg, reset fg), got %d: %+v", len(colorSets), colorSets)
	}
	if colorSets[0].ColorSlot != cell.Foreground || colorSets[0].Color != cell.Red {
		t.Errorf("expected foreground=Red first, got %+v", colorSets[0])
	}
}

func Test256ColorCube(t *testing.T) {
	d := New()
	actions := collect(d, []byte("\x1b[38;5;196mX"))

	var found *Action
	for i := range actions {
		if actions[i].Type == ActionSetColor {
			found = &actions[i]
		}
	}
	if found == nil {
		t.Fatal("no SetColor action emitted")
	}
	if found.Color != 0xD4000000 {
		t.Errorf("got color %#08x, want 0xD4000000", uint32(found.Color))
	}
}

func TestUTF8SplitAcrossReads(t *testing.T) {
	d := New()
	var actions []Action
	d.Decode([]byte{0xE2, 0x98}, func(a Action) { actions = append(actions, a) })
	if len(actions) != 0 {
		t.Fatalf("expected no actions from partial sequence, got %+v", actions)
	}
	d.Decode([]byte{0x83}, func(a Action) { actions = append(actions, a) })
	if len(actions) != 1 || actions[0].Type != ActionTypeCodePoint || actions[0].CodePoint != 0x2603 {
		t.Fatalf("expected single TypeCodePoint(0x2603), got %+v", actions)
	}
}

func TestUTF8RoundTrip(t *testing.T) {
	s := "héllo世界\U0001F600"
	for split := 0; split <= len(s); split++ {
		d := New()
		var actions []Action
		d.Decode([]byte(s)[:split], func(a Action) { actions = append(actions, a) })
		d.Decode([]byte(s)[split:], func(a Action) { actions = append(actions, a) })

		var got []rune
		for _, a := range actions {
			if a.Type != ActionTypeCodePoint {
				t.Fatalf("unexpected non-codepoint action at split %d: %+v", split, a)
			}
			got = append(got, rune(a.CodePoint))
		}
		want := []rune(s)
		if len(got) != len(want) {
			t.Fatalf("split %d: got %d code points, want %d", split, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("split %d: code point %d: got %U, want %U", split, i, got[i], want[i])
			}
		}
	}
}

func TestCursorAddressingAndScrollRegion(t *testing.T) {
	d := New()
	actions := collect(d, []byte("\x1b[H"))
	if len(actions) != 1 || actions[0].Type != ActionCursorSet || actions[0].Row != 0 || actions[0].Column != 0 {
		t.Fatalf("unexpected CUP actions: %+v", actions)
	}

	d2 := New()
	actions2 := collect(d2, []byte("\x1b[5;10r"))
	if len(actions2) != 1 || actions2[0].Type != ActionSetScrollRegion {
		t.Fatalf("unexpected DECSTBM actions: %+v", actions2)
	}
	if *actions2[0].Top != 4 || *actions2[0].Bottom != 10 {
		t.Errorf("got top=%d bottom=%d, want top=4 bottom=10", *actions2[0].Top, *actions2[0].Bottom)
	}
}

func TestDeviceAttributesResponse(t *testing.T) {
	d := New()
	actions := collect(d, []byte("\x1b[c"))
	if len(actions) != 1 || actions[0].Type != ActionResponse || string(actions[0].Message) != "\x1b[1;2c" {
		t.Fatalf("unexpected DA response: %+v", actions)
	}
}

func TestOSCIsSwallowed(t *testing.T) {
	d := New()
	actions := collect(d, []byte("\x1b]0;title\x07after"))
	if len(actions) != len("after") {
		t.Fatalf("expected OSC to be swallowed leaving only 'after', got %+v", actions)
	}
}
