package decoder

import "github.com/javanhut/termcore/cell"

// decodeSGR interprets a full `CSI ... m` argument list per §4.2.4,
// handling the 256-color (38/48;5;N) extension and falling through to
// per-argument standard/bright decoding otherwise.
func decodeSGR(args []int, sink func(Action)) {
	if len(args) == 0 {
		decodeColorCode(0, sink)
		return
	}
	if (args[0] == 38 || args[0] == 48) && len(args) >= 3 && args[1] == 5 {
		decode256Color(args, sink)
		return
	}
	for _, code := range args {
		decodeColorCode(code, sink)
	}
}

func decode256Color(args []int, sink func(Action)) {
	slot := cell.Foreground
	if args[0] == 48 {
		slot = cell.Background
	}
	code := args[2]

	var color cell.Color
	switch {
	case code <= 7:
		isBackground := slot == cell.Background
		c, ok := cell.StandardColor(code, isBackground)
		if !ok {
			return
		}
		color = c
	case code >= 16 && code <= 231:
		color = cell.CubeColor(code)
	case code >= 232 && code <= 255:
		color = cell.GrayscaleColor(code)
	default:
		return
	}
	sink(SetColor(slot, color))
}

func decodeColorCode(code int, sink func(Action)) {
	switch code {
	case 0:
		sink(SetColor(cell.Background, cell.DefaultBackground))
		sink(SetColor(cell.Foreground, cell.DefaultForeground))
		return
	case 1:
		// bold; documented gap, unmodeled
		return
	case 7, 27:
		sink(ColorInvert())
		return
	}

	slot := cell.Foreground
	if code >= 90 {
		code -= 60
	}
	code -= 30
	if code >= 10 {
		slot = cell.Background
		code -= 10
	}

	isBackground := slot == cell.Background
	color, ok := cell.StandardColor(code, isBackground)
	if !ok {
		return
	}
	sink(SetColor(slot, color))
}
