// Package display implements the GLFW/OpenGL rendering backend: it turns
// the screen package's DrawAction stream into glyph-atlas draw calls, and
// turns GLFW input callbacks into orchestrator Events.
package display

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/javanhut/termcore/cell"
	"github.com/javanhut/termcore/config"
	"github.com/javanhut/termcore/keys"
	"github.com/javanhut/termcore/orchestrator"
	"github.com/javanhut/termcore/screen"
)

const doubleClickInterval = 400 * time.Millisecond

func init() {
	// GLFW requires all its calls to happen on the thread that called Init.
	runtime.LockOSThread()
}

const (
	paddingTop    = 12.0
	paddingBottom = 12.0
)

// Display is the GLFW/OpenGL orchestrator.Display implementation. It keeps
// a CPU-side mirror of the grid so every Flush can repaint the window in
// one pass, the way a pixel terminal's renderer naturally works.
type Display struct {
	win   *glfw.Window
	theme config.Theme

	atlas *fontAtlas

	program               uint32
	quadVAO, quadVBO      uint32
	fontProgram           uint32
	fontVAO, fontVBO      uint32
	colorLoc, projLoc     int32
	texColorLoc, texProjLoc, texLoc int32

	rows, columns int
	cells         [][]cell.Rune
	cursorRow, cursorCol int

	onEvent  func(orchestrator.Event)
	onScroll func(amount int)

	lastClickAt            time.Time
	lastClickRow, lastClickCol int
}

// New creates the window, OpenGL context and font atlas, sized to hold
// rows x columns initially.
func New(cfg *config.Config, rows, columns int) (*Display, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("display: init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHintString(glfw.X11ClassName, "termcore")
	glfw.WindowHintString(glfw.X11InstanceName, "termcore")

	title := "termcore — " + config.ThemeLabel(cfg.Theme)
	win, err := glfw.CreateWindow(900, 600, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("display: create window: %w", err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("display: init opengl: %w", err)
	}
	glfw.SwapInterval(1)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	if icons := windowIcons(); len(icons) > 0 {
		win.SetIcon(icons)
	}

	d := &Display{
		win:   win,
		theme: config.ThemeByName(cfg.Theme),
		rows:  rows,
		columns: columns,
	}

	if err := d.initGL(); err != nil {
		return nil, err
	}

	face, closeFace, err := loadFace(cfg, cfg.Font.Size)
	if err != nil {
		return nil, fmt.Errorf("display: load font: %w", err)
	}
	defer closeFace()

	atlas, err := buildAtlas(face)
	if err != nil {
		return nil, err
	}
	d.atlas = atlas

	d.resizeGrid(rows, columns)
	d.installCallbacks()

	return d, nil
}

func (d *Display) initGL() error {
	var err error
	d.program, err = createProgram(quadVertexShader, quadFragmentShader)
	if err != nil {
		return err
	}
	d.colorLoc = gl.GetUniformLocation(d.program, gl.Str("color\x00"))
	d.projLoc = gl.GetUniformLocation(d.program, gl.Str("projection\x00"))

	d.fontProgram, err = createProgram(textVertexShader, textFragmentShader)
	if err != nil {
		return err
	}
	d.texColorLoc = gl.GetUniformLocation(d.fontProgram, gl.Str("textColor\x00"))
	d.texProjLoc = gl.GetUniformLocation(d.fontProgram, gl.Str("projection\x00"))
	d.texLoc = gl.GetUniformLocation(d.fontProgram, gl.Str("text\x00"))

	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*2*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &d.fontVAO)
	gl.GenBuffers(1, &d.fontVBO)
	gl.BindVertexArray(d.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.fontVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return nil
}

// Resize rebuilds the CPU-side grid mirror to rows x columns, discarding
// its contents. Callers must keep the orchestrator's ScreenBuffer in sync
// by sending a matching orchestrator.ResizeEvent.
func (d *Display) Resize(rows, columns int) { d.resizeGrid(rows, columns) }

func (d *Display) resizeGrid(rows, columns int) {
	cells := make([][]cell.Rune, rows)
	for r := range cells {
		cells[r] = make([]cell.Rune, columns)
		for c := range cells[r] {
			cells[r][c] = cell.DefaultRune()
		}
	}
	d.cells = cells
	d.rows, d.columns = rows, columns
}

// SetEventSink registers where translated GLFW input is delivered.
func (d *Display) SetEventSink(fn func(orchestrator.Event)) { d.onEvent = fn }

// SetScrollSink registers where viewport-scroll requests (Shift+PageUp/Down,
// Shift+Up/Down) are delivered. amount is in lines; positive scrolls back
// into history.
func (d *Display) SetScrollSink(fn func(amount int)) { d.onScroll = fn }

// Window exposes the underlying GLFW window for the main loop driver.
func (d *Display) Window() *glfw.Window { return d.win }

// CellSize returns the current glyph cell size in pixels.
func (d *Display) CellSize() (float32, float32) { return d.atlas.cellWidth, d.atlas.cellHeight }

// GridSize computes how many rows/columns fit a framebuffer of the given
// pixel size at the current font metrics.
func (d *Display) GridSize(width, height int) (rows, columns int) {
	usableHeight := float32(height) - paddingTop - paddingBottom
	rows = int(usableHeight / d.atlas.cellHeight)
	columns = int(float32(width) / d.atlas.cellWidth)
	if rows < 1 {
		rows = 1
	}
	if columns < 1 {
		columns = 1
	}
	return rows, columns
}

/* orchestrator.Display implementation */

func (d *Display) Runes(runes []screen.PositionedRune) {
	for _, pr := range runes {
		if pr.Pos.Row < 0 || pr.Pos.Row >= d.rows || pr.Pos.Column < 0 || pr.Pos.Column >= d.columns {
			continue
		}
		d.cells[pr.Pos.Row][pr.Pos.Column] = pr.Rune
	}
}

func (d *Display) Clear(attr cell.Attribute, row, column, width, height int) {
	blank := cell.Rune{CodePoint: ' ', Attribute: attr}
	for r := row; r < row+height && r < d.rows; r++ {
		if r < 0 {
			continue
		}
		for c := column; c < column+width && c < d.columns; c++ {
			if c < 0 {
				continue
			}
			d.cells[r][c] = blank
		}
	}
}

func (d *Display) Scroll(amount, top, bottom int) {
	if amount == 0 {
		return
	}
	if top < 0 {
		top = 0
	}
	if bottom > d.rows {
		bottom = d.rows
	}
	if amount > 0 {
		for r := bottom - 1; r >= top+amount; r-- {
			d.cells[r] = d.cells[r-amount]
		}
		for r := top; r < top+amount; r++ {
			d.cells[r] = blankRow(d.columns)
		}
	} else {
		n := -amount
		for r := top; r < bottom-n; r++ {
			d.cells[r] = d.cells[r+n]
		}
		for r := bottom - n; r < bottom; r++ {
			d.cells[r] = blankRow(d.columns)
		}
	}
}

func blankRow(columns int) []cell.Rune {
	row := make([]cell.Rune, columns)
	for i := range row {
		row[i] = cell.DefaultRune()
	}
	return row
}

func (d *Display) ClearScreen() {
	for r := range d.cells {
		d.cells[r] = blankRow(d.columns)
	}
}

func (d *Display) Flush() {
	width, height := d.win.GetFramebufferSize()
	gl.Viewport(0, 0, int32(width), int32(height))
	proj := orthoMatrix(0, float32(width), float32(height), 0, -1, 1)

	bg := colorToRGBA(d.theme.Background)
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)

	cellW, cellH := d.atlas.cellWidth, d.atlas.cellHeight
	for row := 0; row < d.rows; row++ {
		y := paddingTop + float32(row+1)*cellH
		for col := 0; col < d.columns; col++ {
			r := d.cells[row][col]
			x := float32(col) * cellW
			if r.Attribute.Background != 0 && r.Attribute.Background != cell.DefaultBackground {
				d.drawRect(x, y-cellH, cellW, cellH, colorToRGBA(r.Attribute.Background), proj)
			}
			if r.CodePoint != 0 && r.CodePoint != ' ' {
				d.drawChar(x, y, rune(r.CodePoint), colorToRGBA(r.Attribute.Foreground), proj)
			}
		}
	}

	d.win.SwapBuffers()
}

func (d *Display) ResetViewport() {}

func (d *Display) Close() {
	d.win.SetShouldClose(true)
}

func (d *Display) Destroy() {
	d.win.Destroy()
	glfw.Terminate()
}

func (d *Display) drawRect(x, y, w, h float32, clr [4]float32, proj [16]float32) {
	vertices := []float32{
		x, y,
		x + w, y,
		x + w, y + h,
		x, y,
		x + w, y + h,
		x, y + h,
	}
	gl.UseProgram(d.program)
	gl.UniformMatrix4fv(d.projLoc, 1, false, &proj[0])
	gl.Uniform4fv(d.colorLoc, 1, &clr[0])
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (d *Display) drawChar(x, y float32, char rune, clr [4]float32, proj [16]float32) {
	g, ok := d.atlas.glyphs[char]
	if !ok {
		g, ok = d.atlas.glyphs['?']
		if !ok {
			return
		}
	}
	w, h := float32(g.PixelWidth), float32(g.PixelHeight)
	tx, ty, tw, th := g.X, g.Y, g.Width, g.Height

	vertices := []float32{
		x, y - h, tx, ty,
		x + w, y - h, tx + tw, ty,
		x + w, y, tx + tw, ty + th,
		x, y - h, tx, ty,
		x + w, y, tx + tw, ty + th,
		x, y, tx, ty + th,
	}
	gl.UseProgram(d.fontProgram)
	gl.UniformMatrix4fv(d.texProjLoc, 1, false, &proj[0])
	gl.Uniform4fv(d.texColorLoc, 1, &clr[0])
	gl.Uniform1i(d.texLoc, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.atlas.texture)
	gl.BindVertexArray(d.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.fontVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func colorToRGBA(c cell.Color) [4]float32 {
	return [4]float32{
		float32((c>>24)&0xFF) / 255,
		float32((c>>16)&0xFF) / 255,
		float32((c>>8)&0xFF) / 255,
		float32(c&0xFF) / 255,
	}
}

/* input callbacks */

func (d *Display) installCallbacks() {
	appCursorMode := false

	d.win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press && action != glfw.Repeat {
			return
		}
		result := keys.Translate(key, mods, appCursorMode)
		switch result.Action {
		case keys.ActionInput:
			if d.onEvent != nil {
				d.onEvent(orchestrator.InputEvent(result.Data))
			}
		case keys.ActionScrollPageUp:
			if d.onScroll != nil {
				d.onScroll(d.rows)
			}
		case keys.ActionScrollPageDown:
			if d.onScroll != nil {
				d.onScroll(-d.rows)
			}
		case keys.ActionScrollLineUp:
			if d.onScroll != nil {
				d.onScroll(1)
			}
		case keys.ActionScrollLineDown:
			if d.onScroll != nil {
				d.onScroll(-1)
			}
		}
	})

	d.win.SetCharCallback(func(w *glfw.Window, char rune) {
		if d.onEvent == nil {
			return
		}
		d.onEvent(orchestrator.InputEvent(keys.TranslateChar(char, 0)))
	})

	d.win.SetSizeCallback(func(w *glfw.Window, width, height int) {
		if d.onEvent == nil {
			return
		}
		fbWidth, fbHeight := w.GetFramebufferSize()
		rows, columns := d.GridSize(fbWidth, fbHeight)
		d.resizeGrid(rows, columns)
		d.onEvent(orchestrator.ResizeEvent(rows, columns, fbWidth, fbHeight))
	})

	d.win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft || action != glfw.Press || d.onEvent == nil {
			return
		}
		x, y := w.GetCursorPos()
		row, col := d.pixelToCell(x, y)

		now := time.Now()
		if !d.lastClickAt.IsZero() && now.Sub(d.lastClickAt) < doubleClickInterval &&
			row == d.lastClickRow && col == d.lastClickCol {
			d.onEvent(orchestrator.DoubleClickEvent(row, col))
			d.lastClickAt = time.Time{}
			return
		}
		d.lastClickAt = now
		d.lastClickRow, d.lastClickCol = row, col
		d.onEvent(orchestrator.MouseDownEvent(row, col))
	})

	d.win.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if d.onEvent == nil || w.GetMouseButton(glfw.MouseButtonLeft) != glfw.Press {
			return
		}
		row, col := d.pixelToCell(x, y)
		d.onEvent(orchestrator.MouseDragEvent(row, col))
	})
}

func (d *Display) pixelToCell(x, y float64) (row, column int) {
	cellW, cellH := d.atlas.cellWidth, d.atlas.cellHeight
	row = int((float32(y) - paddingTop) / cellH)
	column = int(float32(x) / cellW)
	return row, column
}
