// Command termcore is a GPU-rendered terminal emulator: a pty-backed shell
// session decoded and drawn through the cell/decoder/screen/display stack.
package main

import (
	"log"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/javanhut/termcore/config"
	"github.com/javanhut/termcore/display"
	"github.com/javanhut/termcore/orchestrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("termcore: load config: %v", err)
	}

	const initialRows, initialColumns = 24, 80

	disp, err := display.New(cfg, initialRows, initialColumns)
	if err != nil {
		log.Fatalf("termcore: create display: %v", err)
	}
	defer disp.Destroy()

	fbWidth, fbHeight := disp.Window().GetFramebufferSize()
	rows, columns := disp.GridSize(fbWidth, fbHeight)
	disp.Resize(rows, columns)

	orc, err := orchestrator.New(cfg, disp, rows, columns)
	if err != nil {
		log.Fatalf("termcore: start session: %v", err)
	}

	disp.SetEventSink(orc.SendEvent)
	disp.SetScrollSink(orc.ScrollViewport)

	go func() {
		orc.Run()
		disp.Close()
	}()

	win := disp.Window()
	for !win.ShouldClose() {
		glfw.PollEvents()
		select {
		case <-orc.Done():
			win.SetShouldClose(true)
		default:
		}
	}

	orc.Close()
	<-orc.Done()
}
