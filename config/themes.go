package config

import "github.com/javanhut/termcore/cell"

// Theme is a named set of background, foreground and accent colors. The
// display clears the window with Background; Foreground and Accent are not
// read by the display.
type Theme struct {
	Name       string
	Label      string
	Background cell.Color
	Foreground cell.Color
	Accent     cell.Color
}

// Themes lists the built-in color themes, keyed by Theme.Name.
func Themes() []Theme {
	return []Theme{
		{Name: "raven-blue", Label: "Raven Blue", Background: 0x10131AFF, Foreground: 0xE5E5E5FF, Accent: 0x3B82F6FF},
		{Name: "crow-black", Label: "Crow Black", Background: 0x000000FF, Foreground: 0xCCCCCCFF, Accent: 0x555555FF},
		{Name: "magpie-black-white-grey", Label: "Magpie Black/White/Grey", Background: 0x1A1A1AFF, Foreground: 0xFFFFFFFF, Accent: 0x888888FF},
		{Name: "catppuccin-mocha", Label: "Catppuccin Mocha", Background: 0x1E1E2EFF, Foreground: 0xCDD6F4FF, Accent: 0x89B4FAFF},
	}
}

// ThemeByName resolves a theme name, falling back to raven-blue.
func ThemeByName(name string) Theme {
	for _, t := range Themes() {
		if t.Name == name {
			return t
		}
	}
	return Themes()[0]
}

// ThemeLabel returns the display label for a theme name, for window-title
// construction.
func ThemeLabel(name string) string {
	return ThemeByName(name).Label
}

