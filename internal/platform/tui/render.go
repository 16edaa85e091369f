package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/engine"
	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/grid"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a screen buffer to a styled string. Adjacent cells
// with the same color render as one run to keep escape sequences down.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// drawSession paints a full play frame: the status line, then either the
// level grid, a pending message, or the completion banner.
func drawSession(scr *core.Screen, s *engine.Session, title, flash string) {
	scr.Clear()
	def := s.Game()

	status := fmt.Sprintf(" %s  level %d/%d  turns %d", title, s.Level()+1, len(def.Levels), s.Turns())
	scr.DrawText(0, 0, status, core.ColorBrightWhite)
	if flash != "" {
		scr.DrawText(scr.Width()-len([]rune(flash))-1, 0, flash, core.ColorBrightGreen)
	}

	if s.Status() == engine.StatusComplete {
		drawBanner(scr, def.Title+" complete", "every level solved")
		return
	}
	if msg, ok := s.MessageScreen(); ok {
		drawMessage(scr, msg)
		return
	}
	drawGrid(scr, def, s.Grid())
}

// drawGrid centers the level in the space below the status line, topmost
// object per cell.
func drawGrid(scr *core.Screen, def *gamedef.Game, g *grid.Grid) {
	if g == nil {
		return
	}
	ox := (scr.Width() - g.Width()) / 2
	oy := 1 + (scr.Height()-1-g.Height())/2
	if ox < 0 {
		ox = 0
	}
	if oy < 1 {
		oy = 1
	}

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			obj, ok := g.Top(core.Position{X: x, Y: y})
			if !ok {
				continue
			}
			o := def.Objects[obj]
			if o.Glyph == 0 {
				continue
			}
			scr.SetCell(ox+x, oy+y, core.ScreenCell{Rune: o.Glyph, Color: o.Color})
		}
	}
}

// drawMessage shows a message screen: the wrapped text in a box with the
// dismissal hint underneath.
func drawMessage(scr *core.Screen, text string) {
	boxW := scr.Width() * 2 / 3
	if boxW < 20 {
		boxW = scr.Width() - 2
	}
	lines := wrapText(text, boxW-4)

	boxH := len(lines) + 4
	bx := (scr.Width() - boxW) / 2
	by := (scr.Height() - boxH) / 2
	if bx < 0 {
		bx = 0
	}
	if by < 1 {
		by = 1
	}

	scr.DrawBox(bx, by, boxW, boxH, core.ColorWhite)
	for i, line := range lines {
		x := bx + (boxW-len([]rune(line)))/2
		scr.DrawText(x, by+2+i, line, core.ColorBrightWhite)
	}
	scr.DrawTextCentered(by+boxH, "press x to continue", core.ColorGray)
}

// drawBanner shows the end-of-game screen.
func drawBanner(scr *core.Screen, head, sub string) {
	y := scr.Height() / 2
	scr.DrawTextCentered(y-1, head, core.ColorBrightYellow)
	scr.DrawTextCentered(y+1, sub, core.ColorGray)
	scr.DrawTextCentered(y+3, "press q to leave", core.ColorGray)
}

// wrapText breaks text into lines no wider than w runes, on word
// boundaries where possible.
func wrapText(text string, w int) []string {
	if w < 1 {
		w = 1
	}
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len([]rune(line))+1+len([]rune(word)) <= w:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
