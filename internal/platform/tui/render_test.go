package tui

import (
	"strings"
	"testing"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/engine"
	"github.com/rulegrid/rulegrid/internal/gamedef"
)

const pushJSON = `{
  "title": "Push",
  "layers": ["floor", "things"],
  "objects": [
    {"name": "ground", "glyph": ".", "layer": "floor"},
    {"name": "target", "glyph": "O", "layer": "floor"},
    {"name": "wall",   "glyph": "#", "layer": "things"},
    {"name": "player", "glyph": "P", "layer": "things"},
    {"name": "crate",  "glyph": "C", "layer": "things"}
  ],
  "player": "player",
  "background": "ground",
  "rules": [[{
    "direction": "orthogonal",
    "match":   [{"cells": [[{"tile": "player", "move": ">"}], [{"tile": "crate"}]]}],
    "replace": [{"cells": [[{"tile": "player", "move": ">"}], [{"tile": "crate", "move": ">"}]]}]
  }]],
  "win_conditions": [{"qualifier": "all", "tile": "crate", "on": "target"}],
  "levels": [{"map": ["#PC.O#"]}]
}`

const chattyJSON = `{
  "title": "Chatty",
  "layers": ["floor"],
  "objects": [{"name": "dot", "glyph": ".", "layer": "floor"}],
  "levels": [{"message": "the journey begins"}, {"map": ["."]}]
}`

func testSession(t *testing.T, src string) *engine.Session {
	t.Helper()
	def, err := gamedef.Load([]byte(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, err := engine.NewSession(def, 0, 1)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func screenRow(s *core.Screen, y int) string {
	var sb strings.Builder
	for x := 0; x < s.Width(); x++ {
		sb.WriteRune(s.GetCell(x, y).Rune)
	}
	return sb.String()
}

func TestDrawSessionStatusAndGrid(t *testing.T) {
	sess := testSession(t, pushJSON)
	scr := core.NewScreen(80, 24)

	drawSession(scr, sess, "Push", "")

	status := screenRow(scr, 0)
	if !strings.Contains(status, "Push  level 1/1  turns 0") {
		t.Errorf("status row = %q, expected title, level and turn count", status)
	}

	// A 6x1 map on an 80x24 screen centers at column 37, row 12.
	row := screenRow(scr, 12)
	if got := strings.Index(row, "#PC.O#"); got != 37 {
		t.Errorf("level row starts at column %d (%q), expected 37", got, strings.TrimSpace(row))
	}

	if _, err := sess.Step(core.InputRight); err != nil {
		t.Fatalf("Step: %v", err)
	}
	drawSession(scr, sess, "Push", "")
	if status := screenRow(scr, 0); !strings.Contains(status, "turns 1") {
		t.Errorf("status row after a turn = %q, expected turns 1", status)
	}
	if row := screenRow(scr, 12); !strings.Contains(row, "#.PCO#") {
		t.Errorf("level row after pushing = %q, expected the crate moved", strings.TrimSpace(row))
	}
}

func TestDrawSessionFlash(t *testing.T) {
	sess := testSession(t, pushJSON)
	scr := core.NewScreen(80, 24)

	drawSession(scr, sess, "Push", "checkpoint saved")

	status := screenRow(scr, 0)
	if !strings.HasSuffix(strings.TrimRight(status, " "), "checkpoint saved") {
		t.Errorf("status row = %q, expected the flash right-aligned", status)
	}
}

func TestDrawSessionMessage(t *testing.T) {
	sess := testSession(t, chattyJSON)
	scr := core.NewScreen(80, 24)

	drawSession(scr, sess, "Chatty", "")

	out := scr.String()
	if !strings.Contains(out, "the journey begins") {
		t.Error("message text is not on screen")
	}
	if !strings.Contains(out, "press x to continue") {
		t.Error("dismissal hint is not on screen")
	}
	if !strings.Contains(out, "┌") {
		t.Error("message box has no border")
	}
}

func TestDrawSessionBanner(t *testing.T) {
	sess := testSession(t, pushJSON)
	for _, in := range []core.Input{core.InputRight, core.InputRight} {
		if _, err := sess.Step(in); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if sess.Status() != engine.StatusComplete {
		t.Fatalf("Status = %v, expected complete", sess.Status())
	}

	scr := core.NewScreen(80, 24)
	drawSession(scr, sess, "Push", "")

	out := scr.String()
	if !strings.Contains(out, "Push complete") {
		t.Error("completion banner is not on screen")
	}
	if !strings.Contains(out, "every level solved") {
		t.Error("completion subtitle is not on screen")
	}
}

func TestRenderScreenMatchesBuffer(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawText(0, 0, "ab", core.ColorRed)
	s.DrawText(2, 0, "cd", core.ColorBlue)
	s.DrawText(0, 1, "ef", core.ColorDefault)

	got := stripANSI(RenderScreen(s))
	if got != s.String() {
		t.Errorf("RenderScreen = %q, expected the buffer content %q", got, s.String())
	}
	if lines := strings.Split(got, "\n"); len(lines) != 2 {
		t.Errorf("RenderScreen produced %d lines, expected 2", len(lines))
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name string
		text string
		w    int
		want []string
	}{
		{"fits", "hello", 10, []string{"hello"}},
		{"wraps on words", "one two three", 7, []string{"one two", "three"}},
		{"long word alone", "tiny enormousword", 6, []string{"tiny", "enormousword"}},
		{"empty", "", 10, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.w)
			if len(got) != len(tt.want) {
				t.Fatalf("wrapText(%q, %d) = %q, expected %q", tt.text, tt.w, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, expected %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// stripANSI removes escape sequences so rendered output can be compared
// as plain text under any color profile.
func stripANSI(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
