package core

// Color is a foreground color for a screen cell, mapped to ANSI 256-color
// codes by the platform layer.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// colorNames maps the color names accepted in game definition files.
var colorNames = map[string]Color{
	"":              ColorDefault,
	"default":       ColorDefault,
	"red":           ColorRed,
	"green":         ColorGreen,
	"yellow":        ColorYellow,
	"blue":          ColorBlue,
	"magenta":       ColorMagenta,
	"purple":        ColorMagenta,
	"cyan":          ColorCyan,
	"white":         ColorWhite,
	"brightred":     ColorBrightRed,
	"brightgreen":   ColorBrightGreen,
	"brightyellow":  ColorBrightYellow,
	"brightblue":    ColorBrightBlue,
	"brightmagenta": ColorBrightMagenta,
	"pink":          ColorBrightMagenta,
	"brightcyan":    ColorBrightCyan,
	"brightwhite":   ColorBrightWhite,
	"orange":        ColorOrange,
	"gray":          ColorGray,
	"grey":          ColorGray,
	"darkgray":      ColorGray,
	"lightgray":     ColorGray,
	"black":         ColorGray,
	"brown":         ColorOrange,
}

// ParseColor resolves a color name from a game definition.
// ok is false for names outside the palette.
func ParseColor(name string) (c Color, ok bool) {
	c, ok = colorNames[name]
	return c, ok
}
