package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mr-games/games"
)

// Colorize applies the given color to the text using lipgloss.
// color is an RGB integer such as 0xec4899.
func Colorize(text string, color int) string {
	hexColor := fmt.Sprintf("#%06x", color)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
	return style.Render(text)
}

// Badge colours per tag.
var tagColors = map[games.Tag]int{
	games.TagHit:   0xec4899, // pink
	games.TagNew:   0x22d3ee, // cyan
	games.TagTop:   0xc084fc, // purple
	games.TagIndie: 0xfacc15, // yellow
}

// TagColor returns the badge colour of a tag and whether it has one.
func TagColor(tag games.Tag) (int, bool) {
	c, ok := tagColors[tag]
	return c, ok
}

// Badge renders a tag as a bracketed coloured label, or "" for no tag.
func Badge(tag games.Tag) string {
	if tag == games.TagNone {
		return ""
	}
	color, ok := tagColors[tag]
	if !ok {
		color = 0xa1a1aa
	}
	return Colorize("["+string(tag)+"]", color)
}

var (
	AccentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a855f7")).Bold(true)
	CyanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22d3ee")).Bold(true)
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	OKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	StarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#facc15")).Bold(true)
	HeartStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ec4899"))

	selectedRowStyle = lipgloss.NewStyle().Background(lipgloss.Color("8")).Bold(true)
	rowStyle         = lipgloss.NewStyle().Padding(0, 1)
)

// Truncate shortens s to maxLen runes, ending with "..." when cut.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen {
		if maxLen <= 3 {
			return string(r[:maxLen])
		}
		return string(r[:maxLen-3]) + "..."
	}
	return s
}

// Pad right-pads s with spaces to width runes.
func Pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
