package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Palette. ANSI 256 codes, readable on dark and light terminals.
var (
	colorTeal  = lipgloss.Color("36")
	colorCyan  = lipgloss.Color("51")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	StyleDim   = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFail    = lipgloss.NewStyle().Foreground(colorRed)
	styleNote    = lipgloss.NewStyle().Foreground(colorGray)
	styleSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// status prints "<icon> <message>" to stdout.
func status(icon string, style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(stdout(), style.Render(icon)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status("✓", styleOK, format, args...) }
func printError(format string, args ...any)   { status("✗", styleFail, format, args...) }
func printInfo(format string, args ...any)    { status("›", styleNote, format, args...) }

// printDetail prints an indented dim line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout(), "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written file.
func printFile(path string) {
	fmt.Fprintln(stdout(), "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// stage is one pipeline step in a stats line. A zero took with cached
// false prints "fresh".
type stage struct {
	name   string
	cached bool
	took   time.Duration
}

// printStats prints the diagram size and how each stage was served:
//
//	5 nodes · 4 edges · layout cached · render 12ms
func printStats(nodes, edges int, stages ...stage) {
	sep := StyleDim.Render(" · ")
	var b strings.Builder
	fmt.Fprintf(&b, "  %s%s%s", StyleDim.Render(fmt.Sprintf("%d nodes", nodes)), sep, StyleDim.Render(fmt.Sprintf("%d edges", edges)))
	for _, s := range stages {
		how := styleNote.Render("fresh")
		if s.cached {
			how = styleOK.Render("cached")
		} else if s.took > 0 {
			how = styleNote.Render(s.took.Round(time.Millisecond).String())
		}
		b.WriteString(sep + StyleDim.Render(s.name) + " " + how)
	}
	fmt.Fprintln(stdout(), b.String())
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout(), StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout()) }
