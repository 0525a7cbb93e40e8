package main

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"cubedfm/dashfm"
)

// serverLabel renders a server list entry, marking the selected server
func serverLabel(s dashfm.Server, selected int) string {
	label := fmt.Sprintf("%s [gray](%d)[-]", tview.Escape(s.Name), s.ID)
	if s.ID == selected {
		return "[green::b]*[-:-:-] " + label
	}
	return "  " + label
}

// formatConsole escapes console text for the view, keeps the last lines
// and colours warnings and errors
func formatConsole(text string, lines int) string {
	all := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if lines > 0 && len(all) > lines {
		all = all[len(all)-lines:]
	}

	var b strings.Builder
	for i, line := range all {
		if i > 0 {
			b.WriteString("\n")
		}
		escaped := tview.Escape(line)
		if color := lineColor(line); color != "" {
			b.WriteString("[" + color + "]" + escaped + "[-]")
		} else {
			b.WriteString(escaped)
		}
	}
	return b.String()
}

// lineColor picks the colour of a console line, empty for the default
func lineColor(line string) string {
	switch {
	case strings.Contains(line, "ERROR"),
		strings.Contains(line, "[Skript] Line "),
		strings.Contains(line, "[Skript] Encountered "):
		return "red"
	case strings.Contains(line, "WARN"):
		return "yellow"
	case strings.Contains(line, "[Skript] Successfully reloaded"):
		return "green"
	}
	return ""
}
