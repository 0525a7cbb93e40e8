package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"cubedfm/dashfm"
)

// Styles using ANSI colors 0–15 (follow terminal theme)
var (
	cmdStyle        = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(6))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8))
	boldStyle       = lipgloss.NewStyle().Bold(true)
	infoStyle       = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(14))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(10))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(3))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(1)).Bold(true)
	promptPathStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(12)).Bold(true)
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(10)).Bold(true)

	compSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(14))
	compNormalStyle   = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8))
)

func terminalWidth() int {
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil {
			return w
		}
	}
	return 80
}

// formatCompletionColumns lays out completion labels in terminal-width-aware
// columns, highlighting the item at selectedIdx (or none if -1).
func formatCompletionColumns(labels []string, selectedIdx int) string {
	if len(labels) == 0 {
		return ""
	}

	maxLen := 0
	for _, label := range labels {
		if len(label) > maxLen {
			maxLen = len(label)
		}
	}

	colWidth := maxLen + 2
	numCols := (terminalWidth() - 2) / colWidth
	if numCols < 1 {
		numCols = 1
	}

	var result strings.Builder
	for i, label := range labels {
		if i%numCols == 0 {
			if i > 0 {
				result.WriteString("\n")
			}
			result.WriteString("  ")
		}

		if i == selectedIdx {
			result.WriteString(compSelectedStyle.Render(label))
		} else {
			result.WriteString(compNormalStyle.Render(label))
		}

		if (i+1)%numCols != 0 && i < len(labels)-1 {
			result.WriteString(strings.Repeat(" ", colWidth-len(label)))
		}
	}

	return result.String()
}

// formatServers lists servers as "id  name", marking the selected one
func formatServers(servers []dashfm.Server, selected int) string {
	if len(servers) == 0 {
		return dimStyle.Render("no servers on this account")
	}

	width := 0
	for _, s := range servers {
		if l := len(strconv.Itoa(s.ID)); l > width {
			width = l
		}
	}

	lines := make([]string, len(servers))
	for i, s := range servers {
		id := fmt.Sprintf("%*d", width, s.ID)
		if s.ID == selected {
			lines[i] = selectedStyle.Render("* "+id) + "  " + boldStyle.Render(s.Name)
		} else {
			lines[i] = "  " + dimStyle.Render(id) + "  " + s.Name
		}
	}
	return strings.Join(lines, "\n")
}

// formatHelp returns the help text
func formatHelp() string {
	cmd := func(s string) string { return cmdStyle.Render(s) }
	arg := func(s string) string { return warnStyle.Render(s) }
	dim := func(s string) string { return dimStyle.Render(s) }

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(boldStyle.Render("Session"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %-14s %s\n", cmd("login"), "", "Log in with the configured account")
	fmt.Fprintf(&b, "  %s %-13s %s\n", cmd("logout"), "", "Forget the saved session")
	fmt.Fprintf(&b, "  %s %-12s %s\n", cmd("session"), "", "Show the current session")
	fmt.Fprintf(&b, "  %s %-12s %s\n", cmd("servers"), "", "List servers on the account")
	fmt.Fprintf(&b, "  %s %-13s %s\n", cmd("select"), arg("<id|name>"), "Select the active server")

	b.WriteString("\n")
	b.WriteString(boldStyle.Render("Files"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %-17s %s\n", cmd("cd"), arg("<folder>"), "Change remote folder")
	fmt.Fprintf(&b, "  %s %-16s %s\n", cmd("pwd"), "", "Print remote folder")
	fmt.Fprintf(&b, "  %s %-13s %s\n", cmd("exists"), arg("<folder>"), "Check that a folder exists")
	fmt.Fprintf(&b, "  %s %-14s %s\n", cmd("mkdir"), arg("<name>"), "Create a folder here")
	fmt.Fprintf(&b, "  %s %-14s %s\n", cmd("touch"), arg("<name>"), "Create an empty file here")
	fmt.Fprintf(&b, "  %s %-16s %s\n", cmd("put"), arg("<local> [name]"), "Create a file from a local file")
	fmt.Fprintf(&b, "  %s %-15s %s\n", cmd("edit"), arg("<local> [name]"), "Overwrite a file and reload it")

	b.WriteString("\n")
	b.WriteString(boldStyle.Render("Console"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %-15s %s\n", cmd("send"), arg("<command>"), "Send a console command")
	fmt.Fprintf(&b, "  %s %-12s %s\n", cmd("console"), arg("[lines]"), "Show the console tail (default: 20)")

	b.WriteString("\n")
	b.WriteString(boldStyle.Render("Other"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %-14s %s    %s %s\n", cmd("clear"), "", "Clear screen", cmd("help"), dim("exit/quit"))

	b.WriteString("\n")
	b.WriteString(boldStyle.Render("Keys"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s  %s    %s  %s\n",
		dim("Tab"), "complete (ghost text)",
		dim("Up/Down"), "history")
	fmt.Fprintf(&b, "  %s  %s    %s  %s\n",
		dim("Ctrl+C"), "clear / cancel running command",
		dim("Ctrl+D"), "quit")
	b.WriteString("\n")

	return b.String()
}
