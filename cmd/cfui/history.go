package main

import (
	"os"
	"strings"
)

const maxHistoryEntries = 1000

// History keeps entered commands with Up/Down navigation. Lines are
// appended to the history file as they are added.
type History struct {
	lines  []string
	cursor int
	saved  string // Input saved before navigating
	file   string
}

// NewHistory creates a history, loading from file if it exists
func NewHistory(file string) *History {
	h := &History{file: file}
	if data, err := os.ReadFile(file); err == nil && file != "" {
		for _, line := range strings.Split(string(data), "\n") {
			if line != "" {
				h.lines = append(h.lines, line)
			}
		}
		h.trim()
	}
	h.cursor = len(h.lines)
	return h
}

// Add appends a line unless it repeats the previous one
func (h *History) Add(line string) {
	defer h.Reset()
	if line == "" || (len(h.lines) > 0 && h.lines[len(h.lines)-1] == line) {
		return
	}
	h.lines = append(h.lines, line)
	if h.trim() {
		h.rewrite()
		return
	}
	h.appendLine(line)
}

// Up moves to the previous entry, saving the current input on the first step
func (h *History) Up(currentInput string) (string, bool) {
	if h.cursor == 0 {
		return "", false
	}
	if h.cursor == len(h.lines) {
		h.saved = currentInput
	}
	h.cursor--
	return h.lines[h.cursor], true
}

// Down moves to the next entry, ending on the saved input
func (h *History) Down() (string, bool) {
	if h.cursor >= len(h.lines) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.lines) {
		return h.saved, true
	}
	return h.lines[h.cursor], true
}

// Reset moves the cursor past the newest entry
func (h *History) Reset() {
	h.cursor = len(h.lines)
	h.saved = ""
}

// trim drops the oldest entries over the limit, reporting whether it did
func (h *History) trim() bool {
	if len(h.lines) <= maxHistoryEntries {
		return false
	}
	h.lines = h.lines[len(h.lines)-maxHistoryEntries:]
	return true
}

func (h *History) appendLine(line string) {
	if h.file == "" {
		return
	}
	f, err := os.OpenFile(h.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(line + "\n")
}

func (h *History) rewrite() {
	if h.file == "" {
		return
	}
	os.WriteFile(h.file, []byte(strings.Join(h.lines, "\n")+"\n"), 0600)
}
