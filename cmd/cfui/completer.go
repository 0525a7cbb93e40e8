package main

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// all commands for command-position completion
var allCommands = []string{
	"login", "logout", "session", "servers", "select",
	"cd", "pwd", "exists", "mkdir", "touch", "put", "edit",
	"send", "console", "clear", "help", "exit", "quit",
}

// commands whose first argument is a local file
var localCommands = map[string]bool{"put": true, "edit": true}

// computeSuggestions returns full-line suggestions for the textinput.
// Each suggestion is a complete line that replaces the entire input.
func computeSuggestions(nav *Navigator, line string) []string {
	words := strings.Fields(line)

	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(line, " ")) {
		prefix := ""
		if len(words) == 1 {
			prefix = words[0]
		}
		var suggestions []string
		for _, cmd := range allCommands {
			if strings.HasPrefix(cmd, prefix) && cmd != prefix {
				suggestions = append(suggestions, cmd)
			}
		}
		return suggestions
	}

	cmd := words[0]
	partial := ""
	if !strings.HasSuffix(line, " ") {
		partial = words[len(words)-1]
	}
	argIndex := len(words) - 1
	if partial == "" {
		argIndex = len(words)
	}
	if argIndex != 1 {
		return nil
	}

	var candidates []string
	switch {
	case localCommands[cmd]:
		candidates = completeLocal(partial)
	case cmd == "select":
		for _, s := range nav.servers {
			candidates = append(candidates, strconv.Itoa(s.ID))
			if !strings.Contains(s.Name, " ") {
				candidates = append(candidates, s.Name)
			}
		}
	case cmd == "console":
		candidates = []string{"10", "20", "50", "100"}
	case cmd == "cd" || cmd == "exists":
		candidates = []string{"..", "/"}
	}

	var suggestions []string
	for _, c := range candidates {
		if strings.HasPrefix(c, partial) && c != partial {
			suggestions = append(suggestions, cmd+" "+c)
		}
	}
	sort.Strings(suggestions)
	return suggestions
}

// completeLocal lists local files matching partial, marking directories
func completeLocal(partial string) []string {
	dir, prefix := filepath.Split(partial)
	readDir := dir
	if readDir == "" {
		readDir = "."
	}
	entries, err := os.ReadDir(readDir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if e.IsDir() {
			name += "/"
		}
		names = append(names, dir+name)
	}
	return names
}
