package main

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// commands lists every shell command for completion
var commands = []string{
	"login", "logout", "session", "servers", "select",
	"cd", "pwd", "exists", "mkdir", "touch", "put", "edit",
	"send", "console", "clear", "help", "exit", "quit",
}

// Completer provides tab completion for the shell
type Completer struct {
	shell *Shell
}

// NewCompleter creates a new completer
func NewCompleter(shell *Shell) *Completer {
	return &Completer{shell: shell}
}

// Do implements readline.AutoCompleter interface
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	words := strings.Fields(text)

	// Command completion
	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(text, " ")) {
		return c.completeCommand(words)
	}

	// Argument completion
	cmd := words[0]
	partial := ""
	if !strings.HasSuffix(text, " ") && len(words) > 1 {
		partial = words[len(words)-1]
	}
	argIndex := len(words) - 1
	if strings.HasSuffix(text, " ") {
		argIndex++
	}

	switch cmd {
	case "put", "edit":
		if argIndex == 1 {
			return completeLocalPath(partial)
		}
	case "select":
		return c.completeServer(partial)
	case "console":
		return toRuneSlices(filterPrefix([]string{"10", "20", "50", "100"}, partial), len(partial)), len(partial)
	case "cd", "exists":
		return toRuneSlices(filterPrefix([]string{"..", "/"}, partial), len(partial)), len(partial)
	}

	return nil, 0
}

// completeCommand completes command names
func (c *Completer) completeCommand(words []string) ([][]rune, int) {
	prefix := ""
	if len(words) == 1 {
		prefix = words[0]
	}
	return toRuneSlices(filterPrefix(commands, prefix), len(prefix)), len(prefix)
}

// completeServer completes server ids and names from the last listing
func (c *Completer) completeServer(partial string) ([][]rune, int) {
	var candidates []string
	for _, server := range c.shell.servers {
		candidates = append(candidates, strconv.Itoa(server.ID))
		if !strings.Contains(server.Name, " ") {
			candidates = append(candidates, server.Name)
		}
	}
	matches := filterPrefix(candidates, partial)
	sort.Strings(matches)
	return toRuneSlices(matches, len(partial)), len(partial)
}

// completeLocalPath completes files on the local disk, directories get a
// trailing slash
func completeLocalPath(partial string) ([][]rune, int) {
	dir, prefix := filepath.Split(partial)
	readDir := dir
	if readDir == "" {
		readDir = "."
	}

	entries, err := os.ReadDir(readDir)
	if err != nil {
		return nil, 0
	}

	var completions []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if entry.IsDir() {
			name += "/"
		}
		completions = append(completions, name)
	}

	sort.Strings(completions)
	return toRuneSlices(completions, len(prefix)), len(prefix)
}

func filterPrefix(candidates []string, prefix string) []string {
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			matches = append(matches, c)
		}
	}
	return matches
}

// toRuneSlices converts string completions to rune slices
func toRuneSlices(strs []string, prefixLen int) [][]rune {
	result := make([][]rune, len(strs))
	for i, s := range strs {
		result[i] = []rune(s[prefixLen:])
	}
	return result
}
