package main

import (
	"context"
	"strings"
	"time"
)

// prefetchTimeout bounds the server listing fetched on Tab
const prefetchTimeout = 5 * time.Second

// CompletionListener preprocesses Tab key presses
type CompletionListener struct {
	shell *Shell
}

// NewCompletionListener creates a listener that fetches the server list on
// the first Tab after select
func NewCompletionListener(shell *Shell) *CompletionListener {
	return &CompletionListener{shell: shell}
}

// OnChange is called on every keystroke
func (c *CompletionListener) OnChange(line []rune, pos int, key rune) ([]rune, int, bool) {
	// Only intercept Tab key
	if key != '\t' {
		return line, pos, false
	}

	words := strings.Fields(string(line[:pos]))
	if len(words) < 1 || words[0] != "select" {
		return line, pos, false
	}

	c.prefetch()

	// Return false to let readline continue with completion
	return line, pos, false
}

// prefetch loads the server list once so select can complete it
func (c *CompletionListener) prefetch() {
	if len(c.shell.servers) > 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
	defer cancel()

	servers, err := c.shell.dash.Servers(ctx)
	if err != nil {
		return
	}
	c.shell.servers = servers
}
