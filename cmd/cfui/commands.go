package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func usage(text string) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{err: fmt.Errorf("usage: %s", text)}
	}
}

func run(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		output, err := fn()
		return commandResultMsg{output: output, err: err}
	}
}

// executeCommandAsync returns a tea.Cmd that runs the given shell command asynchronously
func executeCommandAsync(ctx context.Context, nav *Navigator, cmd string, args []string) tea.Cmd {
	switch cmd {
	case "login":
		return run(func() (string, error) { return nav.login(ctx) })

	case "logout":
		return run(nav.logout)

	case "session":
		return run(func() (string, error) { return nav.session(), nil })

	case "servers":
		return run(func() (string, error) { return nav.listServers(ctx) })

	case "select":
		if len(args) == 0 {
			return usage("select <id|name>")
		}
		target := strings.Join(args, " ")
		return run(func() (string, error) { return nav.selectServer(ctx, target) })

	case "cd":
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		return run(func() (string, error) { return nav.cd(ctx, target) })

	case "pwd":
		return run(func() (string, error) { return "/" + strings.Join(nav.cwd, "/"), nil })

	case "exists":
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		return run(func() (string, error) { return nav.exists(ctx, target) })

	case "mkdir":
		if len(args) != 1 {
			return usage("mkdir <name>")
		}
		return run(func() (string, error) { return nav.mkdir(ctx, args[0]) })

	case "touch":
		if len(args) != 1 {
			return usage("touch <name>")
		}
		return run(func() (string, error) { return nav.touch(ctx, args[0]) })

	case "put", "edit":
		if len(args) == 0 || len(args) > 2 {
			return usage(cmd + " <local> [name]")
		}
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		create := cmd == "put"
		return run(func() (string, error) { return nav.upload(ctx, args[0], name, create) })

	case "send":
		if len(args) == 0 {
			return usage("send <command>")
		}
		command := strings.Join(args, " ")
		return run(func() (string, error) { return nav.send(ctx, command) })

	case "console":
		lines := 20
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return usage("console [lines]")
			}
			lines = n
		}
		return run(func() (string, error) { return nav.console(ctx, lines) })

	case "help", "?":
		return run(func() (string, error) { return formatHelp(), nil })

	case "exit", "quit", "q":
		return tea.Quit

	default:
		return func() tea.Msg {
			return commandResultMsg{err: fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)}
		}
	}
}
