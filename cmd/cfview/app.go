package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"cubedfm/dashfm"
)

// App is the full-screen console viewer
type App struct {
	app  *tview.Application
	dash dashfm.Dashboard

	servers *tview.List
	console *tview.TextView
	input   *tview.InputField
	status  *tview.TextView

	known   []dashfm.Server
	who     identity
	refresh time.Duration
	lines   int

	// One dashboard operation at a time; the session is not safe for
	// concurrent use.
	busy sync.Mutex

	// spawn runs an operation off the UI goroutine, queue hands its result
	// back. Tests replace both with direct calls.
	spawn func(func())
	queue func(func())
}

// identity is the session owner and server the status bar shows. The
// session is only read while holding busy; the UI works on this copy.
type identity struct {
	owner    string
	serverID int
}

func snapshot(s *dashfm.Session) identity {
	return identity{owner: s.Owner, serverID: s.ServerID}
}

// NewApp creates the viewer for dash
func NewApp(dash dashfm.Dashboard, refresh time.Duration, lines int) *App {
	a := &App{
		app:     tview.NewApplication(),
		dash:    dash,
		who:     snapshot(dash.Session()),
		refresh: refresh,
		lines:   lines,
	}
	a.spawn = func(f func()) { go f() }
	a.queue = func(f func()) { a.app.QueueUpdateDraw(f) }

	a.buildUI()
	return a
}

func (a *App) buildUI() {
	a.status = tview.NewTextView().
		SetDynamicColors(true)
	a.setStatus("")

	a.servers = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	a.servers.SetBorder(true).
		SetTitle("Servers").
		SetTitleAlign(tview.AlignLeft)
	a.servers.SetSelectedFunc(func(i int, _ string, _ string, _ rune) {
		if i < len(a.known) {
			a.selectServer(a.known[i])
		}
	})

	a.console = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	a.console.SetBorder(true).
		SetTitle("Console").
		SetTitleAlign(tview.AlignLeft)

	a.input = tview.NewInputField().
		SetLabel("> ").
		SetFieldBackgroundColor(tcell.ColorDefault)
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := a.input.GetText()
		if cmd == "" {
			return
		}
		a.input.SetText("")
		a.sendCommand(cmd)
	})

	help := tview.NewTextView().
		SetDynamicColors(true).
		SetText("[gray]Tab:switch pane | Enter:select server / send command | Ctrl+R:refresh | J/K:scroll | Ctrl+Q:quit[-]")

	grid := tview.NewGrid().
		SetRows(1, 0, 1, 1).
		SetColumns(30, 0).
		AddItem(a.status, 0, 0, 1, 2, 0, 0, false).
		AddItem(a.servers, 1, 0, 1, 1, 0, 0, false).
		AddItem(a.console, 1, 1, 1, 1, 0, 0, false).
		AddItem(a.input, 2, 0, 1, 2, 0, 0, true).
		AddItem(help, 3, 0, 1, 2, 0, 0, false)

	grid.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlQ:
			a.app.Stop()
			return nil
		case tcell.KeyCtrlR:
			a.refreshConsole()
			return nil
		case tcell.KeyTab:
			if a.input.HasFocus() {
				a.app.SetFocus(a.servers)
			} else {
				a.app.SetFocus(a.input)
			}
			return nil
		}
		if a.servers.HasFocus() {
			switch event.Rune() {
			case 'J':
				row, col := a.console.GetScrollOffset()
				a.console.ScrollTo(row+1, col)
				return nil
			case 'K':
				row, col := a.console.GetScrollOffset()
				if row > 0 {
					a.console.ScrollTo(row-1, col)
				}
				return nil
			}
		}
		return event
	})

	a.app.SetRoot(grid, true).SetFocus(a.input)
}

// run executes op in the background unless another operation is in flight.
// done receives the result on the UI goroutine.
func (a *App) run(label string, op func(ctx context.Context) error, done func(err error)) bool {
	if !a.busy.TryLock() {
		return false
	}
	a.setStatus("[yellow]" + tview.Escape(label) + "[-]")
	a.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := op(ctx)
		cancel()
		who := snapshot(a.dash.Session())
		a.busy.Unlock()
		a.queue(func() {
			a.who = who
			if err != nil {
				a.setStatus("[red::b]Error:[-:-:-] " + tview.Escape(err.Error()))
			} else {
				a.setStatus("")
			}
			if done != nil {
				done(err)
			}
		})
	})
	return true
}

func (a *App) setStatus(msg string) {
	head := "[yellow::b]CFVIEW[-:-:-] " + a.sessionLabel()
	if msg != "" {
		head += " | " + msg
	}
	a.status.SetText(head)
}

func (a *App) sessionLabel() string {
	label := tview.Escape(a.who.owner)
	for _, srv := range a.known {
		if srv.ID == a.who.serverID {
			return label + "@" + tview.Escape(srv.Name)
		}
	}
	if a.who.serverID != 0 {
		return fmt.Sprintf("%s@%d", label, a.who.serverID)
	}
	return label
}

// loadServers fills the server list
func (a *App) loadServers() {
	var servers []dashfm.Server
	a.run("Loading servers...", func(ctx context.Context) error {
		var err error
		servers, err = a.dash.Servers(ctx)
		return err
	}, func(err error) {
		if err != nil {
			return
		}
		a.known = servers
		a.servers.Clear()
		selected := a.who.serverID
		for i, s := range servers {
			a.servers.AddItem(serverLabel(s, selected), "", 0, nil)
			if s.ID == selected {
				a.servers.SetCurrentItem(i)
			}
		}
		a.setStatus("")
	})
}

func (a *App) selectServer(s dashfm.Server) {
	a.run(fmt.Sprintf("Selecting %s...", s.Name), func(ctx context.Context) error {
		if err := a.dash.SelectServer(ctx, s.ID); err != nil {
			return err
		}
		return a.dash.Sync()
	}, func(err error) {
		if err != nil {
			return
		}
		for i, known := range a.known {
			a.servers.SetItemText(i, serverLabel(known, s.ID), "")
		}
		a.setStatus("")
		a.refreshConsole()
	})
}

// sendCommand sends cmd to the console, keeping it in the input line when
// another operation is still running
func (a *App) sendCommand(cmd string) {
	started := a.run("Sending "+cmd+"...", func(ctx context.Context) error {
		return a.dash.SendCommand(ctx, cmd)
	}, func(err error) {
		if err == nil {
			a.refreshConsole()
		}
	})
	if !started {
		a.input.SetText(cmd)
		a.setStatus("[yellow]busy, press Enter again[-]")
	}
}

// refreshConsole reloads the console pane, skipping the tick when another
// operation holds the session
func (a *App) refreshConsole() {
	var text string
	a.run("Refreshing console...", func(ctx context.Context) error {
		var err error
		text, err = a.dash.ConsoleContent(ctx)
		return err
	}, func(err error) {
		if err != nil {
			return
		}
		a.console.SetText(formatConsole(text, a.lines))
		a.console.ScrollToEnd()
	})
}

// poll refreshes the console every interval until ctx is done
func (a *App) poll(ctx context.Context) {
	if a.refresh <= 0 {
		return
	}
	ticker := time.NewTicker(a.refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.queue(a.refreshConsole)
		}
	}
}

// Run starts polling and blocks until the viewer quits
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.loadServers()
	go a.poll(ctx)
	return a.app.Run()
}
