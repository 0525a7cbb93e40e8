package main

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"cubedfm/dashfm"
)

// stubDashboard records calls and answers from canned values
type stubDashboard struct {
	session *dashfm.Session
	calls   []string
	servers []dashfm.Server
	console string
	sendErr error
}

func (d *stubDashboard) record(parts ...string) {
	d.calls = append(d.calls, strings.Join(parts, " "))
}

func (d *stubDashboard) Login(ctx context.Context, username, password string) (string, error) {
	return "", nil
}

func (d *stubDashboard) CheckAndUpdateSession(ctx context.Context) error { return nil }

func (d *stubDashboard) Servers(ctx context.Context) ([]dashfm.Server, error) {
	d.record("Servers")
	return d.servers, nil
}

func (d *stubDashboard) SelectServer(ctx context.Context, id int) error {
	d.record("SelectServer")
	d.session.Select(id)
	return nil
}

func (d *stubDashboard) Session() *dashfm.Session { return d.session }

func (d *stubDashboard) CreateFile(ctx context.Context, name, content, rawPath string) (*dashfm.Result, error) {
	return nil, errors.New("unused")
}

func (d *stubDashboard) CreateFolder(ctx context.Context, dir, name string) (*dashfm.Result, error) {
	return nil, errors.New("unused")
}

func (d *stubDashboard) EditFile(ctx context.Context, name, content, rawPath string) (*dashfm.Result, error) {
	return nil, errors.New("unused")
}

func (d *stubDashboard) FolderExists(ctx context.Context, dir string) (bool, error) {
	return false, nil
}

func (d *stubDashboard) SendCommand(ctx context.Context, cmd string) error {
	d.record("SendCommand", cmd)
	return d.sendErr
}

func (d *stubDashboard) ConsoleContent(ctx context.Context) (string, error) {
	d.record("ConsoleContent")
	return d.console, nil
}

func (d *stubDashboard) Sync() error {
	d.record("Sync")
	return nil
}

func (d *stubDashboard) Logout() error { return nil }

// newTestApp builds a viewer whose operations run synchronously
func newTestApp() (*App, *stubDashboard) {
	stub := &stubDashboard{
		session: &dashfm.Session{Owner: "alice", ServerID: 7},
		servers: []dashfm.Server{{Name: "Lobby", ID: 12}, {Name: "Survival", ID: 7}},
		console: "Done (3.2s)!\nplayer joined\n",
	}
	a := NewApp(stub, 0, 100)
	a.spawn = func(f func()) { f() }
	a.queue = func(f func()) { f() }
	return a, stub
}

func TestApp_LoadServers(t *testing.T) {
	a, _ := newTestApp()
	a.loadServers()

	if got := a.servers.GetItemCount(); got != 2 {
		t.Fatalf("item count = %d, want 2", got)
	}
	if got := a.servers.GetCurrentItem(); got != 1 {
		t.Errorf("current item = %d, want the selected server", got)
	}
	main, _ := a.servers.GetItemText(1)
	if !strings.HasPrefix(main, "[green::b]*") {
		t.Errorf("selected label = %q", main)
	}
	if status := a.status.GetText(true); !strings.Contains(status, "alice@Survival") {
		t.Errorf("status = %q", status)
	}
}

func TestApp_SelectServer(t *testing.T) {
	a, stub := newTestApp()
	a.loadServers()
	stub.calls = nil

	a.selectServer(stub.servers[0])

	want := []string{"SelectServer", "Sync", "ConsoleContent"}
	if !reflect.DeepEqual(stub.calls, want) {
		t.Errorf("calls = %v, want %v", stub.calls, want)
	}
	if stub.session.ServerID != 12 {
		t.Errorf("ServerID = %d, want 12", stub.session.ServerID)
	}
	main, _ := a.servers.GetItemText(0)
	if !strings.HasPrefix(main, "[green::b]*") {
		t.Errorf("label after select = %q", main)
	}
	if got := a.console.GetText(true); !strings.Contains(got, "player joined") {
		t.Errorf("console = %q", got)
	}
}

func TestApp_SendCommand(t *testing.T) {
	t.Run("sends and refreshes", func(t *testing.T) {
		a, stub := newTestApp()
		a.sendCommand("say hi")

		want := []string{"SendCommand say hi", "ConsoleContent"}
		if !reflect.DeepEqual(stub.calls, want) {
			t.Errorf("calls = %v, want %v", stub.calls, want)
		}
	})

	t.Run("errors go to the status bar", func(t *testing.T) {
		a, stub := newTestApp()
		stub.sendErr = errors.New("boom")
		a.sendCommand("say hi")

		if status := a.status.GetText(true); !strings.Contains(status, "Error: boom") {
			t.Errorf("status = %q", status)
		}
		if len(stub.calls) != 1 {
			t.Errorf("console refreshed after a failed send: %v", stub.calls)
		}
	})

	t.Run("busy keeps the command", func(t *testing.T) {
		a, stub := newTestApp()
		a.busy.Lock()
		a.sendCommand("say hi")
		a.busy.Unlock()

		if len(stub.calls) != 0 {
			t.Errorf("calls = %v, want none while busy", stub.calls)
		}
		if got := a.input.GetText(); got != "say hi" {
			t.Errorf("input = %q, want the command kept", got)
		}
	})
}

func TestApp_StatusUsesSessionSnapshot(t *testing.T) {
	a, stub := newTestApp()
	a.loadServers()

	var pending func()
	a.spawn = func(f func()) { pending = f }
	a.sendCommand("say hi")

	// The running operation moves the session to another server
	stub.session.Select(12)
	a.sendCommand("say again")
	if status := a.status.GetText(true); !strings.Contains(status, "alice@Survival") {
		t.Errorf("status while busy = %q, want the last snapshot", status)
	}

	pending()
	if status := a.status.GetText(true); !strings.Contains(status, "alice@Lobby") {
		t.Errorf("status after the operation = %q", status)
	}
}

func TestViewReporter(t *testing.T) {
	r := &viewReporter{}
	r.Success("dropped before the viewer exists")

	a, _ := newTestApp()
	r.app = a
	r.Success("Logged in as alice")
	if status := a.status.GetText(true); !strings.Contains(status, "✓ Logged in as alice") {
		t.Errorf("status = %q", status)
	}
}

func TestFormatConsole(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		lines int
		want  string
	}{
		{
			name: "plain lines",
			text: "one\ntwo\n",
			want: "one\ntwo",
		},
		{
			name:  "keeps the last lines",
			text:  "one\ntwo\nthree\n",
			lines: 2,
			want:  "two\nthree",
		},
		{
			name: "skript errors are red and escaped",
			text: "[Skript] Line 2: (test.sk)\n[Skript] Encountered 1 error while reloading test.sk!",
			want: "[red][Skript[] Line 2: (test.sk)[-]\n[red][Skript[] Encountered 1 error while reloading test.sk![-]",
		},
		{
			name: "warnings and reloads",
			text: "[12:00:00 WARN]: slow tick\n[Skript] Successfully reloaded test.sk",
			want: "[yellow][12:00:00 WARN[]: slow tick[-]\n[green][Skript[] Successfully reloaded test.sk[-]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatConsole(tt.text, tt.lines); got != tt.want {
				t.Errorf("formatConsole() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServerLabel(t *testing.T) {
	s := dashfm.Server{Name: "Lobby", ID: 12}
	if got, want := serverLabel(s, 12), "[green::b]*[-:-:-] Lobby [gray](12)[-]"; got != want {
		t.Errorf("selected = %q, want %q", got, want)
	}
	if got, want := serverLabel(s, 7), "  Lobby [gray](12)[-]"; got != want {
		t.Errorf("unselected = %q, want %q", got, want)
	}
}
