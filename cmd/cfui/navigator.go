package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cubedfm/dashfm"
)

// Navigator tracks the remote folder and server of the shell and runs
// dashboard commands, returning their output as text
type Navigator struct {
	dash    dashfm.Dashboard
	cfg     *dashfm.Config
	cwd     []string
	servers []dashfm.Server
}

// NewNavigator creates a navigator at the base folder
func NewNavigator(dash dashfm.Dashboard, cfg *dashfm.Config) *Navigator {
	return &Navigator{dash: dash, cfg: cfg}
}

// location renders owner@server:/folder for the prompt
func (n *Navigator) location() string {
	where := n.dash.Session().Owner
	if name := n.serverName(); name != "" {
		where += "@" + name
	}
	return where + ":/" + strings.Join(n.cwd, "/")
}

func (n *Navigator) serverName() string {
	id := n.dash.Session().ServerID
	if id == 0 {
		return ""
	}
	for _, s := range n.servers {
		if s.ID == id {
			return s.Name
		}
	}
	return strconv.Itoa(id)
}

// resolve applies target to the working folder
func (n *Navigator) resolve(target string) []string {
	if target == "" || target == "~" || target == "/" {
		return nil
	}
	var next []string
	if !strings.HasPrefix(target, "/") {
		next = append(next, n.cwd...)
	}
	for _, seg := range dashfm.SplitDir(target, n.cfg.PathSeparator) {
		switch seg {
		case ".":
		case "..":
			if len(next) > 0 {
				next = next[:len(next)-1]
			}
		default:
			next = append(next, seg)
		}
	}
	return next
}

func (n *Navigator) join(dir []string) string {
	return strings.Join(dir, n.cfg.PathSeparator)
}

// rawPath is the raw path of name in the working folder
func (n *Navigator) rawPath(name string) string {
	if !n.cfg.FolderSupport {
		return n.join(n.cwd)
	}
	return n.join(append(append([]string{}, n.cwd...), name))
}

func (n *Navigator) cd(ctx context.Context, target string) (string, error) {
	next := n.resolve(target)
	if len(next) > 0 {
		ok, err := n.dash.FolderExists(ctx, n.join(next))
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("no such folder: /%s", strings.Join(next, "/"))
		}
	}
	n.cwd = next
	return "", nil
}

func (n *Navigator) exists(ctx context.Context, target string) (string, error) {
	dir := n.resolve(target)
	ok, err := n.dash.FolderExists(ctx, n.join(dir))
	if err != nil {
		return "", err
	}
	if ok {
		return okStyle.Render("/" + strings.Join(dir, "/") + " exists"), nil
	}
	return warnStyle.Render("/" + strings.Join(dir, "/") + " does not exist"), nil
}

func (n *Navigator) mkdir(ctx context.Context, name string) (string, error) {
	_, err := n.dash.CreateFolder(ctx, n.join(n.cwd), name)
	return "", err
}

func (n *Navigator) touch(ctx context.Context, name string) (string, error) {
	_, err := n.dash.CreateFile(ctx, name, "", n.rawPath(name))
	return "", err
}

// upload creates or edits a remote file from a local one
func (n *Navigator) upload(ctx context.Context, local, name string, create bool) (string, error) {
	data, err := os.ReadFile(local)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = filepath.Base(local)
	}

	var res *dashfm.Result
	if create {
		res, err = n.dash.CreateFile(ctx, name, string(data), n.rawPath(name))
	} else {
		res, err = n.dash.EditFile(ctx, name, string(data), n.rawPath(name))
	}
	if err != nil {
		return "", err
	}
	if res.Report != nil {
		return warnStyle.Render(fmt.Sprintf("%s has %d errors", name, res.Report.ErrorCount)), nil
	}
	return "", nil
}

func (n *Navigator) send(ctx context.Context, command string) (string, error) {
	if err := n.dash.SendCommand(ctx, command); err != nil {
		return "", err
	}
	return dimStyle.Render("> " + command), nil
}

func (n *Navigator) console(ctx context.Context, lines int) (string, error) {
	text, err := n.dash.ConsoleContent(ctx)
	if err != nil {
		return "", err
	}
	all := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if lines > 0 && len(all) > lines {
		all = all[len(all)-lines:]
	}
	return strings.Join(all, "\n"), nil
}

func (n *Navigator) listServers(ctx context.Context) (string, error) {
	servers, err := n.dash.Servers(ctx)
	if err != nil {
		return "", err
	}
	n.servers = servers
	return formatServers(servers, n.dash.Session().ServerID), nil
}

func (n *Navigator) selectServer(ctx context.Context, arg string) (string, error) {
	server := dashfm.Server{Name: arg}
	if id, err := strconv.Atoi(arg); err == nil {
		server.ID = id
		for _, s := range n.servers {
			if s.ID == id {
				server = s
			}
		}
	} else {
		for _, s := range n.servers {
			if strings.EqualFold(s.Name, arg) {
				server = s
			}
		}
		if server.ID == 0 {
			return "", fmt.Errorf("unknown server: %s (run 'servers' first)", arg)
		}
	}

	if err := n.dash.SelectServer(ctx, server.ID); err != nil {
		return "", err
	}
	if err := n.dash.Sync(); err != nil {
		return "", err
	}
	return okStyle.Render(fmt.Sprintf("Selected %s (%d)", server.Name, server.ID)), nil
}

func (n *Navigator) login(ctx context.Context) (string, error) {
	if _, err := n.dash.Login(ctx, n.cfg.User, n.cfg.Pass); err != nil {
		return "", err
	}
	return "", n.dash.Sync()
}

func (n *Navigator) logout() (string, error) {
	if err := n.dash.Logout(); err != nil {
		return "", err
	}
	return "Session forgotten", nil
}

func (n *Navigator) session() string {
	s := n.dash.Session()
	cookie := "(none)"
	if s.Credential != "" {
		cookie = s.Credential[:min(4, len(s.Credential))] + "…"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", boldStyle.Render("endpoint:"), n.cfg.Endpoint)
	fmt.Fprintf(&b, "%s %s\n", boldStyle.Render("owner:   "), s.Owner)
	fmt.Fprintf(&b, "%s %s\n", boldStyle.Render("server:  "), n.serverName())
	fmt.Fprintf(&b, "%s %s", boldStyle.Render("cookie:  "), cookie)
	return b.String()
}
