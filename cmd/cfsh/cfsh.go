package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"cubedfm/dashfm"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Colors for output
var (
	colorCyan     = color.New(color.FgCyan)
	colorGreen    = color.New(color.FgGreen)
	colorRed      = color.New(color.FgRed)
	colorYellow   = color.New(color.FgYellow)
	colorFaint    = color.New(color.Faint)
	colorBold     = color.New(color.Bold)
	colorBoldBlue = color.New(color.FgBlue, color.Bold)
)

// Shell holds the state of one interactive session
type Shell struct {
	dash    dashfm.Dashboard
	cfg     *dashfm.Config
	cwd     []string        // Remote directory below the base dir
	servers []dashfm.Server // Last server listing, used for completion and the prompt
}

// NewShell creates a shell on dash
func NewShell(dash dashfm.Dashboard, cfg *dashfm.Config) *Shell {
	return &Shell{dash: dash, cfg: cfg}
}

// dir returns the working directory as a raw dir string
func (s *Shell) dir() string {
	return strings.Join(s.cwd, s.cfg.PathSeparator)
}

// rawPath builds the raw path the dashboard expects for a file in the
// working directory
func (s *Shell) rawPath(name string) string {
	if !s.cfg.FolderSupport {
		return s.dir()
	}
	return strings.Join(append(append([]string{}, s.cwd...), name), s.cfg.PathSeparator)
}

// cd changes the remote working directory after checking it exists
func (s *Shell) cd(ctx context.Context, target string) error {
	next := s.resolve(target)

	if len(next) > 0 {
		exists, err := s.dash.FolderExists(ctx, strings.Join(next, s.cfg.PathSeparator))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("no such folder: /%s", strings.Join(next, "/"))
		}
	}

	s.cwd = next
	return nil
}

// resolve applies target to the working directory
func (s *Shell) resolve(target string) []string {
	if target == "" || target == "~" || target == "/" {
		return nil
	}

	var next []string
	if !strings.HasPrefix(target, "/") {
		next = append(next, s.cwd...)
	}
	for _, seg := range dashfm.SplitDir(target, s.cfg.PathSeparator) {
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

// upload sends a local file to the working directory, creating or editing it
func (s *Shell) upload(ctx context.Context, local, name string, create bool) error {
	data, err := os.ReadFile(local)
	if err != nil {
		return err
	}
	if name == "" {
		name = filepath.Base(local)
	}

	var res *dashfm.Result
	if create {
		res, err = s.dash.CreateFile(ctx, name, string(data), s.rawPath(name))
	} else {
		res, err = s.dash.EditFile(ctx, name, string(data), s.rawPath(name))
	}
	if err != nil {
		return err
	}
	if res.Report != nil {
		fmt.Print(colorYellow.Sprintf("%s has %d errors, see above\n", name, res.Report.ErrorCount))
	}
	return nil
}

// selectServer selects a server by id or by name from the last listing
func (s *Shell) selectServer(ctx context.Context, arg string) error {
	server, err := s.findServer(arg)
	if err != nil {
		return err
	}
	if err := s.dash.SelectServer(ctx, server.ID); err != nil {
		return err
	}
	fmt.Print(colorGreen.Sprintf("Selected %s (%d)\n", server.Name, server.ID))
	return nil
}

func (s *Shell) findServer(arg string) (dashfm.Server, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		for _, server := range s.servers {
			if server.ID == id {
				return server, nil
			}
		}
		return dashfm.Server{Name: arg, ID: id}, nil
	}
	for _, server := range s.servers {
		if strings.EqualFold(server.Name, arg) {
			return server, nil
		}
	}
	return dashfm.Server{}, fmt.Errorf("unknown server: %s (run 'servers' first)", arg)
}

// serverName returns the name of the selected server, if known
func (s *Shell) serverName() string {
	id := s.dash.Session().ServerID
	if id == 0 {
		return ""
	}
	for _, server := range s.servers {
		if server.ID == id {
			return server.Name
		}
	}
	return strconv.Itoa(id)
}

func (s *Shell) printServers() {
	if len(s.servers) == 0 {
		fmt.Println("(no servers)")
		return
	}
	selected := s.dash.Session().ServerID
	for _, server := range s.servers {
		marker := "  "
		if server.ID == selected {
			marker = colorGreen.Sprint("* ")
		}
		fmt.Printf("%s%s  %s\n", marker, colorYellow.Sprintf("%-8d", server.ID), server.Name)
	}
}

func (s *Shell) printSession() {
	session := s.dash.Session()
	fmt.Printf("%s %s\n", colorBold.Sprint("endpoint:"), s.cfg.Endpoint)
	fmt.Printf("%s %s\n", colorBold.Sprint("owner:   "), session.Owner)
	fmt.Printf("%s %s\n", colorBold.Sprint("server:  "), s.serverName())
	fmt.Printf("%s %s\n", colorBold.Sprint("cookie:  "), maskCredential(session.Credential))
}

// maskCredential shows only the start of a session cookie
func maskCredential(cred string) string {
	if cred == "" {
		return "(none)"
	}
	if len(cred) <= 4 {
		return strings.Repeat("*", len(cred))
	}
	return cred[:4] + strings.Repeat("*", len(cred)-4)
}

// tailLines returns the last n lines of text
func tailLines(text string, n int) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

func main() {
	debug := pflag.Bool("debug", false, "Log every dashboard request")
	insecure := pflag.Bool("insecure", false, "Skip TLS certificate verification")
	pflag.Usage = func() {
		fmt.Println("Usage: cfsh [--debug] [--insecure] CONFIG_FILE")
		fmt.Println("Example: cfsh config.yaml")
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(1)
	}

	configPath := pflag.Arg(0)

	// Check if it's a YAML file
	if !strings.HasSuffix(configPath, ".yaml") && !strings.HasSuffix(configPath, ".yml") {
		pflag.Usage()
		os.Exit(1)
	}

	cfg, err := dashfm.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Debug = cfg.Debug || *debug
	cfg.Insecure = cfg.Insecure || *insecure

	if cfg.Pass == "" {
		cfg.Pass, err = promptPassword(cfg.User)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	log := dashfm.NewLogger(cfg.Debug)
	dash, err := dashfm.NewDashboard(cfg.Options(log, &shellReporter{}), cfg.Session())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer dash.Sync()

	shell := NewShell(dash, cfg)

	fmt.Printf("Connecting to %s...\n", cfg.Endpoint)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = dash.CheckAndUpdateSession(ctx)
	stop()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Type 'help' for commands")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            getPrompt(shell),
		HistoryFile:       os.ExpandEnv("$HOME/.cfsh_history"),
		AutoComplete:      NewCompleter(shell),
		Listener:          NewCompletionListener(shell),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		HistoryLimit:      1000,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	// REPL loop
	for {
		rl.SetPrompt(getPrompt(shell))

		line, err := rl.Readline()
		if err != nil {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		// Ctrl+C cancels the running request, not the shell
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = executeCommand(ctx, shell, cmd, args)
		stop()
		if err != nil {
			fmt.Print(colorRed.Sprintf("Error: %v\n", err))
		}

		if cmd == "exit" || cmd == "quit" || cmd == "q" {
			break
		}
	}
}

// promptPassword reads a password without echo
func promptPassword(user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("config has no pass and stdin is not a terminal")
	}
	fmt.Printf("Password for %s: ", user)
	pass, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pass), nil
}

func getPrompt(s *Shell) string {
	owner := s.dash.Session().Owner
	if name := s.serverName(); name != "" {
		owner += "@" + name
	}
	return fmt.Sprintf("%s:%s> ", colorCyan.Sprint(owner), colorBoldBlue.Sprint("/"+strings.Join(s.cwd, "/")))
}

func executeCommand(ctx context.Context, s *Shell, cmd string, args []string) error {
	switch cmd {
	case "login":
		user := s.cfg.User
		if len(args) > 0 {
			user = args[0]
		}
		pass := s.cfg.Pass
		if user != s.cfg.User || pass == "" {
			var err error
			if pass, err = promptPassword(user); err != nil {
				return err
			}
		}
		if _, err := s.dash.Login(ctx, user, pass); err != nil {
			return err
		}
		return s.dash.Sync()

	case "logout":
		if err := s.dash.Logout(); err != nil {
			return err
		}
		fmt.Println("Session forgotten")

	case "session":
		s.printSession()

	case "servers":
		servers, err := s.dash.Servers(ctx)
		if err != nil {
			return err
		}
		s.servers = servers
		s.printServers()

	case "select":
		if len(args) == 0 {
			return fmt.Errorf("usage: select <id|name>")
		}
		if err := s.selectServer(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		return s.dash.Sync()

	case "cd":
		target := ""
		if len(args) > 0 {
			target = strings.Join(args, " ")
		}
		return s.cd(ctx, target)

	case "pwd":
		fmt.Println("/" + strings.Join(s.cwd, "/"))

	case "exists":
		if len(args) == 0 {
			return fmt.Errorf("usage: exists <folder>")
		}
		dir := s.resolve(strings.Join(args, " "))
		ok, err := s.dash.FolderExists(ctx, strings.Join(dir, s.cfg.PathSeparator))
		if err != nil {
			return err
		}
		if ok {
			fmt.Print(colorGreen.Sprintf("/%s exists\n", strings.Join(dir, "/")))
		} else {
			fmt.Print(colorYellow.Sprintf("/%s does not exist\n", strings.Join(dir, "/")))
		}

	case "mkdir":
		if len(args) == 0 {
			return fmt.Errorf("usage: mkdir <name>")
		}
		_, err := s.dash.CreateFolder(ctx, s.dir(), strings.Join(args, " "))
		return err

	case "touch":
		if len(args) == 0 {
			return fmt.Errorf("usage: touch <name>")
		}
		_, err := s.dash.CreateFile(ctx, args[0], "", s.rawPath(args[0]))
		return err

	case "put", "edit":
		if len(args) == 0 {
			return fmt.Errorf("usage: %s <local file> [remote name]", cmd)
		}
		name := ""
		if len(args) > 1 {
			name = args[1]
		}
		return s.upload(ctx, args[0], name, cmd == "put")

	case "send":
		if len(args) == 0 {
			return fmt.Errorf("usage: send <command>")
		}
		command := strings.Join(args, " ")
		if err := s.dash.SendCommand(ctx, command); err != nil {
			return err
		}
		fmt.Print(colorFaint.Sprintf("> %s\n", command))

	case "console":
		n := 20
		if len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil {
				n = v
			}
		}
		text, err := s.dash.ConsoleContent(ctx)
		if err != nil {
			return err
		}
		for _, line := range tailLines(text, n) {
			fmt.Println(line)
		}

	case "clear":
		fmt.Print("\033[H\033[2J")

	case "help", "?":
		printHelp()

	case "exit", "quit", "q":
		// Handled in main loop
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}

	return nil
}

func printHelp() {
	fmt.Print(`
cfsh - Dashboard File Manager Shell Commands:

Session:
  login [user]          Log in (prompts for the password of other users)
  logout                Forget the saved session cookie
  session               Show owner, server and cookie
  servers               List the servers of the account
  select <id|name>      Select a server

Files:
  cd <folder>           Change remote folder (checked on the dashboard)
  pwd                   Print remote folder
  exists <folder>       Check whether a folder exists
  mkdir <name>          Create a folder in the current folder
  touch <name>          Create an empty file and reload it
  put <local> [name]    Create a file from a local file and reload it
  edit <local> [name]   Replace a file with a local file and reload it

Console:
  send <command>        Run a console command
  console [lines]       Show the last console lines (default: 20)

Control:
  clear                 Clear screen
  help                  Show help
  exit/quit             Exit shell

Keyboard Shortcuts:
  Tab             Auto-complete commands, local files and servers
  Ctrl+C          Cancel the running request
  Ctrl+R          Reverse history search
  ↑/↓             History (folded)
`)
}
