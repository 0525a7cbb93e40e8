package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cubedfm/dashfm"
)

var (
	colorBold  = color.New(color.Bold)
	colorCyan  = color.New(color.FgCyan)
	colorGreen = color.New(color.FgGreen)
	colorRed   = color.New(color.FgRed, color.Bold)
	colorFaint = color.New(color.Faint)
)

// openDashboard builds the dashboard for a loaded config
var openDashboard = func(cfg *dashfm.Config, log logrus.FieldLogger, reporter dashfm.Reporter) (dashfm.Dashboard, error) {
	return dashfm.NewDashboard(cfg.Options(log, reporter), cfg.Session())
}

// app carries what every subcommand needs once the config is loaded
type app struct {
	configPath string
	debug      bool
	insecure   bool

	cfg  *dashfm.Config
	dash dashfm.Dashboard
	out  io.Writer
}

// newRootCommand builds the command tree
func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cfm",
		Short: "Manage files and the console of a hosted Minecraft server",
		Long: `cfm talks to the server dashboard the way a browser does: it logs in,
keeps the session cookie in a session file and renews it when it expires.
Each invocation runs one operation, which makes it suitable for scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.dash == nil {
				return nil
			}
			return a.dash.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "cfm.yaml", "YAML config file")
	flags.BoolVar(&a.debug, "debug", false, "Log every dashboard request")
	flags.BoolVar(&a.insecure, "insecure", false, "Skip TLS certificate verification")

	for _, newCmd := range []func(*app) *cobra.Command{
		newLoginCommand,
		newLogoutCommand,
		newSessionCommand,
		newServersCommand,
		newSelectCommand,
		newExistsCommand,
		newMkdirCommand,
		newTouchCommand,
		newPutCommand,
		newEditCommand,
		newSendCommand,
		newConsoleCommand,
	} {
		root.AddCommand(newCmd(a))
	}
	return root
}

// open loads the config and builds the dashboard
func (a *app) open(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()

	cfg, err := dashfm.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	cfg.Debug = cfg.Debug || a.debug
	cfg.Insecure = cfg.Insecure || a.insecure
	if cfg.Pass == "" {
		cfg.Pass = os.Getenv("CFM_PASS")
	}
	a.cfg = cfg

	log := dashfm.NewLogger(cfg.Debug)
	a.dash, err = openDashboard(cfg, log, &cliReporter{out: cmd.ErrOrStderr()})
	return err
}

// password returns the configured password, prompting when there is none
func (a *app) password() (string, error) {
	if a.cfg.Pass != "" {
		return a.cfg.Pass, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password: set pass in the config or CFM_PASS")
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", a.cfg.User)
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	a.cfg.Pass = string(pass)
	return a.cfg.Pass, nil
}

// withSession runs op, which relies on the dashboard checking the session
// itself. When the session expired and cannot renew, the password is asked
// for and op runs once more.
func (a *app) withSession(op func() error) error {
	err := op()
	session := a.dash.Session()
	var authErr *dashfm.AuthError
	if !errors.As(err, &authErr) || session.CanRenew() {
		return err
	}
	if _, perr := a.password(); perr != nil {
		return fmt.Errorf("%w (%v)", err, perr)
	}
	session.Authenticate(session.Credential, a.cfg.User, a.cfg.Pass)
	return op()
}

// remote splits a remote file path into the name and raw path the
// dashboard expects for the configured folder mode
func (a *app) remote(path string) (name, rawPath string) {
	name, rawPath = dashfm.SplitLocalPath(path, a.cfg.PathSeparator)
	if !a.cfg.FolderSupport {
		rawPath = strings.TrimSuffix(strings.TrimSuffix(rawPath, name), a.cfg.PathSeparator)
	}
	return name, rawPath
}

func (a *app) printf(c *color.Color, format string, args ...any) {
	fmt.Fprint(a.out, c.Sprintf(format, args...))
}

func maskCredential(cred string) string {
	if cred == "" {
		return "(none)"
	}
	if len(cred) <= 4 {
		return strings.Repeat("*", len(cred))
	}
	return cred[:4] + strings.Repeat("*", len(cred)-4)
}
