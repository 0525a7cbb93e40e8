package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cubedfm/dashfm"
)

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := a.password()
			if err != nil {
				return err
			}
			if _, err := a.dash.Login(cmd.Context(), a.cfg.User, pass); err != nil {
				return err
			}
			if id := a.cfg.Server; id != 0 {
				return a.dash.SelectServer(cmd.Context(), id)
			}
			return nil
		},
	}
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dash.Logout()
		},
	}
}

func newSessionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.dash.Session()
			server := "(none)"
			if s.ServerID != 0 {
				server = strconv.Itoa(s.ServerID)
			}
			a.printf(colorBold, "endpoint: ")
			fmt.Fprintln(a.out, a.cfg.Endpoint)
			a.printf(colorBold, "owner:    ")
			fmt.Fprintln(a.out, s.Owner)
			a.printf(colorBold, "server:   ")
			fmt.Fprintln(a.out, server)
			a.printf(colorBold, "cookie:   ")
			fmt.Fprintln(a.out, maskCredential(s.Credential))
			a.printf(colorBold, "file:     ")
			fmt.Fprintln(a.out, a.cfg.SessionFile)
			return nil
		},
	}
}

func newServersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "List the servers of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var servers []dashfm.Server
			err := a.withSession(func() (err error) {
				servers, err = a.dash.Servers(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if len(servers) == 0 {
				a.printf(colorFaint, "no servers on this account\n")
				return nil
			}
			selected := a.dash.Session().ServerID
			for _, s := range servers {
				if s.ID == selected {
					a.printf(colorGreen, "* %-8d %s\n", s.ID, s.Name)
				} else {
					fmt.Fprintf(a.out, "  %-8d %s\n", s.ID, s.Name)
				}
			}
			return nil
		},
	}
}

func newSelectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id|name>",
		Short: "Select the server later commands act on",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := strings.Join(args, " ")
			var id int
			err := a.withSession(func() error {
				var err error
				id, err = strconv.Atoi(arg)
				if err != nil {
					servers, err := a.dash.Servers(cmd.Context())
					if err != nil {
						return err
					}
					for _, s := range servers {
						if strings.EqualFold(s.Name, arg) {
							id = s.ID
						}
					}
					if id == 0 {
						return fmt.Errorf("unknown server: %s", arg)
					}
				}
				return a.dash.SelectServer(cmd.Context(), id)
			})
			if err != nil {
				return err
			}
			a.printf(colorGreen, "Selected server %d\n", id)
			return nil
		},
	}
}

func newExistsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <folder>",
		Short: "Check that a remote folder exists",
		Long:  "Exits with an error when the folder does not exist.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, dir := dashfm.SplitLocalPath(args[0], a.cfg.PathSeparator)
			var ok bool
			err := a.withSession(func() (err error) {
				ok, err = a.dash.FolderExists(cmd.Context(), dir)
				return err
			})
			if err != nil {
				return err
			}
			if !ok {
				return &dashfm.NotFoundError{Path: args[0]}
			}
			a.printf(colorGreen, "%s exists\n", args[0])
			return nil
		},
	}
}

func newMkdirCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <folder/name>",
		Short: "Create a remote folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, raw := dashfm.SplitLocalPath(args[0], a.cfg.PathSeparator)
			if name == "" {
				return fmt.Errorf("missing folder name")
			}
			dir := strings.TrimSuffix(strings.TrimSuffix(raw, name), a.cfg.PathSeparator)
			return a.withSession(func() error {
				_, err := a.dash.CreateFolder(cmd.Context(), dir, name)
				return err
			})
		},
	}
}

func newTouchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "touch <remote>",
		Short: "Create an empty remote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, raw := a.remote(args[0])
			return a.withSession(func() error {
				_, err := a.dash.CreateFile(cmd.Context(), name, "", raw)
				return err
			})
		},
	}
}

// upload reads local and writes it to remote, which defaults to the local
// path itself so a script tree can be mirrored file by file
func (a *app) upload(cmd *cobra.Command, args []string, create bool) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	target := filepath.ToSlash(args[0])
	if len(args) == 2 {
		target = args[1]
	}

	name, raw := a.remote(target)
	var res *dashfm.Result
	err = a.withSession(func() (err error) {
		if create {
			res, err = a.dash.CreateFile(cmd.Context(), name, string(data), raw)
		} else {
			res, err = a.dash.EditFile(cmd.Context(), name, string(data), raw)
		}
		return err
	})
	if err != nil {
		return err
	}
	if res.Report != nil {
		return &dashfm.RemoteScriptError{Report: res.Report}
	}
	return nil
}

func newPutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <local> [remote]",
		Short: "Create a remote file from a local file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.upload(cmd, args, true)
		},
	}
}

func newEditCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <local> [remote]",
		Short: "Overwrite a remote file and reload it",
		Long: `Overwrites the remote file with the local one and reloads it with Skript.
With log_errors enabled the console is checked afterwards and the command
fails when the reload reported errors.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.upload(cmd, args, false)
		},
	}
}

func newSendCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <command...>",
		Short: "Send a console command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func() error {
				return a.dash.SendCommand(cmd.Context(), strings.Join(args, " "))
			})
		},
	}
}

func newConsoleCommand(a *app) *cobra.Command {
	var lines int
	c := &cobra.Command{
		Use:   "console",
		Short: "Print the console output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			err := a.withSession(func() (err error) {
				text, err = a.dash.ConsoleContent(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			all := strings.Split(strings.TrimRight(text, "\n"), "\n")
			if lines > 0 && len(all) > lines {
				all = all[len(all)-lines:]
			}
			for _, line := range all {
				fmt.Fprintln(a.out, line)
			}
			return nil
		},
	}
	c.Flags().IntVarP(&lines, "lines", "n", 0, "Print only the last N lines")
	return c
}
