package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"cubedfm/dashfm"
)

func main() {
	debug := pflag.Bool("debug", false, "Log every dashboard request")
	insecure := pflag.Bool("insecure", false, "Skip TLS certificate verification")
	pflag.Usage = func() {
		fmt.Println("Usage: cfui [--debug] [--insecure] CONFIG_FILE")
		fmt.Println("Example: cfui config.yaml")
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(1)
	}

	configPath := pflag.Arg(0)

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
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			fmt.Println("Error: config has no pass and stdin is not a terminal")
			os.Exit(1)
		}
		fmt.Printf("Password for %s: ", cfg.User)
		pass, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Pass = string(pass)
	}

	reporter := &teaReporter{}
	dash, err := dashfm.NewDashboard(cfg.Options(dashfm.NewLogger(cfg.Debug), reporter), cfg.Session())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer dash.Sync()

	fmt.Printf("Connecting to %s...\n", cfg.Endpoint)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = dash.CheckAndUpdateSession(ctx)
	stop()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Type 'help' for commands")

	state := &shellState{
		nav:     NewNavigator(dash, cfg),
		history: NewHistory(os.ExpandEnv("$HOME/.cfui_history")),
	}

	p := tea.NewProgram(newModel(state), tea.WithoutCatchPanics())
	reporter.send = p.Send

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
