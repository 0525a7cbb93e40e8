package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"cubedfm/dashfm"
)

func main() {
	debug := pflag.Bool("debug", false, "Log every dashboard request")
	insecure := pflag.Bool("insecure", false, "Skip TLS certificate verification")
	refresh := pflag.Duration("refresh", 5*time.Second, "Console refresh interval, 0 to refresh only on demand")
	lines := pflag.Int("lines", 500, "Console lines to keep in view")
	pflag.Usage = func() {
		fmt.Println("Usage: cfview [--refresh 5s] [--lines 500] [--debug] [--insecure] CONFIG_FILE")
		pflag.PrintDefaults()
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

	// The screen belongs to the viewer, so debug logs go to a file
	log := dashfm.NewLogger(cfg.Debug)
	if cfg.Debug {
		f, err := os.OpenFile("cfview.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	reporter := &viewReporter{}
	dash, err := dashfm.NewDashboard(cfg.Options(log, reporter), cfg.Session())
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

	app := NewApp(dash, *refresh, *lines)
	reporter.app = app
	if err := app.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
