package main

import (
	"fmt"
	"io"
)

// cliReporter prints dashboard progress on stderr so stdout stays scriptable
type cliReporter struct {
	out io.Writer
}

func (r *cliReporter) Start(label string) { fmt.Fprintln(r.out, colorFaint.Sprint(label)) }
func (r *cliReporter) Stop()              {}
func (r *cliReporter) Info(msg string)    { fmt.Fprintln(r.out, colorCyan.Sprint(msg)) }
func (r *cliReporter) Success(msg string) { fmt.Fprintln(r.out, colorGreen.Sprint("✓ "+msg)) }
func (r *cliReporter) Error(msg string)   { fmt.Fprintln(r.out, colorRed.Sprint("✗ "+msg)) }
