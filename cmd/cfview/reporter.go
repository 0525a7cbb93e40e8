package main

import (
	"github.com/rivo/tview"
)

// viewReporter shows dashboard messages in the status bar once the viewer
// exists. Earlier messages are dropped.
type viewReporter struct {
	app *App
}

func (r *viewReporter) show(msg string) {
	if r.app == nil {
		return
	}
	a := r.app
	a.queue(func() { a.setStatus(msg) })
}

func (r *viewReporter) Start(label string) {}
func (r *viewReporter) Stop()              {}
func (r *viewReporter) Info(msg string)    { r.show("[aqua]" + tview.Escape(msg) + "[-]") }
func (r *viewReporter) Success(msg string) { r.show("[green]✓ " + tview.Escape(msg) + "[-]") }
func (r *viewReporter) Error(msg string)   { r.show("[red::b]✗ " + tview.Escape(msg) + "[-:-:-]") }
