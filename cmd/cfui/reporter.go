package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

// teaReporter forwards dashboard progress into the running program.
// Messages are dropped until a program is attached.
type teaReporter struct {
	send func(tea.Msg)
}

func (r *teaReporter) emit(msg tea.Msg) {
	if r.send != nil {
		r.send(msg)
	}
}

func (r *teaReporter) Start(label string) { r.emit(progressMsg{label: label}) }
func (r *teaReporter) Stop()              { r.emit(progressMsg{}) }
func (r *teaReporter) Info(msg string)    { r.emit(reportMsg{line: infoStyle.Render(msg)}) }
func (r *teaReporter) Success(msg string) { r.emit(reportMsg{line: okStyle.Render("✓ " + msg)}) }
func (r *teaReporter) Error(msg string)   { r.emit(reportMsg{line: errorStyle.Render("✗ " + msg)}) }
