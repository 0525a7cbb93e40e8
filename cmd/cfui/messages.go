package main

// commandResultMsg is sent when an async command finishes
type commandResultMsg struct {
	output string
	err    error
}

// progressMsg updates the spinner label while a dashboard operation runs
type progressMsg struct {
	label string
}

// reportMsg carries a styled line from the dashboard reporter
type reportMsg struct {
	line string
}
