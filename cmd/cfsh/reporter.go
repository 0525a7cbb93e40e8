package main

import "fmt"

// shellReporter prints progress and results of dashboard operations
type shellReporter struct {
	active string // Label of the running operation
}

func (r *shellReporter) Start(label string) {
	r.active = label
	fmt.Println(colorFaint.Sprint(label))
}

func (r *shellReporter) Stop() {
	r.active = ""
}

func (r *shellReporter) Info(msg string) {
	fmt.Println(colorCyan.Sprint(msg))
}

func (r *shellReporter) Success(msg string) {
	fmt.Printf("%s %s\n", colorGreen.Sprint("✓"), msg)
}

func (r *shellReporter) Error(msg string) {
	fmt.Printf("%s %s\n", colorRed.Sprint("✗"), msg)
}
