package dashfm

// Reporter receives progress and messages for display. The core never
// depends on how they are shown.
type Reporter interface {
	Start(label string) // An operation began, show progress
	Stop()              // The operation finished
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// NopReporter discards everything
type NopReporter struct{}

func (NopReporter) Start(string)   {}
func (NopReporter) Stop()          {}
func (NopReporter) Info(string)    {}
func (NopReporter) Success(string) {}
func (NopReporter) Error(string)   {}
