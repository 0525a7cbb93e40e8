package dashfm

import (
	"fmt"
)

// Outcome is the classified result of a dashboard response
type Outcome int

const (
	OutcomeSuccess        Outcome = iota // Page served as expected
	OutcomeSessionExpired                // Redirected to the login page
	OutcomeNotFound                      // Redirected to the file manager root
	OutcomeErrorReport                   // Success, but the console reported script errors
	OutcomeRejected                      // Login did not redirect to the dashboard
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSessionExpired:
		return "session expired"
	case OutcomeNotFound:
		return "not found"
	case OutcomeErrorReport:
		return "error report"
	case OutcomeRejected:
		return "rejected"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is what an orchestrated operation hands back to the caller
type Result struct {
	Outcome Outcome
	Body    string              // Raw body of the submit response
	Report  *ConsoleErrorReport // Set when Outcome is OutcomeErrorReport
}

// OK returns true if the operation went through on the remote side
func (r *Result) OK() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomeErrorReport
}

// Warning returns the non-fatal script error attached to an edit, if any
func (r *Result) Warning() error {
	if r.Report == nil {
		return nil
	}
	return &RemoteScriptError{Report: r.Report}
}

// ConsoleErrorReport is a per-script error block scraped from console output
type ConsoleErrorReport struct {
	FileName   string
	ErrorCount int
	Detail     string
}

// Server is a managed server listed on the account page
type Server struct {
	Name string
	ID   int
}

// Error types

// NotFoundError indicates the dashboard redirected to the file manager root
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// TokenMissingError indicates the scrape phase found no anti-forgery field
type TokenMissingError struct {
	Path string
}

func (e *TokenMissingError) Error() string {
	return fmt.Sprintf("no form token on page: %s", e.Path)
}

// SessionExpiredError indicates the remote answered with a login redirect.
// Renewed reports whether the session was re-established afterwards, in which
// case the operation can be tried again.
type SessionExpiredError struct {
	Path    string
	Renewed bool
}

func (e *SessionExpiredError) Error() string {
	if e.Renewed {
		return fmt.Sprintf("session expired during %s (renewed, retry the operation)", e.Path)
	}
	return fmt.Sprintf("session expired during %s", e.Path)
}

// AuthError indicates a login was not accepted
type AuthError struct {
	Username string
	Reason   string
}

func (e *AuthError) Error() string {
	if e.Username == "" {
		return fmt.Sprintf("authentication failed: %s", e.Reason)
	}
	return fmt.Sprintf("authentication failed for %s: %s", e.Username, e.Reason)
}

// RemoteScriptError reports script errors found in the console after a reload
type RemoteScriptError struct {
	Report *ConsoleErrorReport
}

func (e *RemoteScriptError) Error() string {
	return fmt.Sprintf("%s reloaded with %d errors: %s", e.Report.FileName, e.Report.ErrorCount, e.Report.Detail)
}

// NetworkError indicates a network communication failure
type NetworkError struct {
	Path string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError indicates the dashboard itself failed to serve a page
type HTTPError struct {
	Path       string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Path)
}

// ParseError indicates a page or stored file could not be parsed
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
