package dashfm

import (
	"regexp"
	"strings"
)

// Redirect markers the dashboard embeds in response bodies. The dashboard
// answers almost everything with 200 and a client-side redirect, so these
// substrings are the only outcome signal it gives.
const (
	markerLogin        = `/login/`
	markerFileManager  = `window.location.replace("/dashboard/filemanager")`
	markerLoginSuccess = `replace("/dashboard/")`
)

// loginRedirects matches a script sending the browser to the login page.
// Pages that echo user content, like a saved script, may mention /login/
// anywhere else.
var loginRedirects = regexp.MustCompile(`location(?:\.href)?\s*=\s*["'][^"'\s]*/login/|location\.(?:replace|assign)\(\s*["'][^"'\s]*/login/`)

// Context tells the classifier which page produced a body
type Context int

const (
	ContextPage  Context = iota // Any authenticated page or form submission
	ContextLogin                // Response to the login form
	ContextProbe                // The dashboard root, which carries no user content
)

// Classify infers the outcome of a response from its body
func Classify(body string, ctx Context) Outcome {
	switch ctx {
	case ContextLogin:
		if strings.Contains(body, markerLoginSuccess) {
			return OutcomeSuccess
		}
		return OutcomeRejected
	case ContextProbe:
		if strings.Contains(body, markerLogin) {
			return OutcomeSessionExpired
		}
	default:
		if loginRedirects.MatchString(body) {
			return OutcomeSessionExpired
		}
	}

	if strings.Contains(body, markerFileManager) {
		return OutcomeNotFound
	}
	return OutcomeSuccess
}
