package dashfm

import (
	"context"
	"fmt"
)

// Session is the logged-in state of one dashboard account.
//
// It is a single owned value: the controller replaces the credential on
// renewal while file operations read it for every request, so privileged
// calls against one Session must not run concurrently. Callers serialise
// them; there is no locking here.
type Session struct {
	Credential string // PHPSESSID cookie value
	ServerID   int    // Selected managed server, 0 if none
	Owner      string // Username the session belongs to

	username string // Saved for silent renewal
	password string
}

// NewSession creates a session with saved login credentials and no cookie yet
func NewSession(username, password string, serverID int) *Session {
	return &Session{
		Owner:    username,
		ServerID: serverID,
		username: username,
		password: password,
	}
}

// Authenticate replaces the credential after a successful login
func (s *Session) Authenticate(credential, username, password string) {
	s.Credential = credential
	s.Owner = username
	s.username = username
	s.password = password
}

// Select records the selected server
func (s *Session) Select(id int) {
	s.ServerID = id
}

// Forget drops the cookie but keeps the saved credentials
func (s *Session) Forget() {
	s.Credential = ""
}

// CanRenew returns true if credentials are saved for silent renewal
func (s *Session) CanRenew() bool {
	return s.username != "" && s.password != ""
}

// SessionController keeps a Session valid and performs the login protocol
type SessionController struct {
	client    *Client
	session   *Session
	userAgent string
	reporter  Reporter
}

// NewSessionController creates a controller for session over client
func NewSessionController(client *Client, session *Session, userAgent string, reporter Reporter) *SessionController {
	if session == nil {
		session = &Session{}
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &SessionController{
		client:    client,
		session:   session,
		userAgent: userAgent,
		reporter:  reporter,
	}
}

// Session returns the controlled session
func (sc *SessionController) Session() *Session {
	return sc.session
}

// Headers returns the header set for the current credential
func (sc *SessionController) Headers() Headers {
	return Headers{Credential: sc.session.Credential, UserAgent: sc.userAgent}
}

// Expired probes an authenticated page and reports whether it redirected to login
func (sc *SessionController) Expired(ctx context.Context) (bool, error) {
	if sc.session.Credential == "" {
		return true, nil
	}
	resp, err := sc.client.Do(ctx, ProbePage(sc.Headers()))
	if err != nil {
		return false, err
	}
	return Classify(resp.Body, ContextProbe) == OutcomeSessionExpired, nil
}

// EnsureValidSession guarantees the next privileged request is served with a
// live session, renewing it once if the probe says it expired
func (sc *SessionController) EnsureValidSession(ctx context.Context) error {
	expired, err := sc.Expired(ctx)
	if err != nil {
		return err
	}
	if !expired {
		return nil
	}
	return sc.Renew(ctx)
}

// Renew logs in again with the saved credentials and reselects the saved server
func (sc *SessionController) Renew(ctx context.Context) error {
	if !sc.session.CanRenew() {
		return &AuthError{Username: sc.session.Owner, Reason: "session expired and no saved credentials"}
	}

	if _, err := sc.Login(ctx, sc.session.username, sc.session.password); err != nil {
		return err
	}
	if sc.session.ServerID != 0 {
		return sc.SelectServer(ctx, sc.session.ServerID)
	}
	return nil
}

// Login performs the two-step login and stores the resulting cookie in the
// session. The login page issues an anonymous cookie tied to its token; that
// same cookie becomes the authenticated one once the credentials are accepted.
func (sc *SessionController) Login(ctx context.Context, username, password string) (string, error) {
	page, err := sc.client.Do(ctx, LoginPage(sc.Headers()))
	if err != nil {
		return "", err
	}

	token, ok := ExtractToken(page.Body)
	if !ok {
		sc.reporter.Error(fmt.Sprintf("Failed to log in as %s", username))
		return "", &AuthError{Username: username, Reason: "login page has no token"}
	}
	cookie, ok := page.Cookie(sessionCookie)
	if !ok {
		sc.reporter.Error(fmt.Sprintf("Failed to log in as %s", username))
		return "", &AuthError{Username: username, Reason: "login page issued no session cookie"}
	}

	h := Headers{Credential: cookie, UserAgent: sc.userAgent}
	resp, err := sc.client.Do(ctx, LoginRequest(LoginParams{
		Username: username,
		Password: password,
		Token:    token,
	}, h))
	if err != nil {
		return "", err
	}

	if Classify(resp.Body, ContextLogin) != OutcomeSuccess {
		sc.reporter.Error(fmt.Sprintf("Failed to log in as %s", username))
		return "", &AuthError{Username: username, Reason: "credentials rejected"}
	}

	sc.session.Authenticate(cookie, username, password)
	sc.reporter.Success(fmt.Sprintf("Logged in as %s", username))
	return cookie, nil
}

// SelectServer switches the server context of the session. The dashboard
// gives no signal for this step, so only transport failures are reported.
func (sc *SessionController) SelectServer(ctx context.Context, id int) error {
	if _, err := sc.client.Do(ctx, SelectServerPage(id, sc.Headers())); err != nil {
		return err
	}
	sc.session.Select(id)
	return nil
}

// Servers lists the managed servers of the account
func (sc *SessionController) Servers(ctx context.Context) ([]Server, error) {
	resp, err := sc.client.Do(ctx, AccountPage(sc.Headers()))
	if err != nil {
		return nil, err
	}
	if Classify(resp.Body, ContextPage) == OutcomeSessionExpired {
		return nil, &SessionExpiredError{Path: PathAccount}
	}
	return ParseServers(resp.Body)
}
