package dashfm

import (
	"context"
	"errors"
	"fmt"
)

// FileOptions control how file operations map onto the file manager
type FileOptions struct {
	BaseDir       string // Server folder every dir parameter starts with
	FolderSupport bool   // Raw paths carry a directory part
	LogErrors     bool   // Scan the console for script errors after an edit
	Separator     string // Separator of raw paths, DefaultSeparator if empty
}

// FileManager sequences the scrape-then-submit protocol of the file manager
type FileManager struct {
	client   *Client
	sessions *SessionController
	opt      FileOptions
	reporter Reporter
}

// NewFileManager creates an orchestrator using sessions for authentication
func NewFileManager(client *Client, sessions *SessionController, opt FileOptions, reporter Reporter) *FileManager {
	if opt.Separator == "" {
		opt.Separator = DefaultSeparator
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &FileManager{
		client:   client,
		sessions: sessions,
		opt:      opt,
		reporter: reporter,
	}
}

// RemotePath resolves a file name and the raw path the front end built for it
func (fm *FileManager) RemotePath(name, rawPath string) RemotePath {
	var dir []string
	if fm.opt.FolderSupport && rawPath != "" {
		dir = ContainingDir(rawPath, fm.opt.Separator)
	} else {
		dir = SplitDir(rawPath, fm.opt.Separator)
	}
	return RemotePath{Dir: dir, Leaf: name}
}

// target is how console commands refer to a file
func (fm *FileManager) target(p RemotePath) string {
	if fm.opt.FolderSupport {
		return p.String()
	}
	return p.Leaf
}

// scrapeAndSubmit fetches page, extracts its token and submits the request
// build makes from it. The token is never reused across calls.
func (fm *FileManager) scrapeAndSubmit(ctx context.Context, page *Request, build func(token string) *Request) (*Result, error) {
	scraped, err := fm.client.Do(ctx, page)
	if err != nil {
		return nil, err
	}

	token, ok := ExtractToken(scraped.Body)
	if !ok {
		switch Classify(scraped.Body, ContextPage) {
		case OutcomeSessionExpired:
			return nil, fm.expired(ctx, page.URL())
		case OutcomeNotFound:
			return &Result{Outcome: OutcomeNotFound, Body: scraped.Body}, nil
		}
		return nil, &TokenMissingError{Path: page.URL()}
	}

	submit := build(token)
	resp, err := fm.client.Do(ctx, submit)
	if err != nil {
		return nil, err
	}

	outcome := Classify(resp.Body, ContextPage)
	if outcome == OutcomeSessionExpired {
		return nil, fm.expired(ctx, submit.URL())
	}
	return &Result{Outcome: outcome, Body: resp.Body}, nil
}

// expired renews the session once and reports the interrupted operation
func (fm *FileManager) expired(ctx context.Context, path string) error {
	if err := fm.sessions.Renew(ctx); err != nil {
		return errors.Join(&SessionExpiredError{Path: path}, err)
	}
	return &SessionExpiredError{Path: path, Renewed: true}
}

// CreateFile creates name with content in the directory rawPath points at,
// then reloads it and notifies operators in game
func (fm *FileManager) CreateFile(ctx context.Context, name, content, rawPath string) (*Result, error) {
	if err := fm.sessions.EnsureValidSession(ctx); err != nil {
		return nil, err
	}

	p := fm.RemotePath(name, rawPath)

	fm.reporter.Start(fmt.Sprintf("Creating file %s...", name))
	res, err := fm.scrapeAndSubmit(ctx, NewFilePage(fm.opt.BaseDir, p.Dir, fm.sessions.Headers()), func(token string) *Request {
		return NewFileRequest(NewFileParams{
			BaseDir: fm.opt.BaseDir,
			Path:    p,
			Content: content,
			Token:   token,
		}, fm.sessions.Headers())
	})
	fm.reporter.Stop()
	if err != nil {
		return nil, err
	}
	if res.Outcome == OutcomeNotFound {
		return res, &NotFoundError{Path: "/" + p.DirString()}
	}

	fm.reporter.Info(fmt.Sprintf("Created file %s", p.Leaf))

	target := fm.target(p)
	enabled := ""
	if content != "" {
		enabled = " and enabled"
	}
	if err := fm.sendCommand(ctx, "sk reload "+target); err != nil {
		return res, err
	}
	if err := fm.sendCommand(ctx, fmt.Sprintf("sendmsgtoops &e%s &fCreated%s &b%s", fm.sessions.Session().Owner, enabled, target)); err != nil {
		return res, err
	}
	return res, nil
}

// CreateFolder creates the folder name inside dir
func (fm *FileManager) CreateFolder(ctx context.Context, dir, name string) (*Result, error) {
	if err := fm.sessions.EnsureValidSession(ctx); err != nil {
		return nil, err
	}

	segments := SplitDir(dir, fm.opt.Separator)

	fm.reporter.Start("Creating new folder")
	res, err := fm.scrapeAndSubmit(ctx, NewFolderPage(fm.opt.BaseDir, segments, fm.sessions.Headers()), func(token string) *Request {
		return NewFolderRequest(NewFolderParams{
			BaseDir: fm.opt.BaseDir,
			Dir:     segments,
			Name:    name,
			Token:   token,
		}, fm.sessions.Headers())
	})
	fm.reporter.Stop()
	if err != nil {
		return nil, err
	}
	if res.Outcome == OutcomeNotFound {
		return res, &NotFoundError{Path: dir}
	}

	fm.reporter.Info(fmt.Sprintf("Created folder %s", name))
	return res, nil
}

// EditFile replaces the content of an existing file and reloads it. With
// LogErrors set the console is checked afterwards; script errors found there
// are attached to the result as a warning, the edit itself still succeeded.
// When a console command fails after the edit went through, the result is
// returned together with the error.
func (fm *FileManager) EditFile(ctx context.Context, name, content, rawPath string) (*Result, error) {
	if err := fm.sessions.EnsureValidSession(ctx); err != nil {
		return nil, err
	}

	p := fm.RemotePath(name, rawPath)

	fm.reporter.Start(fmt.Sprintf("Editing file %s...", name))
	res, err := fm.scrapeAndSubmit(ctx, EditFilePage(fm.opt.BaseDir, p, fm.sessions.Headers()), func(token string) *Request {
		return EditFileRequest(EditFileParams{
			BaseDir: fm.opt.BaseDir,
			Path:    p,
			Content: content,
			Token:   token,
		}, fm.sessions.Headers())
	})
	fm.reporter.Stop()
	if err != nil {
		return nil, err
	}
	if res.Outcome == OutcomeNotFound {
		return res, &NotFoundError{Path: "/" + p.String()}
	}

	fm.reporter.Info(fmt.Sprintf("Edited file %s", name))

	target := fm.target(p)
	owner := fm.sessions.Session().Owner
	commands := []string{
		fmt.Sprintf("sendmsgtoops &e%s &fSaved file &b%s", owner, target),
		"sk reload " + target,
		fmt.Sprintf("sendmsgtoops &e%s &fReloaded file &b%s", owner, target),
	}
	for _, cmd := range commands {
		if err := fm.sendCommand(ctx, cmd); err != nil {
			return res, err
		}
	}

	if !fm.opt.LogErrors {
		return res, nil
	}

	console, err := fm.consoleContent(ctx)
	if err != nil {
		return res, fmt.Errorf("reading console after reload: %w", err)
	}
	if report := ParseScriptErrors(console, name); report != nil {
		res.Outcome = OutcomeErrorReport
		res.Report = report
		fm.reporter.Error("Encountered an error when reloading " + name)
		fm.reporter.Error(report.Detail)
		fm.reporter.Error(fmt.Sprintf("Script reloaded with %d errors", report.ErrorCount))
	}
	return res, nil
}

// FolderExists reports whether dir exists in the file manager
func (fm *FileManager) FolderExists(ctx context.Context, dir string) (bool, error) {
	if err := fm.sessions.EnsureValidSession(ctx); err != nil {
		return false, err
	}

	page := DirectoryPage(fm.opt.BaseDir, SplitDir(dir, fm.opt.Separator), fm.sessions.Headers())
	resp, err := fm.client.Do(ctx, page)
	if err != nil {
		return false, err
	}

	switch Classify(resp.Body, ContextPage) {
	case OutcomeNotFound:
		return false, nil
	case OutcomeSessionExpired:
		return false, fm.expired(ctx, page.URL())
	default:
		return true, nil
	}
}

// SendCommand runs cmd on the server console
func (fm *FileManager) SendCommand(ctx context.Context, cmd string) error {
	if err := fm.sessions.EnsureValidSession(ctx); err != nil {
		return err
	}
	return fm.sendCommand(ctx, cmd)
}

// sendCommand posts to the console backend; the response carries nothing
func (fm *FileManager) sendCommand(ctx context.Context, cmd string) error {
	_, err := fm.client.Do(ctx, SendCommandRequest(cmd, fm.sessions.Headers()))
	return err
}

// ConsoleContent returns the current console output as plain text
func (fm *FileManager) ConsoleContent(ctx context.Context) (string, error) {
	if err := fm.sessions.EnsureValidSession(ctx); err != nil {
		return "", err
	}
	return fm.consoleContent(ctx)
}

func (fm *FileManager) consoleContent(ctx context.Context) (string, error) {
	page := ConsolePage(fm.sessions.Headers())
	resp, err := fm.client.Do(ctx, page)
	if err != nil {
		return "", err
	}
	if Classify(resp.Body, ContextPage) == OutcomeSessionExpired {
		return "", &SessionExpiredError{Path: page.URL()}
	}
	return ConsoleText(resp.Body), nil
}
