package dashfm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultUserAgent is sent when Options leave the user agent empty
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) cubedfm"

// Dashboard is what front ends use to drive one dashboard account.
// Calls against one Dashboard must not overlap.
type Dashboard interface {
	// Session lifecycle
	Login(ctx context.Context, username, password string) (string, error)
	CheckAndUpdateSession(ctx context.Context) error
	Servers(ctx context.Context) ([]Server, error)
	SelectServer(ctx context.Context, id int) error
	Session() *Session

	// File manager
	CreateFile(ctx context.Context, name, content, rawPath string) (*Result, error)
	CreateFolder(ctx context.Context, dir, name string) (*Result, error)
	EditFile(ctx context.Context, name, content, rawPath string) (*Result, error)
	FolderExists(ctx context.Context, dir string) (bool, error)

	// Console
	SendCommand(ctx context.Context, cmd string) error
	ConsoleContent(ctx context.Context) (string, error)

	// Persistence
	Sync() error
	Logout() error
}

// Options configure a Dashboard
type Options struct {
	Endpoint      string
	BaseDir       string
	FolderSupport bool
	LogErrors     bool
	PathSeparator string
	Insecure      bool
	Timeout       time.Duration
	SessionFile   string // Empty disables session persistence
	UserAgent     string
	Logger        logrus.FieldLogger
	Reporter      Reporter
}

// dashboard implements Dashboard
type dashboard struct {
	endpoint string
	sessions *SessionController
	files    *FileManager
	store    *SessionStore
}

// NewDashboard creates a Dashboard for session. A credential stored for the
// endpoint is restored when the session has none.
func NewDashboard(opt Options, session *Session) (Dashboard, error) {
	if opt.Endpoint == "" {
		opt.Endpoint = DefaultEndpoint
	}
	if opt.Timeout == 0 {
		opt.Timeout = DefaultTimeout
	}
	if opt.UserAgent == "" {
		opt.UserAgent = DefaultUserAgent
	}
	if opt.Reporter == nil {
		opt.Reporter = NopReporter{}
	}
	if session == nil {
		session = &Session{}
	}

	client, err := NewClient(opt.Endpoint, opt.Insecure, opt.Timeout, opt.Logger)
	if err != nil {
		return nil, err
	}

	store := NewSessionStore(opt.SessionFile, client.log)
	if restored, err := store.Load(client.Endpoint(), session); err != nil {
		client.log.WithError(err).Warn("ignoring session store")
	} else if restored {
		client.log.WithField("file", store.File()).Debug("restored session")
	}

	sessions := NewSessionController(client, session, opt.UserAgent, opt.Reporter)
	files := NewFileManager(client, sessions, FileOptions{
		BaseDir:       opt.BaseDir,
		FolderSupport: opt.FolderSupport,
		LogErrors:     opt.LogErrors,
		Separator:     opt.PathSeparator,
	}, opt.Reporter)

	return &dashboard{
		endpoint: client.Endpoint(),
		sessions: sessions,
		files:    files,
		store:    store,
	}, nil
}

func (d *dashboard) Login(ctx context.Context, username, password string) (string, error) {
	return d.sessions.Login(ctx, username, password)
}

// CheckAndUpdateSession renews the session if the dashboard reports it expired
func (d *dashboard) CheckAndUpdateSession(ctx context.Context) error {
	return d.sessions.EnsureValidSession(ctx)
}

func (d *dashboard) Servers(ctx context.Context) ([]Server, error) {
	if err := d.sessions.EnsureValidSession(ctx); err != nil {
		return nil, err
	}
	return d.sessions.Servers(ctx)
}

func (d *dashboard) SelectServer(ctx context.Context, id int) error {
	if err := d.sessions.EnsureValidSession(ctx); err != nil {
		return err
	}
	return d.sessions.SelectServer(ctx, id)
}

func (d *dashboard) Session() *Session {
	return d.sessions.Session()
}

func (d *dashboard) CreateFile(ctx context.Context, name, content, rawPath string) (*Result, error) {
	return d.files.CreateFile(ctx, name, content, rawPath)
}

func (d *dashboard) CreateFolder(ctx context.Context, dir, name string) (*Result, error) {
	return d.files.CreateFolder(ctx, dir, name)
}

func (d *dashboard) EditFile(ctx context.Context, name, content, rawPath string) (*Result, error) {
	return d.files.EditFile(ctx, name, content, rawPath)
}

func (d *dashboard) FolderExists(ctx context.Context, dir string) (bool, error) {
	return d.files.FolderExists(ctx, dir)
}

func (d *dashboard) SendCommand(ctx context.Context, cmd string) error {
	return d.files.SendCommand(ctx, cmd)
}

func (d *dashboard) ConsoleContent(ctx context.Context) (string, error) {
	return d.files.ConsoleContent(ctx)
}

// Sync saves the session to the session store
func (d *dashboard) Sync() error {
	if d.sessions.Session().Credential == "" {
		return nil
	}
	return d.store.Save(d.endpoint, d.sessions.Session())
}

// Logout forgets the credential locally and in the session store
func (d *dashboard) Logout() error {
	d.sessions.Session().Forget()
	return d.store.Forget(d.endpoint)
}
