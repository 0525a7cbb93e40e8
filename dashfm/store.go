package dashfm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/buger/jsonparser"
	"github.com/sirupsen/logrus"
)

// SessionStore persists session cookies between runs, one entry per
// dashboard endpoint. Passwords are never written.
type SessionStore struct {
	file string
	log  logrus.FieldLogger
	mu   sync.Mutex
}

// storeEntry represents a serialized session for persistence
type storeEntry struct {
	Credential string `json:"credential"`
	ServerID   int    `json:"serverId"`
	Owner      string `json:"owner"`
	SavedAt    string `json:"savedAt"`
}

// DefaultSessionFile returns the session file name used for endpoint
func DefaultSessionFile(endpoint string) string {
	host := "dashboard"
	if u, err := url.Parse(endpoint); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return fmt.Sprintf(".cubedfm_session_%s.json", host)
}

// NewSessionStore creates a store backed by file. An empty file name
// disables persistence.
func NewSessionStore(file string, log logrus.FieldLogger) *SessionStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SessionStore{file: file, log: log}
}

// File returns the backing file name
func (s *SessionStore) File() string {
	return s.file
}

// Save records session under endpoint, keeping entries of other endpoints
func (s *SessionStore) Save(endpoint string, session *Session) error {
	if s.file == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, _, err := s.readForWrite()
	if err != nil {
		return err
	}
	entries[endpoint] = storeEntry{
		Credential: session.Credential,
		ServerID:   session.ServerID,
		Owner:      session.Owner,
		SavedAt:    time.Now().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.file, data, 0600)
}

// Load restores the entry saved for endpoint into session. It returns false
// if nothing usable was stored. Stored values never replace a credential the
// session already holds.
func (s *SessionStore) Load(endpoint string, session *Session) (bool, error) {
	if s.file == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return false, err
	}

	entry, ok := entries[endpoint]
	if !ok || entry.Credential == "" {
		return false, nil
	}
	if session.Credential != "" {
		return false, nil
	}

	session.Credential = entry.Credential
	if session.ServerID == 0 {
		session.ServerID = entry.ServerID
	}
	if session.Owner == "" {
		session.Owner = entry.Owner
	}
	return true, nil
}

// Forget removes the entry saved for endpoint
func (s *SessionStore) Forget(endpoint string) error {
	if s.file == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, repaired, err := s.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := entries[endpoint]; !ok && !repaired {
		return nil
	}
	delete(entries, endpoint)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.file, data, 0600)
}

// readForWrite reads the entries a write starts from. A file that does not
// parse is dropped, repaired reports that the write must replace it.
func (s *SessionStore) readForWrite() (entries map[string]storeEntry, repaired bool, err error) {
	entries, err = s.readAll()
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		s.log.WithError(err).Warn("overwriting unreadable session store")
		return make(map[string]storeEntry), true, nil
	}
	return entries, false, err
}

// readAll parses the store file, skipping entries that are not objects
func (s *SessionStore) readAll() (map[string]storeEntry, error) {
	entries := make(map[string]storeEntry)

	data, err := os.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil // No store file yet
		}
		return nil, err
	}

	err = jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		if dataType != jsonparser.Object {
			return nil // Skip corrupted entries
		}
		credential, err := jsonparser.GetString(value, "credential")
		if err != nil {
			return nil
		}
		serverID, _ := jsonparser.GetInt(value, "serverId")
		owner, _ := jsonparser.GetString(value, "owner")
		savedAt, _ := jsonparser.GetString(value, "savedAt")

		endpoint, err := jsonparser.ParseString(key)
		if err != nil {
			return nil
		}
		entries[endpoint] = storeEntry{
			Credential: credential,
			ServerID:   int(serverID),
			Owner:      owner,
			SavedAt:    savedAt,
		}
		return nil
	})
	if err != nil {
		return nil, &ParseError{Path: s.file, Err: err}
	}

	return entries, nil
}
