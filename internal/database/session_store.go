package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// SessionStore implements gorilla/sessions.Store on sqlite. The cookie
// carries only the session ID; the values live in the sessions table.
// The web OAuth flow keeps its state nonce here.
type SessionStore struct {
	db      *DB
	codecs  []securecookie.Codec
	options *sessions.Options
}

// NewSessionStore creates a database-backed session store.
func NewSessionStore(db *DB, keyPairs ...[]byte) *SessionStore {
	return &SessionStore{
		db:     db,
		codecs: securecookie.CodecsFromPairs(keyPairs...),
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   86400 * 7,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// SetOptions overrides the default cookie options.
func (s *SessionStore) SetOptions(options *sessions.Options) {
	s.options = options
}

// Get returns a session for the given name after adding it to the registry.
func (s *SessionStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New creates a session, loading stored values when the request carries
// a valid session cookie.
func (s *SessionStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	sessionID := ""
	if err := securecookie.DecodeMulti(name, cookie.Value, &sessionID, s.codecs...); err != nil {
		return session, nil
	}

	data, err := s.loadFromDB(sessionID)
	if err != nil {
		return session, nil
	}

	// gorilla uses interface{} keys; JSON round-trips string keys.
	var values map[string]interface{}
	if err := json.Unmarshal(data, &values); err != nil {
		return session, nil
	}
	for k, v := range values {
		session.Values[k] = v
	}

	session.ID = sessionID
	session.IsNew = false
	return session, nil
}

// Save persists the session to the database.
func (s *SessionStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.deleteFromDB(session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = s.generateSessionID()
	}

	values := make(map[string]interface{})
	for k, v := range session.Values {
		if key, ok := k.(string); ok {
			values[key] = v
		}
	}

	data, err := json.Marshal(values)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(time.Duration(session.Options.MaxAge) * time.Second)
	if err := s.saveToDB(session.ID, data, expiresAt); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return err
	}

	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *SessionStore) generateSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}

func (s *SessionStore) saveToDB(sessionID string, data []byte, expiresAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (session_id, data, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			data = excluded.data,
			expires_at = excluded.expires_at
	`, sessionID, string(data), expiresAt)
	return err
}

func (s *SessionStore) loadFromDB(sessionID string) ([]byte, error) {
	var data string
	err := s.db.QueryRow(`
		SELECT data FROM sessions
		WHERE session_id = ? AND expires_at > datetime('now')
	`, sessionID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found or expired")
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (s *SessionStore) deleteFromDB(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

// CleanupExpiredSessions removes expired sessions. Called from the
// scheduler.
func (s *SessionStore) CleanupExpiredSessions() error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= datetime('now')`)
	return err
}
