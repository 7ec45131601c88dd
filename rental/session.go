package rental

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"
)

var (
	// ErrAuthFailed covers both rejected credentials and an unreachable
	// auth endpoint; callers cannot tell them apart and should not try.
	ErrAuthFailed = errors.New("authentication failed")
)

const (
	sessionDBFile  = "session.db"
	sessionKeyFile = "session.key"
)

// SessionStore is the single source of truth for who is logged in. The live
// session is kept in memory and mirrored to a local SQLite file; the bearer
// token is encoded at rest with a machine-local key so the database alone
// does not leak a usable credential.
type SessionStore struct {
	db      *sessionDB
	codec   *securecookie.SecureCookie
	httpc   *http.Client
	baseURL string

	mu      sync.Mutex
	current *Session
	subs    map[int]func(*Session)
	nextSub int
}

// OpenSessionStore opens the durable storage under dataDir. It does not
// restore the previous session; call Restore for that.
func OpenSessionStore(dataDir, baseURL string, timeout time.Duration) (*SessionStore, error) {
	db, err := openSessionDB(filepath.Join(dataDir, sessionDBFile))
	if err != nil {
		return nil, err
	}
	codec, err := loadSessionCodec(filepath.Join(dataDir, sessionKeyFile))
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SessionStore{
		db:      db,
		codec:   codec,
		httpc:   &http.Client{Timeout: timeout},
		baseURL: baseURL,
		subs:    make(map[int]func(*Session)),
	}, nil
}

// Close releases the underlying database.
func (s *SessionStore) Close() error { return s.db.Close() }

// loadSessionCodec reads the local encoding key, generating it on first run.
// The file holds a 32-byte HMAC key followed by a 32-byte AES key.
func loadSessionCodec(path string) (*securecookie.SecureCookie, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		raw = append(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32)...)
		if len(raw) != 64 {
			return nil, errors.New("session key generation failed")
		}
		if err := os.WriteFile(path, raw, 0o600); err != nil {
			return nil, fmt.Errorf("write session key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read session key: %w", err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("session key file %s is corrupt", path)
	}
	sc := securecookie.New(raw[:32], raw[32:])
	sc.MaxAge(0) // tokens expire server-side, not here
	return sc, nil
}

// Restore establishes the previously persisted session, if all required
// fields are present. No network call is made; an expired token is the
// server's problem to reject later.
func (s *SessionStore) Restore() {
	vals, err := s.db.load()
	if err != nil {
		log.Printf("WARN: session restore: %v", err)
		return
	}
	token := s.decodeToken(vals[keyToken])
	name, role := vals[keyName], vals[keyRole]
	if token == "" || name == "" || role == "" {
		return
	}
	sess := &Session{Token: token, Name: name, Role: Role(role), Email: vals[keyEmail]}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
	s.notifyLocked()
}

// Login authenticates against POST {base}/auth/login and establishes the
// returned session. Bad credentials and an unreachable server surface the
// same way; the current session is untouched on any failure.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: server returned status %d", ErrAuthFailed, resp.StatusCode)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: malformed login response", ErrAuthFailed)
	}
	if sess.Token == "" || sess.Name == "" || sess.Role == "" {
		return nil, fmt.Errorf("%w: incomplete login response", ErrAuthFailed)
	}
	if err := s.Establish(sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Establish persists every session field in one transaction, swaps the live
// session, and notifies subscribers. Subscribers observe establish/clear
// calls in order; no partial state is ever visible.
func (s *SessionStore) Establish(sess Session) error {
	encToken, err := s.codec.Encode(keyToken, sess.Token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	vals := map[string]string{
		keyToken: encToken,
		keyName:  sess.Name,
		keyRole:  string(sess.Role),
	}
	if sess.Email != "" {
		vals[keyEmail] = sess.Email
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.replace(vals); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	copied := sess
	s.current = &copied
	s.notifyLocked()
	return nil
}

// Clear erases every persisted field and publishes absence.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.current = nil
	s.notifyLocked()
	return nil
}

// Current returns a copy of the live session, or nil when logged out.
func (s *SessionStore) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

// Subscribe registers fn, delivers the current value immediately, and then
// every subsequent change until the returned function is called. Callbacks
// run synchronously under the store lock and must not call back into it.
func (s *SessionStore) Subscribe(fn func(*Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	cur := s.current
	var copied *Session
	if cur != nil {
		c := *cur
		copied = &c
	}
	fn(copied)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) notifyLocked() {
	var copied *Session
	if s.current != nil {
		c := *s.current
		copied = &c
	}
	for _, fn := range s.subs {
		fn(copied)
	}
}

// Token reads the persisted credential fresh from durable storage. It is what
// the request pipeline calls per request, so a logout between two requests is
// always observed.
func (s *SessionStore) Token() string {
	enc, err := s.db.get(keyToken)
	if err != nil {
		log.Printf("WARN: read token: %v", err)
		return ""
	}
	return s.decodeToken(enc)
}

func (s *SessionStore) decodeToken(encoded string) string {
	if encoded == "" {
		return ""
	}
	var token string
	if err := s.codec.Decode(keyToken, encoded, &token); err != nil {
		log.Printf("WARN: stored token is unreadable, treating session as absent: %v", err)
		return ""
	}
	return token
}

// TokenClaims decodes the persisted bearer token as a JWT without verifying
// it, for display only (e.g. the expiry in whoami). Non-JWT tokens simply
// yield nothing.
func (s *SessionStore) TokenClaims() (jwt.MapClaims, bool) {
	token := s.Token()
	if token == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
