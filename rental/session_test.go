package rental

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

func testStore(t *testing.T, dir, baseURL string) *SessionStore {
	t.Helper()
	s, err := OpenSessionStore(dir, baseURL, 5*time.Second)
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mintToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin@rental.test",
		"exp": expiry.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// loginServer answers POST /auth/login with the given status and body.
func loginServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}).Methods(http.MethodPost)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	s1 := testStore(t, dir, "http://unused")

	want := Session{Token: "tok-123", Name: "Ana", Role: RoleAdmin, Email: "ana@rental.test"}
	if err := s1.Establish(want); err != nil {
		t.Fatalf("establish: %v", err)
	}
	s1.Close()

	s2 := testStore(t, dir, "http://unused")
	if s2.Current() != nil {
		t.Fatal("session should not be live before Restore")
	}
	s2.Restore()

	got := s2.Current()
	if got == nil {
		t.Fatal("expected restored session")
	}
	if *got != want {
		t.Fatalf("restored %+v, want %+v", *got, want)
	}
}

func TestRestoreIgnoresPartialSession(t *testing.T) {
	dir := t.TempDir()
	s := testStore(t, dir, "http://unused")

	// A row set missing the role must read as logged out.
	enc, err := s.codec.Encode(keyToken, "tok-123")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := s.db.replace(map[string]string{keyToken: enc, keyName: "Ana"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	s.Restore()
	if s.Current() != nil {
		t.Fatal("partial session must not restore")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	dir := t.TempDir()
	s := testStore(t, dir, "http://unused")

	if err := s.Establish(Session{Token: "tok", Name: "Ana", Role: RoleSeller}); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.Current() != nil {
		t.Fatal("current should be nil after clear")
	}
	if s.Token() != "" {
		t.Fatal("token should be gone after clear")
	}

	s.Close()
	s2 := testStore(t, dir, "http://unused")
	s2.Restore()
	if s2.Current() != nil {
		t.Fatal("cleared session must not restore")
	}
}

func TestTokenEncodedAtRest(t *testing.T) {
	s := testStore(t, t.TempDir(), "http://unused")

	if err := s.Establish(Session{Token: "plain-token", Name: "Ana", Role: RoleAdmin}); err != nil {
		t.Fatalf("establish: %v", err)
	}

	stored, err := s.db.get(keyToken)
	if err != nil {
		t.Fatalf("read stored token: %v", err)
	}
	if stored == "" || stored == "plain-token" {
		t.Fatalf("token must be stored encoded, got %q", stored)
	}
	if got := s.Token(); got != "plain-token" {
		t.Fatalf("Token() = %q, want plain-token", got)
	}
}

func TestCorruptStoredTokenReadsAsAbsent(t *testing.T) {
	s := testStore(t, t.TempDir(), "http://unused")

	if err := s.db.replace(map[string]string{
		keyToken: "not-a-valid-encoding",
		keyName:  "Ana",
		keyRole:  string(RoleAdmin),
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if got := s.Token(); got != "" {
		t.Fatalf("unreadable token should yield \"\", got %q", got)
	}
	s.Restore()
	if s.Current() != nil {
		t.Fatal("unreadable token must not restore a session")
	}
}

func TestSubscribeDeliversImmediatelyAndOnChange(t *testing.T) {
	s := testStore(t, t.TempDir(), "http://unused")

	var seen []*Session
	unsubscribe := s.Subscribe(func(sess *Session) { seen = append(seen, sess) })

	if len(seen) != 1 || seen[0] != nil {
		t.Fatalf("want immediate nil delivery, got %v", seen)
	}

	if err := s.Establish(Session{Token: "tok", Name: "Ana", Role: RoleAdmin}); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if len(seen) != 2 || seen[1] == nil || seen[1].Name != "Ana" {
		t.Fatalf("want establish delivery, got %v", seen)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(seen) != 3 || seen[2] != nil {
		t.Fatalf("want clear delivery, got %v", seen)
	}

	unsubscribe()
	if err := s.Establish(Session{Token: "tok", Name: "Ana", Role: RoleAdmin}); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("unsubscribed callback still ran, got %d deliveries", len(seen))
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	token := mintToken(t, time.Now().Add(time.Hour))
	srv := loginServer(t, http.StatusOK, map[string]string{
		"token":  token,
		"nombre": "Ana",
		"rol":    "ADMIN",
		"email":  "ana@rental.test",
	})
	s := testStore(t, t.TempDir(), srv.URL)

	sess, err := s.Login(context.Background(), "ana@rental.test", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Name != "Ana" || sess.Role != RoleAdmin {
		t.Fatalf("unexpected session %+v", sess)
	}
	if got := s.Token(); got != token {
		t.Fatal("persisted token does not round-trip")
	}

	claims, ok := s.TokenClaims()
	if !ok {
		t.Fatal("expected decodable claims")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("expiry claim: %v", err)
	}
}

func TestLoginRejectedLeavesSessionUntouched(t *testing.T) {
	srv := loginServer(t, http.StatusUnauthorized, map[string]string{"error": "bad credentials"})
	s := testStore(t, t.TempDir(), srv.URL)

	if err := s.Establish(Session{Token: "old", Name: "Ana", Role: RoleAdmin}); err != nil {
		t.Fatalf("establish: %v", err)
	}

	_, err := s.Login(context.Background(), "ana@rental.test", "wrong")
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("want ErrAuthFailed, got %v", err)
	}
	if got := s.Current(); got == nil || got.Name != "Ana" {
		t.Fatal("failed login must not touch the current session")
	}
}

func TestLoginIncompleteResponse(t *testing.T) {
	srv := loginServer(t, http.StatusOK, map[string]string{"token": "tok"})
	s := testStore(t, t.TempDir(), srv.URL)

	_, err := s.Login(context.Background(), "ana@rental.test", "secret")
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("want ErrAuthFailed, got %v", err)
	}
}

func TestLoginUnreachableServer(t *testing.T) {
	s := testStore(t, t.TempDir(), "http://127.0.0.1:1")

	_, err := s.Login(context.Background(), "ana@rental.test", "secret")
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("want ErrAuthFailed, got %v", err)
	}
}

func TestTokenClaimsNonJWT(t *testing.T) {
	s := testStore(t, t.TempDir(), "http://unused")
	if err := s.Establish(Session{Token: "opaque-token", Name: "Ana", Role: RoleAdmin}); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if _, ok := s.TokenClaims(); ok {
		t.Fatal("opaque token must not decode as JWT")
	}
}

func TestCanEnterProtected(t *testing.T) {
	dir := t.TempDir()
	s := testStore(t, dir, "http://unused")

	if CanEnterProtected(s) {
		t.Fatal("fresh store must not pass the guard")
	}
	if err := s.Establish(Session{Token: "tok", Name: "Ana", Role: RoleAdmin}); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if !CanEnterProtected(s) {
		t.Fatal("live session must pass the guard")
	}
	s.Close()

	// A persisted credential passes even before Restore.
	s2 := testStore(t, dir, "http://unused")
	if s2.Current() != nil {
		t.Fatal("no live session expected")
	}
	if !CanEnterProtected(s2) {
		t.Fatal("persisted credential must pass the guard")
	}

	if err := s2.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if CanEnterProtected(s2) {
		t.Fatal("cleared store must not pass the guard")
	}
}
