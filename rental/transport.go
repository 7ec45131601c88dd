package rental

import (
	"net/http"

	"github.com/google/uuid"
)

// TokenSource supplies the current credential. Implementations must read it
// fresh on every call; the session can change between two requests.
type TokenSource interface {
	Token() string
}

// AuthTransport attaches the live credential to outgoing requests so call
// sites never handle it. When no credential is persisted the request goes out
// without an Authorization header. There is no retry and no refresh-on-401;
// re-authentication is a user action.
type AuthTransport struct {
	Source TokenSource
	Base   http.RoundTripper
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.NewString())
	}
	if token := t.Source.Token(); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(out)
}
