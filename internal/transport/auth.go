package transport

import (
	"net/http"

	"golang.org/x/oauth2"
)

// TokenSource supplies the current bearer token. An empty token means the
// request goes out without an Authorization header.
type TokenSource interface {
	Token() string
}

// bearerTransport reads the token on every round trip, so a login or
// logout between two calls is always observed.
type bearerTransport struct {
	tokens TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var token string
	if t.tokens != nil {
		token = t.tokens.Token()
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}
	rt := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return rt.RoundTrip(req)
}
