package google

import "fmt"

// ParseError is a malformed or incomplete service-account bundle.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid service account: %s: %v", e.Reason, e.Err)
	}
	return "invalid service account: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TokenExchangeError means the token endpoint rejected the signed assertion
// or answered without an access token.
type TokenExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TokenExchangeError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("token exchange failed: status %d: %s", e.StatusCode, e.Body)
	default:
		return "token exchange failed: no access token in response"
	}
}

func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}
