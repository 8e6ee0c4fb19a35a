package google

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"
	jwtBearerGrant    = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionLifetime = time.Hour
)

// Minter exchanges a signed service-account assertion for an access token.
// Every call to Token mints a fresh assertion and performs a new exchange.
type Minter struct {
	account *ServiceAccount
	key     *rsa.PrivateKey
	scope   string
	client  *http.Client
	now     func() time.Time
}

// NewMinter parses the account's signing key up front so a bad key fails at
// startup. A nil client uses http.DefaultClient.
func NewMinter(sa *ServiceAccount, client *http.Client) (*Minter, error) {
	key, err := sa.SigningKey()
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Minter{
		account: sa,
		key:     key,
		scope:   SpreadsheetsScope,
		client:  client,
		now:     time.Now,
	}, nil
}

// Assertion builds the RS256-signed JWT presented to the token endpoint.
func (m *Minter) Assertion() (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"iss":   m.account.ClientEmail,
		"scope": m.scope,
		"aud":   m.account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if m.account.PrivateKeyID != "" {
		token.Header["kid"] = m.account.PrivateKeyID
	}

	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("signing assertion: %w", err)
	}
	return signed, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token mints a new access token.
func (m *Minter) Token(ctx context.Context) (*oauth2.Token, error) {
	assertion, err := m.Assertion()
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.account.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &TokenExchangeError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TokenExchangeError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &TokenExchangeError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if out.AccessToken == "" {
		return nil, &TokenExchangeError{StatusCode: resp.StatusCode}
	}

	tok := &oauth2.Token{
		AccessToken: out.AccessToken,
		TokenType:   out.TokenType,
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if out.ExpiresIn > 0 {
		tok.Expiry = m.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return tok, nil
}
