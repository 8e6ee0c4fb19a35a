package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// TokenProvider yields an access token for the Sheets API.
type TokenProvider interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

const refreshSkew = time.Minute

// CachingProvider reuses a token until it is within a minute of expiring.
type CachingProvider struct {
	next TokenProvider
	now  func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

func NewCachingProvider(next TokenProvider) *CachingProvider {
	return &CachingProvider{next: next, now: time.Now}
}

func (p *CachingProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fresh() {
		return p.token, nil
	}

	tok, err := p.next.Token(ctx)
	if err != nil {
		return nil, err
	}
	p.token = tok
	return tok, nil
}

func (p *CachingProvider) fresh() bool {
	if p.token == nil {
		return false
	}
	// Tokens without an expiry are never cached.
	if p.token.Expiry.IsZero() {
		return false
	}
	return p.now().Add(refreshSkew).Before(p.token.Expiry)
}

type providerSource struct {
	ctx      context.Context
	provider TokenProvider
}

func (s providerSource) Token() (*oauth2.Token, error) {
	return s.provider.Token(s.ctx)
}

// TokenSource adapts a provider for oauth2.Transport, which calls Token on
// every request. Wrapping it in oauth2.ReuseTokenSource (as
// option.WithTokenSource does) would cache tokens regardless of the provider.
func TokenSource(ctx context.Context, p TokenProvider) oauth2.TokenSource {
	return providerSource{ctx: ctx, provider: p}
}

var (
	_ TokenProvider = (*Minter)(nil)
	_ TokenProvider = (*CachingProvider)(nil)
)
