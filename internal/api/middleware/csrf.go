package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const (
	csrfTokenLength = 32
	csrfCookieName  = "csrf_token"
	csrfHeaderName  = "X-CSRF-Token"
	csrfFormField   = "csrf_token"
	csrfTokenTTL    = 24 * time.Hour

	// Expired entries are swept after this many new tokens.
	csrfSweepEvery = 256
)

type csrfEntry struct {
	token   string
	expires time.Time
}

// CSRFStore holds one form token per signed-in session, in memory. Tokens do
// not survive a restart; the dashboard simply issues a new one.
type CSRFStore struct {
	mu      sync.Mutex
	entries map[string]csrfEntry
	issued  int
	now     func() time.Time
}

func NewCSRFStore() *CSRFStore {
	return &CSRFStore{
		entries: make(map[string]csrfEntry),
		now:     time.Now,
	}
}

// GetOrCreate returns the session's live token, minting one if needed. It
// returns "" only if the system random source fails.
func (s *CSRFStore) GetOrCreate(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[sessionID]; ok && now.Before(e.expires) {
		return e.token
	}

	buf := make([]byte, csrfTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	s.entries[sessionID] = csrfEntry{token: token, expires: now.Add(csrfTokenTTL)}

	s.issued++
	if s.issued%csrfSweepEvery == 0 {
		s.sweep(now)
	}
	return token
}

// Validate compares in constant time against the session's live token.
func (s *CSRFStore) Validate(sessionID, provided string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok || provided == "" || !s.now().Before(e.expires) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(e.token), []byte(provided)) == 1
}

// sweep drops expired entries. Callers hold s.mu.
func (s *CSRFStore) sweep(now time.Time) {
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
		}
	}
}

func (s *CSRFStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// CSRF guards cookie-session form posts. Safe methods only make sure the
// token cookie exists; Bearer-authenticated calls are exempt.
func CSRF(store *CSRFStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				ensureCSRFCookie(w, r, store)
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Authorization") != "" {
				next.ServeHTTP(w, r)
				return
			}

			sessionID := getSessionID(r)
			if sessionID == "" {
				http.Error(w, "Session required", http.StatusForbidden)
				return
			}

			provided := r.Header.Get(csrfHeaderName)
			if provided == "" {
				provided = r.FormValue(csrfFormField)
			}
			if provided == "" {
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}
			if !store.Validate(sessionID, provided) {
				http.Error(w, "Invalid CSRF token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, store *CSRFStore) {
	sessionID := getSessionID(r)
	if sessionID == "" {
		return
	}
	if _, err := r.Cookie(csrfCookieName); err == nil {
		return
	}

	token := store.GetOrCreate(sessionID)
	if token == "" {
		return
	}
	// Readable from scripts so fetch calls can echo it in X-CSRF-Token.
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenTTL.Seconds()),
	})
}

// getSessionID derives a session identifier from the session cookie. JWTs
// share their header prefix, so the whole token is hashed.
func getSessionID(r *http.Request) string {
	cookie, err := r.Cookie("token")
	if err != nil || cookie.Value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(cookie.Value))
	return hex.EncodeToString(sum[:16])
}

// GetCSRFToken returns the token to embed in a page's forms.
func GetCSRFToken(r *http.Request, store *CSRFStore) string {
	sessionID := getSessionID(r)
	if sessionID == "" {
		return ""
	}
	return store.GetOrCreate(sessionID)
}
