package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// defaultExpirySeconds is applied when a token response omits
// expires_in. eBay user access tokens live two hours.
const defaultExpirySeconds = 7200

// Token is the persisted OAuth token pair for one environment.
// ExpiresAt is nil when the expiry is unknown; an unknown expiry is
// treated as still valid.
type Token struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Environment  string     `json:"environment,omitempty"`
}

// Valid reports whether the access token can still be used.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return t.ExpiresAt == nil || time.Now().Before(*t.ExpiresAt)
}

// Store persists the single token slot for a process.
type Store interface {
	Load() (*Token, error)
	Save(token *Token) error
}

// FileStore keeps the token as a JSON file, overwritten wholesale on
// every save. An optional cipher encrypts the file at rest.
type FileStore struct {
	Path   string
	Cipher Cipher
}

// Cipher is the minimal encryption surface a FileStore needs.
type Cipher interface {
	Encrypt(plaintext string) ([]byte, error)
	Decrypt(data []byte) (string, error)
}

func (s *FileStore) Load() (*Token, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	if s.Cipher != nil {
		plain, err := s.Cipher.Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt token file: %w", err)
		}
		data = []byte(plain)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

func (s *FileStore) Save(token *Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if s.Cipher != nil {
		encrypted, err := s.Cipher.Encrypt(string(data))
		if err != nil {
			return fmt.Errorf("failed to encrypt token: %w", err)
		}
		data = encrypted
	}

	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// MemoryStore holds the token in memory. Used in tests and one-shot
// runs that should not touch disk.
type MemoryStore struct {
	mu    sync.Mutex
	token *Token
	Saves int
}

func (s *MemoryStore) Load() (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryStore) Save(token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *token
	s.token = &copied
	s.Saves++
	return nil
}

// SetToken seeds the store, for tests.
func (s *MemoryStore) SetToken(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// TokenManager owns the process's single token slot: it loads the
// token lazily, refreshes it when expired, and persists successful
// refreshes. It never retries a failed refresh.
type TokenManager struct {
	clientID     string
	clientSecret string
	tokenURL     string
	environment  string
	store        Store
	httpClient   *http.Client

	mu     sync.Mutex
	token  *Token
	loaded bool
}

// NewTokenManager builds a manager for one environment's token slot.
func NewTokenManager(clientID, clientSecret, tokenURL, environment string, store Store) *TokenManager {
	return &TokenManager{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		environment:  environment,
		store:        store,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// EnsureValidToken makes the token usable if it can: a valid token
// passes through with no network traffic, an expired one with a
// refresh token gets exactly one refresh attempt. It returns false
// when no usable token can be produced; the caller decides whether
// that is fatal.
func (m *TokenManager) EnsureValidToken(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		m.loaded = true
		token, err := m.store.Load()
		if err != nil {
			log.Printf("Failed to load stored token: %v", err)
		} else {
			m.token = token
		}
	}

	if m.token == nil || m.token.AccessToken == "" {
		return false
	}
	if m.token.Valid() {
		return true
	}
	if m.token.RefreshToken == "" {
		log.Printf("Access token expired and no refresh token available")
		return false
	}

	return m.refresh(ctx)
}

// AccessToken returns the current access token, empty if none.
func (m *TokenManager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return ""
	}
	return m.token.AccessToken
}

// Status reports whether a token is present and when it expires.
func (m *TokenManager) Status() (authenticated bool, expiresAt *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil || m.token.AccessToken == "" {
		return false, nil
	}
	return m.token.Valid(), m.token.ExpiresAt
}

// SetToken installs a freshly issued token pair and persists it.
// Used after the authorization-code exchange.
func (m *TokenManager) SetToken(accessToken, refreshToken string, expiresIn int) error {
	if expiresIn <= 0 {
		expiresIn = defaultExpirySeconds
	}
	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = true
	m.token = &Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    &expiresAt,
		Environment:  m.environment,
	}
	return m.store.Save(m.token)
}

// refresh performs one refresh-grant POST. On success the token slot
// and store are updated; on any failure the stored token is left
// untouched. Caller holds the lock.
func (m *TokenManager) refresh(ctx context.Context) bool {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", m.token.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, "POST", m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("Token refresh failed: %v", err)
		return false
	}
	req.SetBasicAuth(m.clientID, m.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		log.Printf("Token refresh failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Token refresh failed: %v", err)
		return false
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("Token refresh failed: %v", newAPIError(resp.StatusCode, body))
		return false
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("Token refresh failed: invalid response body: %v", err)
		return false
	}
	if result.AccessToken == "" {
		log.Printf("Token refresh failed: response contained no access token")
		return false
	}

	expiresIn := result.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpirySeconds
	}
	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)

	m.token.AccessToken = result.AccessToken
	m.token.ExpiresAt = &expiresAt
	m.token.Environment = m.environment

	if err := m.store.Save(m.token); err != nil {
		log.Printf("Failed to persist refreshed token: %v", err)
	}
	return true
}
