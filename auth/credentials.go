// Package auth manages the OAuth2 credential used for YouTube uploads and
// stats reads. The credential file uses the Google "authorized user" JSON
// layout so it stays interchangeable with other tooling. A Provider is an
// explicit dependency handed to callers; there is no package-level
// credential cache.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"shortsauto/storage"
)

// Scopes required for uploading and reading back statistics.
var Scopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube.readonly",
}

// ErrAuthExpired indicates no usable credential is available and the
// interactive authorization flow cannot run in this execution context.
// Run the "auth" subcommand to re-authorize.
var ErrAuthExpired = errors.New("auth: credential expired and no refresh token available")

const googleTokenURL = "https://oauth2.googleapis.com/token"

// Credential mirrors the persisted credential file.
type Credential struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry"`
}

// Provider loads the credential file once and serves valid tokens,
// refreshing when expired. Refreshed tokens are persisted back to the file
// immediately, so a crash afterwards loses nothing.
type Provider struct {
	path string

	mu   sync.Mutex
	cred *Credential
}

// NewProvider reads the credential file at path. Returns ErrAuthExpired
// (wrapped) when the file does not exist.
func NewProvider(path string) (*Provider, error) {
	cred, err := loadCredential(path)
	if err != nil {
		return nil, err
	}
	return &Provider{path: path, cred: cred}, nil
}

func loadCredential(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("credential file %s: %w", path, ErrAuthExpired)
		}
		return nil, &storage.StorageError{Op: "read", Entity: "credentials", Err: err}
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, &storage.StorageError{Op: "read", Entity: "credentials", Err: storage.ErrStorageCorrupt}
	}
	return &cred, nil
}

// Token returns a valid access token, refreshing and persisting first when
// the stored one is expired. Fails with ErrAuthExpired when a refresh is
// needed but no refresh token is stored.
func (p *Provider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok := p.cred.oauth2Token()
	if tok.Valid() {
		return tok, nil
	}

	if p.cred.RefreshToken == "" {
		return nil, ErrAuthExpired
	}

	refreshed, err := p.refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	p.cred.Token = refreshed.AccessToken
	p.cred.Expiry = refreshed.Expiry
	if refreshed.RefreshToken != "" {
		p.cred.RefreshToken = refreshed.RefreshToken
	}

	// Persist before returning so the refreshed token survives a crash.
	if err := saveCredential(p.path, p.cred); err != nil {
		return nil, err
	}
	return refreshed, nil
}

func (p *Provider) refresh(ctx context.Context) (*oauth2.Token, error) {
	conf := &oauth2.Config{
		ClientID:     p.cred.ClientID,
		ClientSecret: p.cred.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: p.cred.tokenURL()},
		Scopes:       p.cred.Scopes,
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: p.cred.RefreshToken})
	return source.Token()
}

// TokenSource adapts the provider to oauth2.TokenSource for API clients.
func (p *Provider) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &providerTokenSource{ctx: ctx, provider: p}
}

type providerTokenSource struct {
	ctx      context.Context
	provider *Provider
}

func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	return s.provider.Token(s.ctx)
}

func (c *Credential) oauth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.Token,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       c.Expiry,
	}
}

func (c *Credential) tokenURL() string {
	if c.TokenURI != "" {
		return c.TokenURI
	}
	return googleTokenURL
}

func saveCredential(path string, cred *Credential) error {
	writer, err := storage.NewAtomicWriter(path)
	if err != nil {
		return &storage.StorageError{Op: "write", Entity: "credentials", Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cred); err != nil {
		writer.Abort()
		return &storage.StorageError{Op: "write", Entity: "credentials", Err: err}
	}
	if err := writer.Commit(); err != nil {
		return &storage.StorageError{Op: "write", Entity: "credentials", Err: err}
	}
	return nil
}
