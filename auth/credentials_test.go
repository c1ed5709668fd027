package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCredFile(t *testing.T, cred *Credential) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	data, err := json.Marshal(cred)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestNewProviderMissingFile(t *testing.T) {
	_, err := NewProvider(filepath.Join(t.TempDir(), "credentials.json"))
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestNewProviderCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := NewProvider(path)
	assert.Error(t, err)
}

func TestTokenValidNoRefresh(t *testing.T) {
	path := writeCredFile(t, &Credential{
		Token:  "still-good",
		Expiry: time.Now().Add(time.Hour),
	})

	p, err := NewProvider(path)
	require.NoError(t, err)

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "still-good", tok.AccessToken)
}

func TestTokenExpiredWithoutRefreshToken(t *testing.T) {
	path := writeCredFile(t, &Credential{
		Token:  "stale",
		Expiry: time.Now().Add(-time.Hour),
	})

	p, err := NewProvider(path)
	require.NoError(t, err)

	_, err = p.Token(context.Background())
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestTokenRefreshPersistsImmediately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	path := writeCredFile(t, &Credential{
		Token:        "stale",
		RefreshToken: "refresh-me",
		TokenURI:     srv.URL,
		ClientID:     "client",
		ClientSecret: "secret",
		Expiry:       time.Now().Add(-time.Hour),
	})

	p, err := NewProvider(path)
	require.NoError(t, err)

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	// The refreshed token must already be on disk.
	saved, err := loadCredential(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.Token)
	assert.Equal(t, "refresh-me", saved.RefreshToken)
	assert.True(t, saved.Expiry.After(time.Now()))
}

func TestCredentialFileRoundTrip(t *testing.T) {
	want := &Credential{
		Token:        "tok",
		RefreshToken: "ref",
		TokenURI:     googleTokenURL,
		ClientID:     "id",
		ClientSecret: "secret",
		Scopes:       Scopes,
		Expiry:       time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, saveCredential(path, want))

	got, err := loadCredential(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
