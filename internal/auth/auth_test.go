package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenCache_SaveAndLoad(t *testing.T) {
	tests := []struct {
		name  string
		token *oauth2.Token
	}{
		{
			name: "basic token",
			token: &oauth2.Token{
				AccessToken:  "test-access-token",
				TokenType:    "Bearer",
				RefreshToken: "test-refresh-token",
				Expiry:       time.Now().Add(time.Hour),
			},
		},
		{
			name: "token without refresh",
			token: &oauth2.Token{
				AccessToken: "access-only",
				TokenType:   "Bearer",
				Expiry:      time.Now().Add(30 * time.Minute),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			cache := NewTokenCache(path)

			if err := cache.Save(tt.token); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			loaded, err := cache.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if loaded == nil {
				t.Fatal("Load() returned nil token")
			}

			if loaded.AccessToken != tt.token.AccessToken {
				t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, tt.token.AccessToken)
			}
			if loaded.RefreshToken != tt.token.RefreshToken {
				t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, tt.token.RefreshToken)
			}
			if loaded.TokenType != tt.token.TokenType {
				t.Errorf("TokenType = %q, want %q", loaded.TokenType, tt.token.TokenType)
			}
		})
	}
}

func TestTokenCache_LoadNonExistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "token.json")
	cache := NewTokenCache(path)

	token, err := cache.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if token != nil {
		t.Errorf("Load() = %v, want nil for non-existent file", token)
	}
}

func TestTokenCache_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeply", "token.json")
	cache := NewTokenCache(path)

	token := &oauth2.Token{
		AccessToken: "test-token",
		TokenType:   "Bearer",
	}
	if err := cache.Save(token); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Save() did not create token file")
	}
}

func TestTokenCache_SaveNilToken(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))

	if err := cache.Save(nil); err == nil {
		t.Error("Save(nil) should return error")
	}
}

func TestTokenCache_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	cache := NewTokenCache(path)

	token := &oauth2.Token{
		AccessToken: "test-token",
		TokenType:   "Bearer",
	}
	if err := cache.Save(token); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := cache.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Delete() did not remove token file")
	}
}

func TestTokenCache_DeleteNonExistent(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "nonexistent.json"))

	if err := cache.Delete(); err != nil {
		t.Errorf("Delete() error = %v, want nil for non-existent file", err)
	}
}

func TestTokenCache_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	cache := NewTokenCache(path)

	token := &oauth2.Token{
		AccessToken: "secret-token",
		TokenType:   "Bearer",
	}
	if err := cache.Save(token); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}

	// Tokens must not be readable by group or other.
	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		t.Errorf("File permissions = %o, want 0600 (no group/other access)", mode)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	tests := []struct {
		name         string
		clientID     string
		clientSecret string
	}{
		{name: "both empty"},
		{name: "missing secret", clientID: "some-id"},
		{name: "missing id", clientSecret: "some-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.clientID, tt.clientSecret)
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("New() error = %v, want ErrMissingCredentials", err)
			}
		})
	}
}
