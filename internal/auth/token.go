package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doidoi-app/doidoi-cli/internal/config"
)

// ErrNoToken is returned when no access token has been stored
var ErrNoToken = errors.New("no access token stored")

// Credentials is the on-disk credential record.
// The key names match the app's local storage keys.
type Credentials struct {
	AccessToken string    `json:"AccessToken"`
	SavedAt     time.Time `json:"SavedAt,omitempty"`
}

// TokenStore handles credential storage and retrieval
type TokenStore struct {
	credentialsPath string
}

// NewTokenStore creates a TokenStore at the default credentials path
func NewTokenStore() (*TokenStore, error) {
	credPath, err := config.GetCredentialsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials path: %w", err)
	}

	return NewTokenStoreAt(credPath), nil
}

// NewTokenStoreAt creates a TokenStore backed by the given file
func NewTokenStoreAt(path string) *TokenStore {
	return &TokenStore{credentialsPath: path}
}

// Path returns the credentials file path
func (t *TokenStore) Path() string {
	return t.credentialsPath
}

// Save stores credentials to disk
func (t *TokenStore) Save(creds *Credentials) error {
	dir := filepath.Dir(t.credentialsPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(t.credentialsPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	return nil
}

// SaveToken stores a new access token
func (t *TokenStore) SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("access token cannot be empty")
	}
	return t.Save(&Credentials{AccessToken: token, SavedAt: time.Now()})
}

// Load retrieves stored credentials
func (t *TokenStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(t.credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return &creds, nil
}

// Delete removes stored credentials
func (t *TokenStore) Delete() error {
	err := os.Remove(t.credentialsPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// AccessToken reads the stored token from disk on every call.
// It returns ErrNoToken when the file or the key is missing.
func (t *TokenStore) AccessToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	creds, err := t.Load()
	if err != nil {
		return "", err
	}

	if creds.AccessToken == "" {
		return "", ErrNoToken
	}

	return creds.AccessToken, nil
}
