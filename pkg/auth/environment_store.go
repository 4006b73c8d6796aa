package auth

import "os"

// Environment variable names read by the EnvironmentStore.
const (
	EnvClientID     = "SUBSCRAPER_CLIENT_ID"
	EnvClientSecret = "SUBSCRAPER_CLIENT_SECRET"
	EnvUserAgent    = "SUBSCRAPER_CREDENTIALS_USER_AGENT"
	EnvUsername     = "SUBSCRAPER_USERNAME"
	EnvPassword     = "SUBSCRAPER_PASSWORD"
)

// EnvironmentStore reads credentials from environment variables. It is the
// last-resort backend, useful in CI and containers; it cannot persist.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-backed credential store.
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Load assembles credentials from the environment.
func (e *EnvironmentStore) Load() (*Credentials, error) {
	creds := &Credentials{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		UserAgent:    os.Getenv(EnvUserAgent),
		Username:     os.Getenv(EnvUsername),
		Password:     os.Getenv(EnvPassword),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrCredentialsNotFound
	}
	return creds, nil
}

// Save is not supported for the environment store.
func (e *EnvironmentStore) Save(creds *Credentials) error {
	return ErrInvalidCredentials
}

// Delete is not supported for the environment store.
func (e *EnvironmentStore) Delete() error {
	return ErrCredentialsNotFound
}

// Exists reports whether the minimum credential variables are set.
func (e *EnvironmentStore) Exists() bool {
	return os.Getenv(EnvClientID) != "" && os.Getenv(EnvClientSecret) != ""
}
