package auth

import (
	"errors"
	"fmt"
)

// Credentials holds the Reddit API credentials for the password grant.
// The JSON field names match the on-disk credentials file format.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	UserAgent    string `json:"user_agent"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// Validate checks that all five fields are present.
func (c *Credentials) Validate() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, errors.New("client ID is required"))
	}
	if c.ClientSecret == "" {
		errs = append(errs, errors.New("client secret is required"))
	}
	if c.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Username == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("password is required"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Store is the interface for persisting and retrieving credentials.
type Store interface {
	// Load reads the stored credentials.
	Load() (*Credentials, error)

	// Save persists the credentials, overwriting any existing record.
	Save(creds *Credentials) error

	// Delete removes the stored credentials.
	Delete() error

	// Exists reports whether credentials are stored.
	Exists() bool
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// Manager chains credential stores with fallback: the plain credentials
// file is authoritative, the keyring and environment are fallbacks for
// operators who opted into them.
type Manager struct {
	stores []Store
}

// NewManager creates a credential manager for the given credentials file
// path. The file store always comes first; a keyring store is added when
// the system keychain is available, and the environment store last.
func NewManager(credentialsFile string) *Manager {
	stores := []Store{NewFileStore(credentialsFile)}

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}
}

// NewManagerWithStores creates a manager over an explicit store chain.
func NewManagerWithStores(stores ...Store) *Manager {
	return &Manager{stores: stores}
}

// Load returns credentials from the first store that has them. A store that
// exists but fails to parse is a fatal configuration error, not a fallback.
func (m *Manager) Load() (*Credentials, error) {
	for _, store := range m.stores {
		if !store.Exists() {
			continue
		}
		creds, err := store.Load()
		if err != nil {
			return nil, err
		}
		return creds, nil
	}
	return nil, ErrCredentialsNotFound
}

// Save persists credentials to the primary store.
func (m *Manager) Save(creds *Credentials) error {
	if len(m.stores) == 0 {
		return errors.New("no available credential stores")
	}
	return m.stores[0].Save(creds)
}

// Delete removes credentials from every store that has them.
func (m *Manager) Delete() error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if !store.Exists() {
			continue
		}
		if err := store.Delete(); err != nil {
			lastErr = err
			continue
		}
		deleted = true
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// Exists reports whether any store holds credentials.
func (m *Manager) Exists() bool {
	for _, store := range m.stores {
		if store.Exists() {
			return true
		}
	}
	return false
}

// LoadOrPrompt returns stored credentials when present; otherwise it
// collects the five fields interactively, persists them verbatim and
// returns them. A stored-but-unparseable record is fatal.
func LoadOrPrompt(store Store, p Prompter) (*Credentials, error) {
	if store.Exists() {
		return store.Load()
	}

	creds, err := PromptCredentials(p)
	if err != nil {
		return nil, err
	}

	if err := store.Save(creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}
	return creds, nil
}

// PromptCredentials collects the five credential fields from the operator.
// Secrets are read without echo when the prompter supports it.
func PromptCredentials(p Prompter) (*Credentials, error) {
	creds := &Credentials{}
	var err error

	if creds.ClientID, err = p.ReadLine("Enter client ID: "); err != nil {
		return nil, err
	}
	if creds.ClientSecret, err = p.ReadSecret("Enter client secret: "); err != nil {
		return nil, err
	}
	if creds.UserAgent, err = p.ReadLine("Enter name of application: "); err != nil {
		return nil, err
	}
	if creds.Username, err = p.ReadLine("Enter username: "); err != nil {
		return nil, err
	}
	if creds.Password, err = p.ReadSecret("Enter password: "); err != nil {
		return nil, err
	}

	return creds, nil
}

// Sanitize returns a copy of the credentials with secrets masked, safe for
// display and logging.
func Sanitize(creds *Credentials) *Credentials {
	if creds == nil {
		return nil
	}
	return &Credentials{
		ClientID:     creds.ClientID,
		ClientSecret: maskString(creds.ClientSecret),
		UserAgent:    creds.UserAgent,
		Username:     creds.Username,
		Password:     maskString(creds.Password),
	}
}

// maskString masks all but the first and last two characters of a string
func maskString(s string) string {
	if len(s) <= 6 {
		return "******"
	}
	return s[:2] + "..." + s[len(s)-2:]
}
