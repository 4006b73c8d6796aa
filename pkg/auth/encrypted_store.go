package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000

	// EnvPassphrase supplies the passphrase for the encrypted store.
	EnvPassphrase = "SUBSCRAPER_PASSPHRASE"
)

// EncryptedFileStore persists credentials in an AES-GCM encrypted file,
// with the key derived from a passphrase via PBKDF2. Opt-in alternative to
// the plain file store.
type EncryptedFileStore struct {
	path       string
	passphrase string
}

// encryptedEnvelope is the on-disk structure of the encrypted file.
type encryptedEnvelope struct {
	Salt      string `json:"salt"`
	Encrypted string `json:"encrypted"`
}

// NewEncryptedFileStore creates an encrypted credential store at the given
// path. The passphrase is taken from the SUBSCRAPER_PASSPHRASE environment
// variable.
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	passphrase := os.Getenv(EnvPassphrase)
	if passphrase == "" {
		return nil, fmt.Errorf("%s is required for the encrypted credential store", EnvPassphrase)
	}
	return NewEncryptedFileStoreWithPassphrase(path, passphrase)
}

// NewEncryptedFileStoreWithPassphrase creates an encrypted credential store
// with an explicit passphrase.
func NewEncryptedFileStoreWithPassphrase(path, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

// Load decrypts and parses the stored credentials.
func (e *EncryptedFileStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to read encrypted store: %w", err)
	}

	var envelope encryptedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse encrypted store: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	plaintext, err := e.decrypt(ciphertext, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

// Save encrypts and writes the credentials, overwriting any existing record.
func (e *EncryptedFileStore) Save(creds *Credentials) error {
	if creds == nil {
		return ErrInvalidCredentials
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	ciphertext, err := e.encrypt(plaintext, salt)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	envelope := encryptedEnvelope{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if err := os.WriteFile(e.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted store: %w", err)
	}
	return nil
}

// Delete removes the encrypted store file.
func (e *EncryptedFileStore) Delete() error {
	if err := os.Remove(e.path); err != nil {
		if os.IsNotExist(err) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete encrypted store: %w", err)
	}
	return nil
}

// Exists reports whether the encrypted store file is present.
func (e *EncryptedFileStore) Exists() bool {
	_, err := os.Stat(e.path)
	return err == nil
}

// deriveKey derives the AES key from the passphrase and salt
func (e *EncryptedFileStore) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

func (e *EncryptedFileStore) encrypt(plaintext, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *EncryptedFileStore) decrypt(ciphertext, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, sealed, nil)
}
