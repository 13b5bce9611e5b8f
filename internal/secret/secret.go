// Package secret encrypts exchange API credentials before they are
// submitted to the gateway. Ciphertexts are AES-256-GCM, base64-encoded
// and carried with an ENC[vN]: version prefix so key rotation stays
// possible without re-encrypting everything at once.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the required size for AES-256 keys.
	KeySize = 32
	// NonceSize is the GCM nonce size.
	NonceSize = 12
	// SaltSize is the salt size for passphrase derivation.
	SaltSize = 16

	// pbkdf2Iterations follows the OWASP recommendation for
	// PBKDF2-HMAC-SHA256.
	pbkdf2Iterations = 600_000

	versionPrefix = "ENC[v%d]:"
)

var (
	ErrInvalidKey        = errors.New("invalid encryption key: must be 32 bytes")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	ErrDecryptionFailed  = errors.New("decryption failed")
)

// Encryptor handles AES-256-GCM encryption and decryption of credential
// secrets.
type Encryptor struct {
	key     []byte
	version int
}

// NewEncryptor creates an Encryptor with the given 32-byte key.
func NewEncryptor(key []byte, version int) (*Encryptor, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return &Encryptor{key: key, version: version}, nil
}

// NewEncryptorFromPassphrase derives a key from a passphrase with
// PBKDF2-HMAC-SHA256 and the given salt. The salt must be stored
// alongside the ciphertexts (it is not secret).
func NewEncryptorFromPassphrase(passphrase string, salt []byte, version int) (*Encryptor, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("invalid salt: must be %d bytes, got %d", SaltSize, len(salt))
	}
	key := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, KeySize, sha256.New)
	return NewEncryptor(key, version)
}

// NewSalt generates a random salt for passphrase key derivation.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Encrypt encrypts plaintext and returns ENC[vN]:base64(nonce+ciphertext).
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	encoded := base64.StdEncoding.EncodeToString(ciphertext)
	return fmt.Sprintf(versionPrefix, e.version) + encoded, nil
}

// Decrypt decrypts a ciphertext produced by Encrypt. It accepts any
// ENC[vN]: prefix; callers that rotate keys should route on
// ParseVersion first.
func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "ENC[v") {
		return "", ErrInvalidCiphertext
	}

	colonIdx := strings.Index(ciphertext, "]:")
	if colonIdx == -1 {
		return "", ErrInvalidCiphertext
	}

	encoded := ciphertext[colonIdx+2:]
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	if len(data) < NonceSize {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	nonce := data[:NonceSize]
	sealed := data[NonceSize:]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// Version returns the key version this encryptor stamps on ciphertexts.
func (e *Encryptor) Version() int {
	return e.version
}

// ParseVersion extracts the key version from an encrypted string.
// Returns 0 if the format is invalid.
func ParseVersion(ciphertext string) int {
	if !strings.HasPrefix(ciphertext, "ENC[v") {
		return 0
	}
	var version int
	if _, err := fmt.Sscanf(ciphertext, "ENC[v%d]:", &version); err != nil {
		return 0
	}
	return version
}

// Fingerprint returns a short hex digest of an API key, safe to display
// in key listings.
func Fingerprint(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%x", sum[:8])
}
