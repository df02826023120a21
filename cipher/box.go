package cipher

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	formatVersion byte = 1
	saltLength         = 16

	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minPassphrase         = 12
)

// ErrMalformed is returned for any input Decrypt cannot open.
var ErrMalformed = errors.New("malformed ciphertext")

// Config tunes key derivation.
type Config struct {
	Passphrase  string
	Memory      uint32
	Time        uint32
	Parallelism uint8
}

// DefaultConfig returns derivation costs suitable for interactive use.
func DefaultConfig(passphrase string) Config {
	return Config{
		Passphrase:  passphrase,
		Memory:      64 * 1024,
		Time:        1,
		Parallelism: 2,
	}
}

// Box encrypts and decrypts with one passphrase.
type Box struct {
	config Config
}

// New validates cfg and returns a Box.
func New(cfg Config) (*Box, error) {
	if len(cfg.Passphrase) < minPassphrase {
		return nil, errors.New("cipher passphrase must be at least 12 bytes")
	}
	if cfg.Memory < minMemoryKB {
		return nil, errors.New("cipher memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return nil, errors.New("cipher time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return nil, errors.New("cipher parallelism must be >= 1")
	}
	return &Box{config: cfg}, nil
}

func (b *Box) key(salt []byte) []byte {
	return argon2.IDKey(
		[]byte(b.config.Passphrase),
		salt,
		b.config.Time,
		b.config.Memory,
		b.config.Parallelism,
		chacha20poly1305.KeySize,
	)
}

// Encrypt seals plaintext.
func (b *Box) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(b.key(salt))
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	header := make([]byte, 0, 1+saltLength+len(nonce))
	header = append(header, formatVersion)
	header = append(header, salt...)
	header = append(header, nonce...)

	out := aead.Seal(header, nonce, []byte(plaintext), header[:1+saltLength])
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Decrypt opens a value produced by Encrypt. Every failure is ErrMalformed.
func (b *Box) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformed
	}
	nonceSize := chacha20poly1305.NonceSizeX
	if len(raw) < 1+saltLength+nonceSize+chacha20poly1305.Overhead || raw[0] != formatVersion {
		return "", ErrMalformed
	}

	salt := raw[1 : 1+saltLength]
	nonce := raw[1+saltLength : 1+saltLength+nonceSize]
	sealed := raw[1+saltLength+nonceSize:]

	aead, err := chacha20poly1305.NewX(b.key(salt))
	if err != nil {
		return "", ErrMalformed
	}
	plain, err := aead.Open(nil, nonce, sealed, raw[:1+saltLength])
	if err != nil {
		return "", ErrMalformed
	}
	return string(plain), nil
}
