package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	cipherKeyInfo = "fundflow/account-details/key"
	cipherIVInfo  = "fundflow/account-details/iv"
)

var errBadPadding = errors.New("invalid padding")

// DeterministicCipher implements ports.AccountCipher with AES-256-CBC under a fixed IV.
// Equal plaintexts always encrypt to equal ciphertexts, so a stored field can be found
// by encrypting the search term and comparing ciphertext.
type DeterministicCipher struct {
	block cipher.Block
	iv    []byte
}

// NewDeterministicCipher derives the key and IV from the configured secrets with HKDF-SHA256.
func NewDeterministicCipher(keySecret, ivSecret string) (*DeterministicCipher, error) {
	if keySecret == "" || ivSecret == "" {
		return nil, errors.New("cipher key and iv secrets are required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(keySecret), nil, []byte(cipherKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("deriving cipher key: %w", err)
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(ivSecret), nil, []byte(cipherIVInfo)), iv); err != nil {
		return nil, fmt.Errorf("deriving cipher iv: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return &DeterministicCipher{block: block, iv: iv}, nil
}

// Encrypt returns base64(AES-CBC(PKCS7(plaintext))). The empty string encrypts to itself
// so optional fields stay empty.
func (c *DeterministicCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	buf := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(buf, buf)
	return base64.StdEncoding.EncodeToString(buf), nil
}

func (c *DeterministicCipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	buf, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}
	if len(buf) == 0 || len(buf)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext is not a whole number of blocks")
	}
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(buf, buf)
	out, err := pkcs7Unpad(buf, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}
	return string(out), nil
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 {
		return nil, errBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, errBadPadding
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}
