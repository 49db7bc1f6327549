// Package aes wraps the AES-256-CBC/PKCS#7 primitives used by the storage envelope.
package aes

import (
	"bytes"
	aes2 "crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
)

const KeySize = 32

var (
	ErrKeySize   = errors.New("key must be 32 bytes (AES-256)")
	ErrIVSize    = errors.New("IV must be 16 bytes")
	ErrBlockSize = errors.New("ciphertext is not a multiple of the block size")
	ErrPadding   = errors.New("invalid padding")
)

// GenerateRandom16BytesIv returns a fresh random initialization vector.
func GenerateRandom16BytesIv() ([]byte, error) {
	iv := make([]byte, aes2.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "generate random IV")
	}
	return iv, nil
}

// EncryptBytesWithAES256CBCPKCS7 encrypts content with AES-256-CBC and PKCS#7 padding.
func EncryptBytesWithAES256CBCPKCS7(content, key, iv []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, errors.Wrapf(ErrKeySize, "got %d", len(key))
	}
	if len(iv) != aes2.BlockSize {
		return nil, errors.Wrapf(ErrIVSize, "got %d", len(iv))
	}

	block, err := aes2.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "NewCipher")
	}

	padded := pkcs7Pad(content, aes2.BlockSize)
	out := make([]byte, len(padded))

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out, padded)
	return out, nil
}

func pkcs7Pad(src []byte, blockSize int) []byte {
	padLen := blockSize - (len(src) % blockSize)
	out := make([]byte, len(src), len(src)+padLen)
	copy(out, src)
	return append(out, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// DecryptBytesAESCBCPKCS5 decrypts an AES-256-CBC buffer and strips its PKCS#5/7 padding.
func DecryptBytesAESCBCPKCS5(ciphertext, key, iv []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, errors.Wrapf(ErrKeySize, "got %d", len(key))
	}
	if len(iv) != aes2.BlockSize {
		return nil, errors.Wrapf(ErrIVSize, "got %d", len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes2.BlockSize != 0 {
		return nil, ErrBlockSize
	}

	block, err := aes2.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "NewCipher")
	}
	mode := cipher.NewCBCDecrypter(block, iv)

	plain := make([]byte, len(ciphertext))
	mode.CryptBlocks(plain, ciphertext)

	pad := int(plain[len(plain)-1])
	if pad <= 0 || pad > aes2.BlockSize || pad > len(plain) {
		return nil, ErrPadding
	}
	// every padding byte must carry the padding length
	for i := 0; i < pad; i++ {
		if plain[len(plain)-1-i] != byte(pad) {
			return nil, ErrPadding
		}
	}
	return plain[:len(plain)-pad], nil
}

// Checksum is the lowercase hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
