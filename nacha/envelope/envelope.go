// Package envelope encrypts payloads for storage at rest.
//
// Two wire forms exist. A file envelope, "FILE:<ivHex>:<cipherHex>", carries a JSON
// payload {content, metadata, timestamp, version}. A plain value envelope,
// "<ivHex>:<cipherHex>", carries a bare string. Every call uses a fresh random IV;
// the AES-256 key is derived once from the configured secret with scrypt.
package envelope

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/scrypt"

	"github.com/alapierre/go-nacha/nacha/aes"
)

var logger = logrus.WithField("component", "nacha.envelope")

const (
	FileMarker  = "FILE"
	Version     = "1.0"
	DefaultSalt = "go-nacha-envelope"

	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1
)

var (
	ErrEmptySecret = errors.New("encryption secret is empty")
	// ErrIntegrity reports content that decrypted fine but does not match its checksum.
	ErrIntegrity = errors.New("content checksum mismatch")
)

// DecryptionError is returned for malformed envelopes, wrong keys and corrupted
// ciphertext. Its message is deliberately generic; the cause is kept for logs.
type DecryptionError struct {
	cause error
}

func (e *DecryptionError) Error() string {
	return "decryption failed"
}

func (e *DecryptionError) Unwrap() error {
	return e.cause
}

func decryptionError(cause error) error {
	return &DecryptionError{cause: cause}
}

// IsDecryptionError reports whether err is (or wraps) a DecryptionError.
func IsDecryptionError(err error) bool {
	var de *DecryptionError
	return errors.As(err, &de)
}

// Payload is the decrypted content of an envelope.
type Payload struct {
	Content   string
	Metadata  Metadata
	Timestamp time.Time
	Version   string
	// File is false for plain value envelopes, which carry only Content.
	File bool
}

type Envelope struct {
	key   []byte
	salt  string
	clock clockwork.Clock
}

type Option func(*Envelope)

func WithSalt(salt string) Option {
	return func(e *Envelope) { e.salt = salt }
}

func WithClock(c clockwork.Clock) Option {
	return func(e *Envelope) { e.clock = c }
}

// New derives the encryption key from secret.
func New(secret string, opts ...Option) (*Envelope, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	e := &Envelope{salt: DefaultSalt, clock: clockwork.NewRealClock()}
	for _, o := range opts {
		o(e)
	}
	key, err := scrypt.Key([]byte(secret), []byte(e.salt), scryptN, scryptR, scryptP, aes.KeySize)
	if err != nil {
		return nil, errors.Wrap(err, "derive key")
	}
	e.key = key
	return e, nil
}

// IsEnvelope reports whether s is a file envelope.
func IsEnvelope(s string) bool {
	return strings.HasPrefix(s, FileMarker+":")
}

// Encrypt seals plaintext and metadata into a file envelope.
func (e *Envelope) Encrypt(plaintext string, md Metadata) (string, error) {
	var w jx.Encoder
	w.Obj(func(w *jx.Encoder) {
		w.Field("content", func(w *jx.Encoder) { w.Str(plaintext) })
		w.Field("metadata", md.encode)
		w.Field("timestamp", func(w *jx.Encoder) { w.Str(e.clock.Now().UTC().Format(time.RFC3339Nano)) })
		w.Field("version", func(w *jx.Encoder) { w.Str(Version) })
	})

	sealed, err := e.seal(w.Bytes())
	if err != nil {
		return "", err
	}
	return FileMarker + ":" + sealed, nil
}

// EncryptValue seals a bare string into a plain value envelope.
func (e *Envelope) EncryptValue(value string) (string, error) {
	return e.seal([]byte(value))
}

func (e *Envelope) seal(plain []byte) (string, error) {
	iv, err := aes.GenerateRandom16BytesIv()
	if err != nil {
		return "", err
	}
	ct, err := aes.EncryptBytesWithAES256CBCPKCS7(plain, e.key, iv)
	if err != nil {
		return "", errors.Wrap(err, "encrypt")
	}
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

func (e *Envelope) open(ivHex, cipherHex string) ([]byte, error) {
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, decryptionError(errors.Wrap(err, "iv"))
	}
	ct, err := hex.DecodeString(cipherHex)
	if err != nil {
		return nil, decryptionError(errors.Wrap(err, "ciphertext"))
	}
	plain, err := aes.DecryptBytesAESCBCPKCS5(ct, e.key, iv)
	if err != nil {
		return nil, decryptionError(err)
	}
	return plain, nil
}

// Decrypt opens either envelope form.
func (e *Envelope) Decrypt(opaque string) (*Payload, error) {
	parts := strings.Split(opaque, ":")
	switch {
	case len(parts) == 2:
		plain, err := e.open(parts[0], parts[1])
		if err != nil {
			return nil, err
		}
		return &Payload{Content: string(plain)}, nil
	case len(parts) == 3 && parts[0] == FileMarker:
		plain, err := e.open(parts[1], parts[2])
		if err != nil {
			return nil, err
		}
		p, err := decodePayload(plain)
		if err != nil {
			logger.WithError(err).Debug("Envelope payload rejected")
			return nil, decryptionError(err)
		}
		return p, nil
	case len(parts) == 3:
		return nil, decryptionError(errors.Errorf("unknown envelope marker %q", parts[0]))
	default:
		return nil, decryptionError(errors.Errorf("malformed envelope: %d parts", len(parts)))
	}
}

// DecryptValue opens a plain value envelope.
func (e *Envelope) DecryptValue(opaque string) (string, error) {
	if IsEnvelope(opaque) {
		return "", decryptionError(errors.New("file envelope passed as plain value"))
	}
	p, err := e.Decrypt(opaque)
	if err != nil {
		return "", err
	}
	return p.Content, nil
}

func decodePayload(raw []byte) (*Payload, error) {
	p := &Payload{File: true}
	var hasContent bool
	err := jx.DecodeBytes(raw).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "content":
			v, err := d.Str()
			p.Content, hasContent = v, true
			return err
		case "metadata":
			m, err := decodeMetadata(d)
			p.Metadata = m
			return err
		case "timestamp":
			v, err := d.Str()
			if err != nil {
				return err
			}
			if p.Timestamp, err = time.Parse(time.RFC3339Nano, v); err != nil {
				return errors.Wrap(err, "timestamp")
			}
			return nil
		case "version":
			v, err := d.Str()
			p.Version = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	if !hasContent {
		return nil, errors.New("payload has no content")
	}
	return p, nil
}
