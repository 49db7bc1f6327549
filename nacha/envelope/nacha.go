package envelope

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"

	"github.com/alapierre/go-nacha/nacha/aes"
)

// NACHAFile is a decrypted NACHA envelope. IsValid reflects only the checksum
// comparison; a successful decryption alone does not make a file valid.
type NACHAFile struct {
	Content   string
	Metadata  NACHAMetadata
	Timestamp time.Time
	IsValid   bool
}

// Verify returns ErrIntegrity when the content does not match the stored checksum.
func (f *NACHAFile) Verify() error {
	if !f.IsValid {
		return ErrIntegrity
	}
	return nil
}

// EncryptNACHAFile checksums content and seals it with its NACHA metadata.
func (e *Envelope) EncryptNACHAFile(content string, transactionIDs []string, effective civil.Date) (string, error) {
	ids := make([]string, len(transactionIDs))
	copy(ids, transactionIDs)

	return e.Encrypt(content, NACHA(NACHAMetadata{
		TransactionIDs: ids,
		EffectiveDate:  effective,
		RecordCount:    recordCount(content),
		Checksum:       aes.Checksum([]byte(content)),
	}))
}

// DecryptNACHAFile decrypts a file envelope and checks the content against its checksum.
// Corruption that breaks decryption yields a DecryptionError; corruption that survives it
// yields IsValid == false with the content still returned.
func (e *Envelope) DecryptNACHAFile(opaque string) (*NACHAFile, error) {
	if !IsEnvelope(opaque) {
		return nil, decryptionError(errors.New("not a file envelope"))
	}
	p, err := e.Decrypt(opaque)
	if err != nil {
		return nil, err
	}

	f := &NACHAFile{Content: p.Content, Timestamp: p.Timestamp}
	if p.Metadata.Kind == KindNACHA && p.Metadata.NACHA != nil {
		f.Metadata = *p.Metadata.NACHA
		f.IsValid = f.Metadata.Checksum == aes.Checksum([]byte(p.Content))
	}
	if !f.IsValid {
		logger.WithField("effective_date", f.Metadata.EffectiveDate.String()).Warn("NACHA envelope failed checksum verification")
	}
	return f, nil
}

func recordCount(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Split(strings.TrimSuffix(content, "\n"), "\n"))
}
