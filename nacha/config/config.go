// Package config reads the originator settings from the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/alapierre/go-nacha/nacha/envelope"
	"github.com/alapierre/go-nacha/nacha/model"
	"github.com/alapierre/go-nacha/nacha/util"
)

var logger = logrus.WithField("component", "nacha.config")

const (
	DefaultEntryDescription = "PAYMENT"
	DefaultSECCode          = "PPD"
)

type Config struct {
	Company model.Company

	EncryptionKey  string
	EncryptionSalt string

	// HolidaysDB is the SQLite holiday database; empty means no holidays are loaded.
	HolidaysDB string
	ArchiveDir string
	Debug      bool
}

// Load reads .env files (the default ".env" when none are given) into the process
// environment and builds the configuration. Missing files are skipped. A missing
// NACHA_ENCRYPTION_KEY terminates the process.
func Load(filenames ...string) (*Config, error) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.WithField("file", name).Debug("No env file")
				continue
			}
			return nil, errors.Wrapf(err, "load %s", name)
		}
	}
	return FromEnv(), nil
}

func FromEnv() *Config {
	c := &Config{
		Company: model.Company{
			ImmediateOrigin:          os.Getenv("NACHA_IMMEDIATE_ORIGIN"),
			ImmediateDestination:     os.Getenv("NACHA_IMMEDIATE_DESTINATION"),
			ImmediateOriginName:      os.Getenv("NACHA_ORIGIN_NAME"),
			ImmediateDestinationName: os.Getenv("NACHA_DESTINATION_NAME"),
			Name:                     os.Getenv("NACHA_COMPANY_NAME"),
			ID:                       os.Getenv("NACHA_COMPANY_ID"),
			OriginatingDFI:           os.Getenv("NACHA_ORIGINATING_DFI"),
			DiscretionaryData:        os.Getenv("NACHA_DISCRETIONARY_DATA"),
			EntryDescription:         util.GetEnvOrDefault("NACHA_ENTRY_DESCRIPTION", DefaultEntryDescription),
			SECCode:                  util.GetEnvOrDefault("NACHA_SEC_CODE", DefaultSECCode),
		},
		EncryptionKey:  util.GetEnvOrFailed("NACHA_ENCRYPTION_KEY"),
		EncryptionSalt: util.GetEnvOrDefault("NACHA_ENCRYPTION_SALT", envelope.DefaultSalt),
		HolidaysDB:     os.Getenv("NACHA_HOLIDAYS_DB"),
		ArchiveDir:     util.GetEnvOrDefault("NACHA_ARCHIVE_DIR", filepath.Join(os.TempDir(), "nacha-archive")),
		Debug:          util.DebugEnabled(),
	}
	if c.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return c
}

// Envelope builds the envelope service from the encryption settings.
func (c *Config) Envelope() (*envelope.Envelope, error) {
	return envelope.New(c.EncryptionKey, envelope.WithSalt(c.EncryptionSalt))
}
