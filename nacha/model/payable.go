package model

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRoutingNumber = errors.New("routing number must be exactly 9 digits")
	ErrUnknownEntryKind     = errors.New("unknown entry kind")
)

// EntryKind tells whether an entry pulls money from (debit) or pushes money to (credit) the receiver.
type EntryKind string

const (
	Debit  EntryKind = "DEBIT"
	Credit EntryKind = "CREDIT"
)

// FileType is the tag carried in file names and used to choose the side of a combined transaction.
type FileType string

const (
	FileTypeDebit  FileType = "DR"
	FileTypeCredit FileType = "CR"
)

// Kind maps a file type onto the entry kind it produces.
func (f FileType) Kind() EntryKind {
	if f == FileTypeCredit {
		return Credit
	}
	return Debit
}

func (f FileType) Valid() bool {
	return f == FileTypeDebit || f == FileTypeCredit
}

type AccountType string

const (
	Checking AccountType = "CHECKING"
	Savings  AccountType = "SAVINGS"
)

// PayableEntry is the single shape the record encoder renders. Both combined transactions
// and pre-split entries are normalized into it before any field is written.
type PayableEntry struct {
	TransactionID  string
	Kind           EntryKind
	AccountType    AccountType
	RoutingNumber  string
	AccountNumber  string
	IndividualID   string
	IndividualName string
	Amount         decimal.Decimal
	// EffectiveDate is optional; a zero value means the entry follows the file's date.
	EffectiveDate civil.Date
}

// Validate checks invariants the wire format cannot express on its own.
func (p *PayableEntry) Validate() error {
	if !IsRoutingNumber(p.RoutingNumber) {
		return errors.Wrapf(ErrInvalidRoutingNumber, "entry %q: got %q", p.TransactionID, p.RoutingNumber)
	}
	if p.Kind != Debit && p.Kind != Credit {
		return errors.Wrapf(ErrUnknownEntryKind, "entry %q: %q", p.TransactionID, p.Kind)
	}
	return nil
}

// HasEffectiveDate reports whether the entry was given its own effective date.
func (p *PayableEntry) HasEffectiveDate() bool {
	return !p.EffectiveDate.IsZero()
}

// IsRoutingNumber reports whether s is exactly 9 ASCII digits.
func IsRoutingNumber(s string) bool {
	if len(s) != 9 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeRoutingNumber strips surrounding whitespace, which upstream systems tend to leave in.
func NormalizeRoutingNumber(s string) string {
	return strings.TrimSpace(s)
}
