package record

import (
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/alapierre/go-nacha/nacha/model"
)

// Service class codes.
const (
	MixedDebitsAndCredits = 200
	CreditsOnly           = 220
	DebitsOnly            = 225
)

// MaxCents is the largest amount the 10-digit entry amount field holds.
const MaxCents = 9_999_999_999

// Limits of the control record fields.
const (
	MaxTotalCents = 999_999_999_999
	MaxEntryCount = 999_999
)

const hashModulus = 10_000_000_000

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrAmountOverflow = errors.New("amount does not fit the entry amount field")
)

var hundred = decimal.NewFromInt(100)

// Cents converts an amount to whole cents, rounding half away from zero.
func Cents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// EntryCents is Cents with the limits of the entry amount field applied.
func EntryCents(amount decimal.Decimal) (int64, error) {
	c := Cents(amount)
	if c < 0 {
		return 0, errors.Wrapf(ErrNegativeAmount, "%s", amount)
	}
	if c > MaxCents {
		return 0, errors.Wrapf(ErrAmountOverflow, "%s", amount)
	}
	return c, nil
}

// TransactionCode picks the entry transaction code for a kind and account type.
func TransactionCode(kind model.EntryKind, account model.AccountType) int {
	switch {
	case kind == model.Credit && account == model.Savings:
		return 32
	case kind == model.Credit:
		return 22
	case account == model.Savings:
		return 37
	default:
		return 27
	}
}

// IsCreditCode reports whether an entry transaction code moves money to the receiver.
func IsCreditCode(code int) bool {
	return code%10 >= 1 && code%10 <= 4
}

// ServiceClass chooses 225, 220 or 200 from the kinds present in a batch.
func ServiceClass(hasDebits, hasCredits bool) int {
	switch {
	case hasDebits && hasCredits:
		return MixedDebitsAndCredits
	case hasCredits:
		return CreditsOnly
	default:
		return DebitsOnly
	}
}

// EntryHash accumulates the sum of receiving DFI prefixes modulo 10^10.
type EntryHash int64

// Add folds one routing number into the hash.
func (h EntryHash) Add(routing string) (EntryHash, error) {
	prefix := ABA8(routing)
	n, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return h, errors.Wrapf(err, "routing prefix %q", prefix)
	}
	return EntryHash((int64(h) + n) % hashModulus), nil
}

// ComputeEntryHash hashes a list of routing numbers.
func ComputeEntryHash(routings ...string) (int64, error) {
	var h EntryHash
	for _, r := range routings {
		var err error
		if h, err = h.Add(r); err != nil {
			return 0, err
		}
	}
	return int64(h), nil
}

// TraceSequence hands out trace numbers for one batch: the 8-digit originating DFI
// followed by a 7-digit counter starting at 1.
type TraceSequence struct {
	prefix string
	next   int
}

func NewTraceSequence(originatingDFI string) *TraceSequence {
	return &TraceSequence{prefix: newBuilder().digits(ABA8(originatingDFI), 8).String(), next: 1}
}

func (s *TraceSequence) Next() string {
	n := s.next
	s.next++
	return fmt.Sprintf("%s%07d", s.prefix, n%10_000_000)
}
