// Package validate checks NACHA file content against the structural rules of the format.
// Violations are collected and returned, never raised.
package validate

import (
	"fmt"
	"strings"

	"github.com/moov-io/ach"
	"github.com/sirupsen/logrus"

	"github.com/alapierre/go-nacha/nacha/envelope"
	"github.com/alapierre/go-nacha/nacha/record"
)

var logger = logrus.WithField("component", "nacha.validate")

const minLines = 4

type Result struct {
	IsValid bool
	Errors  []string
}

func (r *Result) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

type CompleteResult struct {
	Result
	IsEncrypted    bool
	IntegrityValid bool
	Metadata       *envelope.NACHAMetadata
}

// Opener decrypts file envelopes; *envelope.Envelope satisfies it.
type Opener interface {
	DecryptNACHAFile(opaque string) (*envelope.NACHAFile, error)
}

func lines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// Validate checks line structure and record layout of plain NACHA content.
func Validate(content string) Result {
	var r Result
	ls := lines(content)

	if len(ls) < minLines {
		r.addf("file has %d lines, expected at least %d", len(ls), minLines)
	}
	if len(ls) > 0 && !strings.HasPrefix(ls[0], string(record.FileHeaderType)) {
		r.addf("line 1: expected file header record (type %c)", record.FileHeaderType)
	}
	if len(ls) > 1 && !strings.HasPrefix(ls[1], string(record.BatchHeaderType)) {
		r.addf("line 2: expected batch header record (type %c)", record.BatchHeaderType)
	}
	if len(ls) > 0 && len(ls)%record.BlockingFactor != 0 {
		r.addf("file has %d lines, expected a multiple of %d", len(ls), record.BlockingFactor)
	}

	for i, l := range ls {
		if len(l) != record.Length {
			r.addf("line %d: length %d, expected %d", i+1, len(l), record.Length)
		}
		if l == "" {
			continue
		}
		switch l[0] {
		case record.FileHeaderType, record.BatchHeaderType, record.EntryDetailType,
			record.BatchControlType, record.FileControlType:
		default:
			r.addf("line %d: unknown record type %q", i+1, l[0])
		}
	}

	r.IsValid = len(r.Errors) == 0
	return r
}

// ValidateComplete decrypts enveloped content with opener before validating it.
// A nil opener treats every input as plain content.
func ValidateComplete(content string, opener Opener) CompleteResult {
	if opener == nil || !envelope.IsEnvelope(content) {
		return CompleteResult{Result: Validate(content), IntegrityValid: true}
	}

	f, err := opener.DecryptNACHAFile(content)
	if err != nil {
		logger.WithError(err).Warn("Could not decrypt file for validation")
		return CompleteResult{
			Result:      Result{Errors: []string{err.Error()}},
			IsEncrypted: true,
		}
	}

	res := CompleteResult{
		Result:         Validate(f.Content),
		IsEncrypted:    true,
		IntegrityValid: f.IsValid,
		Metadata:       &f.Metadata,
	}
	if !f.IsValid {
		res.addf("content checksum does not match envelope metadata")
		res.IsValid = false
	}
	return res
}

// CheckDigits lists entry detail records whose receiving DFI check digit disagrees
// with the ABA routing number algorithm.
func CheckDigits(content string) []string {
	var errs []string
	for i, l := range lines(content) {
		if len(l) != record.Length || l[0] != record.EntryDetailType {
			continue
		}
		dfi := record.EntryReceivingDFI.Of(l)
		want := ach.CalculateCheckDigit(dfi)
		got := record.EntryCheckDigit.Of(l)
		if want < 0 || got != fmt.Sprint(want) {
			errs = append(errs, fmt.Sprintf("line %d: check digit %s does not match routing prefix %s", i+1, got, dfi))
		}
	}
	return errs
}
