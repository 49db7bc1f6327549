// Package batch assembles NACHA files: it drains an EntrySource, renders the file
// header, one batch and the control records, pads the result to whole blocks and
// reports the totals a caller needs to persist the file.
package batch

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alapierre/go-nacha/nacha/bizday"
	"github.com/alapierre/go-nacha/nacha/model"
	"github.com/alapierre/go-nacha/nacha/record"
)

var logger = logrus.WithField("component", "nacha.batch")

var (
	ErrNoEligibleTransactions = errors.New("no eligible transactions")
	ErrInvalidFileType        = errors.New("file type must be DR or CR")
	ErrInvalidEffectiveDate   = errors.New("invalid effective date")
	ErrTooManyEntries         = errors.New("too many entries for one batch")
)

const (
	defaultEntryDescription = "PAYMENT"
	defaultSECCode          = "PPD"
	maxFileIDModifier       = 9
)

// Request describes one file to generate.
type Request struct {
	Company model.Company

	// EffectiveDate is moved to the next business day when it is not one.
	EffectiveDate civil.Date

	FileType model.FileType
	Source   EntrySource
}

// Result contains the generated file and the aggregates computed while building it.
type Result struct {
	File model.File

	// RecordCount is the number of lines in the file, padding included.
	RecordCount    int
	EntryHash      int64
	ServiceClass   int
	FileIDModifier int

	// Skipped counts entries whose own effective date did not match the file's.
	Skipped int
}

// Builder generates files. The file id modifier advances with every generated file
// and cycles through 1..9; Generate is safe for concurrent use.
type Builder struct {
	policy *bizday.Policy
	clock  clockwork.Clock

	mu        sync.Mutex
	modifier  int
	lastNanos int64
}

type Option func(*Builder)

func WithClock(c clockwork.Clock) Option {
	return func(b *Builder) { b.clock = c }
}

// WithLastModifier resumes the modifier cycle after n, e.g. across restarts.
func WithLastModifier(n int) Option {
	return func(b *Builder) { b.modifier = (n%maxFileIDModifier + maxFileIDModifier) % maxFileIDModifier }
}

func NewBuilder(policy *bizday.Policy, opts ...Option) *Builder {
	b := &Builder{
		policy: policy,
		clock:  clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// LastModifier returns the file id modifier used by the most recent file, 0 if none.
func (b *Builder) LastModifier() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.modifier
}

type collected struct {
	entries []model.PayableEntry
	skipped int
}

// Generate builds one file. It fails with ErrNoEligibleTransactions when the source
// yields nothing after date filtering.
func (b *Builder) Generate(req Request) (*Result, error) {
	if !req.FileType.Valid() {
		return nil, errors.Wrapf(ErrInvalidFileType, "got %q", req.FileType)
	}
	if !req.EffectiveDate.IsValid() {
		return nil, errors.Wrapf(ErrInvalidEffectiveDate, "%q", req.EffectiveDate.String())
	}
	if req.Source == nil {
		return nil, ErrNoEligibleTransactions
	}

	effective := b.policy.ACHEffectiveDate(req.EffectiveDate)
	if effective != req.EffectiveDate {
		logger.WithFields(logrus.Fields{
			"requested": req.EffectiveDate.String(),
			"effective": effective.String(),
		}).Warn("Requested effective date is not a business day, moved forward")
	}

	c, err := b.collect(req.Source, effective)
	if err != nil {
		return nil, err
	}
	if len(c.entries) == 0 {
		return nil, errors.Wrapf(ErrNoEligibleTransactions, "effective date %s, %d skipped", effective, c.skipped)
	}

	company := withDefaults(req.Company)
	warnBlankConfig(company)

	b.mu.Lock()
	defer b.mu.Unlock()

	modifier := b.modifier%maxFileIDModifier + 1
	now := b.clock.Now()

	res, err := render(company, effective, req.FileType, c.entries, modifier, now)
	if err != nil {
		return nil, err
	}
	res.Skipped = c.skipped
	res.File.Filename = b.filename(req.FileType, effective, now)

	b.modifier = modifier

	logger.WithFields(logrus.Fields{
		"filename":      res.File.Filename,
		"entries":       res.File.TransactionCount,
		"total_debits":  res.File.TotalDebits.StringFixed(2),
		"total_credits": res.File.TotalCredits.StringFixed(2),
		"modifier":      modifier,
	}).Info("NACHA file generated")

	return res, nil
}

func (b *Builder) collect(src EntrySource, effective civil.Date) (*collected, error) {
	c := &collected{}
	for {
		p, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "entry source")
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if p.HasEffectiveDate() && b.policy.ACHEffectiveDate(p.EffectiveDate) != effective {
			logger.WithFields(logrus.Fields{
				"transaction_id": p.TransactionID,
				"entry_date":     p.EffectiveDate.String(),
			}).Debug("Entry skipped, effective date does not match the file")
			c.skipped++
			continue
		}
		c.entries = append(c.entries, *p)
	}
	return c, nil
}

// filename must be called with b.mu held. The nanosecond part never repeats within
// one Builder even if the clock does.
func (b *Builder) filename(ft model.FileType, effective civil.Date, now time.Time) string {
	nanos := now.UnixNano()
	if nanos <= b.lastNanos {
		nanos = b.lastNanos + 1
	}
	b.lastNanos = nanos
	return fmt.Sprintf("ACH_%s_%04d%02d%02d_%d.txt", ft, effective.Year, int(effective.Month), effective.Day, nanos)
}

func render(company model.Company, effective civil.Date, ft model.FileType, entries []model.PayableEntry, modifier int, now time.Time) (*Result, error) {
	const batchNumber = 1

	var (
		hash                    record.EntryHash
		debitCents, creditCents int64
		hasDebits, hasCredits   bool
		ids                     = make([]string, 0, len(entries))
		details                 = make([]string, 0, len(entries))
		trace                   = record.NewTraceSequence(company.OriginatingDFI)
	)

	for _, p := range entries {
		cents, err := record.EntryCents(p.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %q", p.TransactionID)
		}
		if hash, err = hash.Add(p.RoutingNumber); err != nil {
			return nil, errors.Wrapf(err, "entry %q", p.TransactionID)
		}
		if p.Kind == model.Credit {
			hasCredits = true
			creditCents += cents
		} else {
			hasDebits = true
			debitCents += cents
		}
		ids = append(ids, p.TransactionID)
		details = append(details, record.EntryDetail{
			TransactionCode: record.TransactionCode(p.Kind, p.AccountType),
			RoutingNumber:   p.RoutingNumber,
			AccountNumber:   p.AccountNumber,
			Cents:           cents,
			IndividualID:    p.IndividualID,
			IndividualName:  p.IndividualName,
			TraceNumber:     trace.Next(),
		}.String())
	}

	if err := checkLimits(len(details), debitCents, creditCents); err != nil {
		return nil, err
	}

	serviceClass := record.ServiceClass(hasDebits, hasCredits)

	lines := make([]string, 0, len(details)+record.BlockingFactor+4)
	lines = append(lines, record.FileHeader{
		ImmediateDestination:     company.ImmediateDestination,
		ImmediateOrigin:          company.ImmediateOrigin,
		Created:                  now,
		FileIDModifier:           modifier,
		ImmediateDestinationName: company.ImmediateDestinationName,
		ImmediateOriginName:      company.ImmediateOriginName,
		ReferenceCode:            company.ReferenceCode,
	}.String())
	lines = append(lines, record.BatchHeader{
		ServiceClass:      serviceClass,
		CompanyName:       company.Name,
		DiscretionaryData: company.DiscretionaryData,
		CompanyID:         company.ID,
		SECCode:           company.SECCode,
		EntryDescription:  company.EntryDescription,
		DescriptiveDate:   effective,
		EffectiveDate:     effective,
		OriginatingDFI:    company.OriginatingDFI,
		BatchNumber:       batchNumber,
	}.String())
	lines = append(lines, details...)
	lines = append(lines, record.BatchControl{
		ServiceClass:     serviceClass,
		EntryCount:       len(details),
		EntryHash:        int64(hash),
		TotalDebitCents:  debitCents,
		TotalCreditCents: creditCents,
		CompanyID:        company.ID,
		OriginatingDFI:   company.OriginatingDFI,
		BatchNumber:      batchNumber,
	}.String())

	// the file control record is the last real record; padding follows it
	blocks := (len(lines) + 1 + record.BlockingFactor - 1) / record.BlockingFactor
	lines = append(lines, record.FileControl{
		BatchCount:       1,
		BlockCount:       blocks,
		EntryCount:       len(details),
		EntryHash:        int64(hash),
		TotalDebitCents:  debitCents,
		TotalCreditCents: creditCents,
	}.String())
	for len(lines)%record.BlockingFactor != 0 {
		lines = append(lines, record.Padding)
	}

	debits := decimal.New(debitCents, -2)
	credits := decimal.New(creditCents, -2)

	return &Result{
		File: model.File{
			Content:          strings.Join(lines, "\n"),
			EffectiveDate:    effective,
			FileType:         ft,
			TransactionCount: len(details),
			TotalAmount:      debits.Add(credits),
			TotalDebits:      debits,
			TotalCredits:     credits,
			TransactionIDs:   ids,
			GeneratedAt:      now,
			Status:           model.StatusGenerated,
		},
		RecordCount:    len(lines),
		EntryHash:      int64(hash),
		ServiceClass:   serviceClass,
		FileIDModifier: modifier,
	}, nil
}

// checkLimits rejects files whose control records could not hold the totals.
func checkLimits(entries int, debitCents, creditCents int64) error {
	if entries > record.MaxEntryCount {
		return errors.Wrapf(ErrTooManyEntries, "%d entries, at most %d", entries, record.MaxEntryCount)
	}
	if debitCents > record.MaxTotalCents {
		return errors.Wrapf(record.ErrAmountOverflow, "total debits %d cents", debitCents)
	}
	if creditCents > record.MaxTotalCents {
		return errors.Wrapf(record.ErrAmountOverflow, "total credits %d cents", creditCents)
	}
	return nil
}

func withDefaults(c model.Company) model.Company {
	if c.EntryDescription == "" {
		c.EntryDescription = defaultEntryDescription
	}
	if c.SECCode == "" {
		c.SECCode = defaultSECCode
	}
	return c
}

// Blank configuration is rendered as blank fields; it is only reported.
func warnBlankConfig(c model.Company) {
	missing := make([]string, 0, 5)
	for name, v := range map[string]string{
		"immediate_origin":      c.ImmediateOrigin,
		"immediate_destination": c.ImmediateDestination,
		"company_name":          c.Name,
		"company_id":            c.ID,
		"originating_dfi":       c.OriginatingDFI,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		logger.WithField("fields", strings.Join(missing, ",")).Warn("Company configuration incomplete, rendering blank fields")
	}
}
