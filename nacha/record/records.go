// Package record renders the five fixed-width NACHA record types.
//
// Every rendered line is exactly Length characters. Numeric fields are right-justified
// and zero-filled, alphanumeric fields left-justified and space-filled; values wider
// than their field are truncated.
package record

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	Length         = 94
	BlockingFactor = 10

	FileHeaderType   = '1'
	BatchHeaderType  = '5'
	EntryDetailType  = '6'
	BatchControlType = '8'
	FileControlType  = '9'
)

// Padding fills the last block of a file.
var Padding = strings.Repeat("9", Length)

// Columns read back by the validator and by tests.
var (
	EntryTransactionCode = Column{Start: 2, Width: 2}
	EntryReceivingDFI    = Column{Start: 4, Width: 8}
	EntryCheckDigit      = Column{Start: 12, Width: 1}
	EntryAccountNumber   = Column{Start: 13, Width: 17}
	EntryAmount          = Column{Start: 30, Width: 10}
	EntryIndividualID    = Column{Start: 40, Width: 15}
	EntryIndividualName  = Column{Start: 55, Width: 22}
	EntryTraceNumber     = Column{Start: 80, Width: 15}

	BatchServiceClass   = Column{Start: 2, Width: 3}
	BatchEffectiveDate  = Column{Start: 70, Width: 6}
	BatchControlCount   = Column{Start: 5, Width: 6}
	BatchControlHash    = Column{Start: 11, Width: 10}
	BatchControlDebits  = Column{Start: 21, Width: 12}
	BatchControlCredits = Column{Start: 33, Width: 12}
	FileHeaderModifier  = Column{Start: 34, Width: 1}
	FileControlBatches  = Column{Start: 2, Width: 6}
	FileControlBlocks   = Column{Start: 8, Width: 6}
	FileControlCount    = Column{Start: 14, Width: 8}
	FileControlHash     = Column{Start: 22, Width: 10}
	FileControlDebits   = Column{Start: 32, Width: 12}
	FileControlCredits  = Column{Start: 44, Width: 12}
)

// Date formats d as YYMMDD.
func Date(d civil.Date) string {
	return fmt.Sprintf("%02d%02d%02d", d.Year%100, int(d.Month), d.Day)
}

type FileHeader struct {
	ImmediateDestination     string
	ImmediateOrigin          string
	Created                  time.Time
	FileIDModifier           int
	ImmediateDestinationName string
	ImmediateOriginName      string
	ReferenceCode            string
}

func (h FileHeader) String() string {
	return newBuilder().
		alpha("1", 1).
		alpha("01", 2).
		right(h.ImmediateDestination, 10).
		right(h.ImmediateOrigin, 10).
		alpha(h.Created.Format("060102"), 6).
		alpha(h.Created.Format("1504"), 4).
		number(int64(h.FileIDModifier), 1).
		alpha("094", 3).
		alpha("10", 2).
		alpha("1", 1).
		alpha(h.ImmediateDestinationName, 23).
		alpha(h.ImmediateOriginName, 23).
		alpha(h.ReferenceCode, 8).
		String()
}

type BatchHeader struct {
	ServiceClass      int
	CompanyName       string
	DiscretionaryData string
	CompanyID         string
	SECCode           string
	EntryDescription  string
	DescriptiveDate   civil.Date
	EffectiveDate     civil.Date
	OriginatingDFI    string
	BatchNumber       int
}

func (h BatchHeader) String() string {
	return newBuilder().
		alpha("5", 1).
		number(int64(h.ServiceClass), 3).
		alpha(h.CompanyName, 16).
		alpha(h.DiscretionaryData, 20).
		alpha(h.CompanyID, 10).
		alpha(h.SECCode, 3).
		alpha(h.EntryDescription, 10).
		alpha(Date(h.DescriptiveDate), 6).
		alpha(Date(h.EffectiveDate), 6).
		blank(3).
		alpha("1", 1).
		digits(ABA8(h.OriginatingDFI), 8).
		number(int64(h.BatchNumber), 7).
		String()
}

type EntryDetail struct {
	TransactionCode int
	RoutingNumber   string
	AccountNumber   string
	Cents           int64
	IndividualID    string
	IndividualName  string
	TraceNumber     string
}

func (e EntryDetail) String() string {
	return newBuilder().
		alpha("6", 1).
		number(int64(e.TransactionCode), 2).
		digits(ABA8(e.RoutingNumber), 8).
		alpha(checkDigit(e.RoutingNumber), 1).
		alpha(e.AccountNumber, 17).
		number(e.Cents, 10).
		alpha(e.IndividualID, 15).
		alpha(e.IndividualName, 22).
		blank(2).
		alpha("0", 1).
		digits(e.TraceNumber, 15).
		String()
}

type BatchControl struct {
	ServiceClass     int
	EntryCount       int
	EntryHash        int64
	TotalDebitCents  int64
	TotalCreditCents int64
	CompanyID        string
	OriginatingDFI   string
	BatchNumber      int
}

func (c BatchControl) String() string {
	return newBuilder().
		alpha("8", 1).
		number(int64(c.ServiceClass), 3).
		number(int64(c.EntryCount), 6).
		number(c.EntryHash, 10).
		number(c.TotalDebitCents, 12).
		number(c.TotalCreditCents, 12).
		alpha(c.CompanyID, 10).
		blank(19).
		blank(6).
		digits(ABA8(c.OriginatingDFI), 8).
		number(int64(c.BatchNumber), 7).
		String()
}

type FileControl struct {
	BatchCount       int
	BlockCount       int
	EntryCount       int
	EntryHash        int64
	TotalDebitCents  int64
	TotalCreditCents int64
}

func (c FileControl) String() string {
	return newBuilder().
		alpha("9", 1).
		number(int64(c.BatchCount), 6).
		number(int64(c.BlockCount), 6).
		number(int64(c.EntryCount), 8).
		number(c.EntryHash, 10).
		number(c.TotalDebitCents, 12).
		number(c.TotalCreditCents, 12).
		blank(39).
		String()
}

// ABA8 is the routing number without its check digit.
func ABA8(routing string) string {
	routing = ascii(strings.TrimSpace(routing))
	if len(routing) > 8 {
		return routing[:8]
	}
	return routing
}

func checkDigit(routing string) string {
	routing = ascii(strings.TrimSpace(routing))
	if len(routing) < 9 {
		return "0"
	}
	return routing[8:9]
}
