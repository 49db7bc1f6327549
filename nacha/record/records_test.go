package record

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var effective = civil.Date{Year: 2024, Month: 9, Day: 17}

func TestFileHeader(t *testing.T) {
	h := FileHeader{
		ImmediateDestination:     "091000019",
		ImmediateOrigin:          "1234567890",
		Created:                  time.Date(2024, 9, 16, 14, 5, 0, 0, time.UTC),
		FileIDModifier:           3,
		ImmediateDestinationName: "FEDERAL RESERVE",
		ImmediateOriginName:      "ACME CORP",
	}
	line := h.String()

	require.Len(t, line, Length)
	assert.Equal(t, "101 091000019123456789024091614053094101", line[:40])
	assert.Equal(t, "FEDERAL RESERVE        ", line[40:63])
	assert.Equal(t, "ACME CORP              ", line[63:86])
	assert.Equal(t, "        ", line[86:])
	assert.Equal(t, "3", FileHeaderModifier.Of(line))
}

func TestBatchHeader(t *testing.T) {
	h := BatchHeader{
		ServiceClass:     DebitsOnly,
		CompanyName:      "ACME CORPORATION LIMITED",
		CompanyID:        "1234567890",
		SECCode:          "PPD",
		EntryDescription: "PAYMENT",
		DescriptiveDate:  effective,
		EffectiveDate:    effective,
		OriginatingDFI:   "091000019",
		BatchNumber:      1,
	}
	line := h.String()

	require.Len(t, line, Length)
	assert.Equal(t, "5225", line[:4])
	assert.Equal(t, "ACME CORPORATION", line[4:20], "company name truncated to 16")
	assert.Equal(t, strings.Repeat(" ", 20), line[20:40])
	assert.Equal(t, "1234567890", line[40:50])
	assert.Equal(t, "PPD", line[50:53])
	assert.Equal(t, "PAYMENT   ", line[53:63])
	assert.Equal(t, "240917", BatchEffectiveDate.Of(line))
	assert.Equal(t, "   1", line[75:79])
	assert.Equal(t, "091000010000001", line[79:])
	assert.Equal(t, "225", BatchServiceClass.Of(line))
}

func TestEntryDetail(t *testing.T) {
	e := EntryDetail{
		TransactionCode: 27,
		RoutingNumber:   "123456789",
		AccountNumber:   "1234567890",
		Cents:           10000,
		IndividualID:    "DR001",
		IndividualName:  "John Doe",
		TraceNumber:     "091000010000001",
	}
	line := e.String()

	require.Len(t, line, Length)
	assert.Equal(t, "27", EntryTransactionCode.Of(line))
	assert.Equal(t, "12345678", EntryReceivingDFI.Of(line))
	assert.Equal(t, "9", EntryCheckDigit.Of(line))
	assert.Equal(t, "1234567890       ", EntryAccountNumber.Of(line))
	assert.Equal(t, "0000010000", EntryAmount.Of(line))
	assert.Equal(t, "DR001          ", EntryIndividualID.Of(line))
	assert.Equal(t, "John Doe              ", EntryIndividualName.Of(line))
	assert.Equal(t, "  0", line[76:79])
	assert.Equal(t, "091000010000001", EntryTraceNumber.Of(line))
}

func TestEntryDetail_NonASCIINameKeepsWidth(t *testing.T) {
	e := EntryDetail{TransactionCode: 22, RoutingNumber: "123456789", IndividualName: "José Müller 名前"}
	line := e.String()

	require.Len(t, line, Length)
	assert.Equal(t, "Jose Muller           ", EntryIndividualName.Of(line))
}

func TestNonASCIIOriginatingDFIKeepsWidth(t *testing.T) {
	lines := []string{
		BatchHeader{ServiceClass: DebitsOnly, OriginatingDFI: "0910000é", EffectiveDate: effective, DescriptiveDate: effective, BatchNumber: 1}.String(),
		BatchControl{ServiceClass: DebitsOnly, OriginatingDFI: "0910000é", BatchNumber: 1}.String(),
		EntryDetail{TransactionCode: 27, RoutingNumber: "12345678é", TraceNumber: NewTraceSequence("0910000é").Next()}.String(),
	}
	for _, l := range lines {
		require.Len(t, l, Length)
		assert.Equal(t, Length, utf8.RuneCountInString(l))
	}
	assert.Equal(t, "0910000e", lines[0][79:87])
}

func TestBatchControl(t *testing.T) {
	c := BatchControl{
		ServiceClass:     DebitsOnly,
		EntryCount:       1,
		EntryHash:        12345678,
		TotalDebitCents:  10000,
		TotalCreditCents: 0,
		CompanyID:        "1234567890",
		OriginatingDFI:   "09100001",
		BatchNumber:      1,
	}
	line := c.String()

	require.Len(t, line, Length)
	assert.Equal(t, "8225000001", line[:10])
	assert.Equal(t, "0012345678", BatchControlHash.Of(line))
	assert.Equal(t, "000000010000", BatchControlDebits.Of(line))
	assert.Equal(t, "000000000000", BatchControlCredits.Of(line))
	assert.Equal(t, "1234567890", line[44:54])
	assert.Equal(t, strings.Repeat(" ", 25), line[54:79])
	assert.Equal(t, "091000010000001", line[79:])
}

func TestFileControl(t *testing.T) {
	c := FileControl{
		BatchCount:       1,
		BlockCount:       1,
		EntryCount:       1,
		EntryHash:        12345678,
		TotalDebitCents:  10000,
		TotalCreditCents: 0,
	}
	line := c.String()

	require.Len(t, line, Length)
	assert.Equal(t, "9000001000001000000010012345678000000010000000000000000", line[:55])
	assert.Equal(t, strings.Repeat(" ", 39), line[55:])

	n, err := FileControlBlocks.Int(line)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPadding(t *testing.T) {
	assert.Len(t, Padding, Length)
	assert.Equal(t, "", strings.Trim(Padding, "9"))
}

func TestColumn_OfShortLine(t *testing.T) {
	assert.Equal(t, "", Column{Start: 10, Width: 3}.Of("abc"))
	assert.Equal(t, "bc", Column{Start: 2, Width: 5}.Of("abc"))
}
