package validate

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alapierre/go-nacha/nacha/batch"
	"github.com/alapierre/go-nacha/nacha/bizday"
	"github.com/alapierre/go-nacha/nacha/calendar"
	"github.com/alapierre/go-nacha/nacha/envelope"
	"github.com/alapierre/go-nacha/nacha/model"
	"github.com/alapierre/go-nacha/nacha/record"
)

var effective = civil.Date{Year: 2024, Month: 9, Day: 17}

func generate(t *testing.T, routing string) string {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 9, 16, 14, 5, 0, 0, time.UTC))
	b := batch.NewBuilder(bizday.NewStatic(calendar.Empty()), batch.WithClock(clock))

	res, err := b.Generate(batch.Request{
		Company: model.Company{
			ImmediateOrigin:      "1234567890",
			ImmediateDestination: "091000019",
			Name:                 "ACME CORP",
			ID:                   "1234567890",
			OriginatingDFI:       "09100001",
		},
		EffectiveDate: effective,
		FileType:      model.FileTypeDebit,
		Source: batch.NewEntrySource([]model.Entry{{
			ID:   "DR001",
			Kind: model.Debit,
			Party: model.Party{
				RoutingNumber:  routing,
				AccountNumber:  "1234567890",
				IndividualName: "John Doe",
			},
			Amount: decimal.RequireFromString("100.00"),
		}}),
	})
	require.NoError(t, err)
	return res.File.Content
}

func TestValidate_GeneratedFile(t *testing.T) {
	content := generate(t, "091000019")

	r := Validate(content)
	assert.True(t, r.IsValid, r.Errors)
	assert.Empty(t, r.Errors)
}

func TestValidate_TrailingNewlineAndCRLF(t *testing.T) {
	content := generate(t, "091000019")

	assert.True(t, Validate(content+"\n").IsValid)
	assert.True(t, Validate(strings.ReplaceAll(content, "\n", "\r\n")+"\r\n").IsValid)
}

func TestValidate_Empty(t *testing.T) {
	r := Validate("")
	assert.False(t, r.IsValid)
	assert.Equal(t, []string{"file has 0 lines, expected at least 4"}, r.Errors)
}

func TestValidate_TooFewLines(t *testing.T) {
	lines := strings.Split(generate(t, "091000019"), "\n")

	r := Validate(strings.Join(lines[:3], "\n"))
	assert.False(t, r.IsValid)
	assert.Contains(t, r.Errors, "file has 3 lines, expected at least 4")
	assert.Contains(t, r.Errors, "file has 3 lines, expected a multiple of 10")
}

func TestValidate_WrongHeaders(t *testing.T) {
	lines := strings.Split(generate(t, "091000019"), "\n")
	lines[0], lines[1] = lines[1], lines[0]

	r := Validate(strings.Join(lines, "\n"))
	assert.False(t, r.IsValid)
	assert.Contains(t, r.Errors, "line 1: expected file header record (type 1)")
	assert.Contains(t, r.Errors, "line 2: expected batch header record (type 5)")
}

func TestValidate_LineLength(t *testing.T) {
	lines := strings.Split(generate(t, "091000019"), "\n")
	lines[2] = lines[2][:90]
	lines[3] = lines[3] + "X"

	r := Validate(strings.Join(lines, "\n"))
	assert.False(t, r.IsValid)
	assert.Contains(t, r.Errors, "line 3: length 90, expected 94")
	assert.Contains(t, r.Errors, "line 4: length 95, expected 94")
	assert.Len(t, r.Errors, 2)
}

func TestValidate_UnknownRecordType(t *testing.T) {
	lines := strings.Split(generate(t, "091000019"), "\n")
	lines[2] = "7" + lines[2][1:]

	r := Validate(strings.Join(lines, "\n"))
	assert.False(t, r.IsValid)
	assert.Equal(t, []string{`line 3: unknown record type '7'`}, r.Errors)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	r := Validate("X\nY")
	assert.False(t, r.IsValid)
	assert.GreaterOrEqual(t, len(r.Errors), 5)
}

type failingOpener struct{}

func (failingOpener) DecryptNACHAFile(string) (*envelope.NACHAFile, error) {
	return nil, errors.New("boom")
}

func TestValidateComplete_Plain(t *testing.T) {
	r := ValidateComplete(generate(t, "091000019"), nil)
	assert.True(t, r.IsValid)
	assert.False(t, r.IsEncrypted)
	assert.True(t, r.IntegrityValid)
	assert.Nil(t, r.Metadata)
}

func TestValidateComplete_Encrypted(t *testing.T) {
	env, err := envelope.New("s3cret")
	require.NoError(t, err)
	content := generate(t, "091000019")

	sealed, err := env.EncryptNACHAFile(content, []string{"DR001"}, effective)
	require.NoError(t, err)

	r := ValidateComplete(sealed, env)
	assert.True(t, r.IsValid, r.Errors)
	assert.True(t, r.IsEncrypted)
	assert.True(t, r.IntegrityValid)
	require.NotNil(t, r.Metadata)
	assert.Equal(t, []string{"DR001"}, r.Metadata.TransactionIDs)
	assert.Equal(t, record.BlockingFactor, r.Metadata.RecordCount)
}

func TestValidateComplete_IntegrityFailure(t *testing.T) {
	env, err := envelope.New("s3cret")
	require.NoError(t, err)

	sealed, err := env.Encrypt(generate(t, "091000019"), envelope.NACHA(envelope.NACHAMetadata{Checksum: "bad"}))
	require.NoError(t, err)

	r := ValidateComplete(sealed, env)
	assert.False(t, r.IsValid)
	assert.True(t, r.IsEncrypted)
	assert.False(t, r.IntegrityValid)
	assert.Contains(t, r.Errors, "content checksum does not match envelope metadata")
}

func TestValidateComplete_DecryptionFailure(t *testing.T) {
	r := ValidateComplete("FILE:00:00", failingOpener{})
	assert.False(t, r.IsValid)
	assert.True(t, r.IsEncrypted)
	assert.False(t, r.IntegrityValid)
	assert.Equal(t, []string{"boom"}, r.Errors)
}

func TestValidateComplete_WrongKey(t *testing.T) {
	a, err := envelope.New("s3cret")
	require.NoError(t, err)
	b, err := envelope.New("other")
	require.NoError(t, err)

	sealed, err := a.EncryptNACHAFile(generate(t, "091000019"), nil, effective)
	require.NoError(t, err)

	r := ValidateComplete(sealed, b)
	assert.False(t, r.IsValid)
	assert.Equal(t, []string{"decryption failed"}, r.Errors)
}

func TestCheckDigits(t *testing.T) {
	assert.Empty(t, CheckDigits(generate(t, "091000019")))

	errs := CheckDigits(generate(t, "123456789"))
	require.Len(t, errs, 1)
	assert.Equal(t, "line 3: check digit 9 does not match routing prefix 12345678", errs[0])
}
