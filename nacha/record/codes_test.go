package record

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alapierre/go-nacha/nacha/model"
)

func TestCents(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"100.00", 10000},
		{"0", 0},
		{"0.01", 1},
		{"19.99", 1999},
		{"1.005", 101},
		{"1.004", 100},
		{"12345678.9", 1234567890},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, Cents(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestEntryCents_Limits(t *testing.T) {
	c, err := EntryCents(decimal.RequireFromString("99999999.99"))
	require.NoError(t, err)
	assert.EqualValues(t, MaxCents, c)

	_, err = EntryCents(decimal.RequireFromString("100000000.00"))
	assert.True(t, errors.Is(err, ErrAmountOverflow))

	_, err = EntryCents(decimal.RequireFromString("-0.01"))
	assert.True(t, errors.Is(err, ErrNegativeAmount))
}

func TestTransactionCode(t *testing.T) {
	assert.Equal(t, 27, TransactionCode(model.Debit, model.Checking))
	assert.Equal(t, 37, TransactionCode(model.Debit, model.Savings))
	assert.Equal(t, 22, TransactionCode(model.Credit, model.Checking))
	assert.Equal(t, 32, TransactionCode(model.Credit, model.Savings))
	assert.Equal(t, 27, TransactionCode(model.Debit, ""))

	for _, code := range []int{22, 23, 32} {
		assert.True(t, IsCreditCode(code), code)
	}
	for _, code := range []int{27, 28, 37} {
		assert.False(t, IsCreditCode(code), code)
	}
}

func TestServiceClass(t *testing.T) {
	assert.Equal(t, DebitsOnly, ServiceClass(true, false))
	assert.Equal(t, CreditsOnly, ServiceClass(false, true))
	assert.Equal(t, MixedDebitsAndCredits, ServiceClass(true, true))
}

func TestEntryHash(t *testing.T) {
	h, err := ComputeEntryHash("123456789", "987654321")
	require.NoError(t, err)
	assert.EqualValues(t, 12345678+98765432, h)

	routings := make([]string, 150)
	for i := range routings {
		routings[i] = "999999999"
	}
	h, err = ComputeEntryHash(routings...)
	require.NoError(t, err)
	assert.EqualValues(t, (int64(150)*99999999)%10_000_000_000, h, "hash wraps at 10 digits")

	_, err = ComputeEntryHash("12A456789")
	assert.Error(t, err)
}

func TestTraceSequence(t *testing.T) {
	s := NewTraceSequence("091000019")
	assert.Equal(t, "091000010000001", s.Next())
	assert.Equal(t, "091000010000002", s.Next())

	short := NewTraceSequence("1234")
	assert.Equal(t, "000012340000001", short.Next())
}
