package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Party holds one side (debit or credit) of a transfer.
type Party struct {
	RoutingNumber  string
	AccountNumber  string
	AccountType    AccountType
	IndividualID   string
	IndividualName string
}

// Transaction is the combined shape: one transfer carrying both the debit-side and
// the credit-side account. Which side ends up in a file depends on the file type,
// unless Type pins the transaction to one side.
type Transaction struct {
	ID            string
	Type          EntryKind // optional
	Debit         Party
	Credit        Party
	Amount        decimal.Decimal
	EffectiveDate civil.Date
}

// Entry is the pre-split shape: a single-sided record that is already either a debit or a credit.
type Entry struct {
	ID            string
	Kind          EntryKind
	Party         Party
	Amount        decimal.Decimal
	EffectiveDate civil.Date
}

// Payable normalizes a combined transaction for a file of the given type.
func (t *Transaction) Payable(fileType FileType) PayableEntry {
	kind := t.Type
	if kind == "" {
		kind = fileType.Kind()
	}
	side := t.Debit
	if kind == Credit {
		side = t.Credit
	}
	return newPayable(t.ID, kind, side, t.Amount, t.EffectiveDate)
}

// Payable normalizes a pre-split entry.
func (e *Entry) Payable() PayableEntry {
	return newPayable(e.ID, e.Kind, e.Party, e.Amount, e.EffectiveDate)
}

func newPayable(id string, kind EntryKind, p Party, amount decimal.Decimal, date civil.Date) PayableEntry {
	accountType := p.AccountType
	if accountType == "" {
		accountType = Checking
	}
	return PayableEntry{
		TransactionID:  id,
		Kind:           kind,
		AccountType:    accountType,
		RoutingNumber:  NormalizeRoutingNumber(p.RoutingNumber),
		AccountNumber:  p.AccountNumber,
		IndividualID:   p.IndividualID,
		IndividualName: p.IndividualName,
		Amount:         amount,
		EffectiveDate:  date,
	}
}
