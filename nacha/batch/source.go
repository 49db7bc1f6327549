package batch

import (
	"io"

	"github.com/alapierre/go-nacha/nacha/model"
)

// EntrySource is an iterator over payable entries. Next returns io.EOF when exhausted.
// Sources may be backed by slices, DB cursors, CSV readers, etc.
type EntrySource interface {
	Next() (*model.PayableEntry, error)
}

// transactionSource adapts combined debit/credit transactions.
type transactionSource struct {
	txs      []model.Transaction
	fileType model.FileType
	idx      int
}

// NewTransactionSource serves combined transactions, taking the side that matches
// fileType unless a transaction pins its own type.
func NewTransactionSource(txs []model.Transaction, fileType model.FileType) EntrySource {
	return &transactionSource{txs: txs, fileType: fileType}
}

func (s *transactionSource) Next() (*model.PayableEntry, error) {
	if s.idx >= len(s.txs) {
		return nil, io.EOF
	}
	p := s.txs[s.idx].Payable(s.fileType)
	s.idx++
	return &p, nil
}

// entrySource adapts pre-split single-sided entries.
type entrySource struct {
	entries []model.Entry
	idx     int
}

func NewEntrySource(entries []model.Entry) EntrySource {
	return &entrySource{entries: entries}
}

func (s *entrySource) Next() (*model.PayableEntry, error) {
	if s.idx >= len(s.entries) {
		return nil, io.EOF
	}
	p := s.entries[s.idx].Payable()
	s.idx++
	return &p, nil
}
