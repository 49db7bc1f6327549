package model

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Company identifies the originator of a file.
type Company struct {
	ImmediateOrigin          string
	ImmediateDestination     string
	ImmediateOriginName      string
	ImmediateDestinationName string
	ReferenceCode            string

	Name              string
	ID                string
	OriginatingDFI    string
	DiscretionaryData string

	// EntryDescription defaults to PAYMENT, SECCode to PPD.
	EntryDescription string
	SECCode          string
}

type FileStatus string

const (
	StatusGenerated   FileStatus = "generated"
	StatusTransmitted FileStatus = "transmitted"
	StatusFailed      FileStatus = "failed"
)

// File describes one generated NACHA file. It is created once per generation; only
// Status, Transmitted and FailureReason change afterwards, driven by the transmission side.
type File struct {
	Filename         string
	Content          string
	EffectiveDate    civil.Date
	FileType         FileType
	TransactionCount int
	TotalAmount      decimal.Decimal
	TotalDebits      decimal.Decimal
	TotalCredits     decimal.Decimal
	// TransactionIDs holds one id per entry in file order; entries without an id keep a blank slot.
	TransactionIDs []string
	GeneratedAt    time.Time

	Status        FileStatus
	Transmitted   bool
	FailureReason string
}
