package main

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alapierre/go-nacha/nacha/archive"
	"github.com/alapierre/go-nacha/nacha/batch"
	"github.com/alapierre/go-nacha/nacha/bizday"
	"github.com/alapierre/go-nacha/nacha/calendar"
	"github.com/alapierre/go-nacha/nacha/calendar/sqlstore"
	"github.com/alapierre/go-nacha/nacha/config"
	"github.com/alapierre/go-nacha/nacha/model"
	"github.com/alapierre/go-nacha/nacha/util"
	"github.com/alapierre/go-nacha/nacha/validate"
)

const summary = `{{ .Filename }}
  type:         {{ .FileType | printf "%s" | upper }}
  effective:    {{ .EffectiveDate }}
  entries:      {{ .TransactionCount }}
  total:        {{ .TotalAmount.StringFixed 2 }}
  valid:        {{ .Valid }}
  archived as:  {{ .ID }}
`

func main() {

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	holidays := calendar.NewHolder(calendar.Empty())
	if cfg.HolidaysDB != "" {
		store, err := sqlstore.Open(cfg.HolidaysDB)
		if err != nil {
			panic(err)
		}
		defer store.Close()

		if err := holidays.Refresh(ctx, store); err != nil {
			panic(err)
		}
	}

	policy := bizday.New(holidays)
	builder := batch.NewBuilder(policy)

	env, err := cfg.Envelope()
	if err != nil {
		panic(err)
	}

	files, err := archive.Open(cfg.ArchiveDir, archive.WithSealer(env))
	if err != nil {
		panic(err)
	}

	today := civil.DateOf(time.Now())
	res, err := builder.Generate(batch.Request{
		Company:       cfg.Company,
		EffectiveDate: policy.NextBusinessDay(today),
		FileType:      model.FileTypeDebit,
		Source:        batch.NewTransactionSource(demoTransactions(), model.FileTypeDebit),
	})
	if err != nil {
		panic(err)
	}

	sealed, err := env.EncryptNACHAFile(res.File.Content, res.File.TransactionIDs, res.File.EffectiveDate)
	if err != nil {
		panic(err)
	}
	check := validate.ValidateComplete(sealed, env)
	for _, e := range check.Errors {
		logrus.Warn(e)
	}

	rec, err := files.Save(ctx, res.File)
	if err != nil {
		panic(err)
	}

	out, err := util.MergeTemplate(summary, map[string]any{
		"Filename":         rec.File.Filename,
		"FileType":         rec.File.FileType,
		"EffectiveDate":    rec.File.EffectiveDate,
		"TransactionCount": rec.File.TransactionCount,
		"TotalAmount":      rec.File.TotalAmount,
		"Valid":            check.IsValid && check.IntegrityValid,
		"ID":               rec.ID,
	})
	if err != nil {
		panic(err)
	}
	fmt.Print(string(out))
}

func demoTransactions() []model.Transaction {
	payer := model.Party{
		RoutingNumber:  "091000019",
		AccountNumber:  "1234567890",
		IndividualName: "John Doe",
	}
	payee := model.Party{
		RoutingNumber:  "091000019",
		AccountNumber:  "9876543210",
		IndividualName: "ACME CORP",
	}

	return []model.Transaction{
		{ID: uuid.NewString(), Debit: payer, Credit: payee, Amount: decimal.RequireFromString("100.00")},
		{ID: uuid.NewString(), Debit: payer, Credit: payee, Amount: decimal.RequireFromString("49.99")},
	}
}
