package archive

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alapierre/go-nacha/nacha/model"
)

// Record is an archived file together with its bookkeeping.
type Record struct {
	ID        uuid.UUID
	File      model.File
	UpdatedAt time.Time
	// Sealed reports whether the content is stored as an encrypted envelope.
	Sealed bool
}

// encode writes r with content replacing File.Content, so sealed content never
// passes through the record in plain form.
func (r *Record) encode(content string) []byte {
	f := r.File
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(r.ID.String()) })
		e.Field("filename", func(e *jx.Encoder) { e.Str(f.Filename) })
		e.Field("fileType", func(e *jx.Encoder) { e.Str(string(f.FileType)) })
		e.Field("effectiveDate", func(e *jx.Encoder) {
			if f.EffectiveDate.IsZero() {
				e.Str("")
				return
			}
			e.Str(f.EffectiveDate.String())
		})
		e.Field("transactionCount", func(e *jx.Encoder) { e.Int(f.TransactionCount) })
		e.Field("totalAmount", func(e *jx.Encoder) { e.Str(f.TotalAmount.StringFixed(2)) })
		e.Field("totalDebits", func(e *jx.Encoder) { e.Str(f.TotalDebits.StringFixed(2)) })
		e.Field("totalCredits", func(e *jx.Encoder) { e.Str(f.TotalCredits.StringFixed(2)) })
		e.Field("transactionIds", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, id := range f.TransactionIDs {
					e.Str(id)
				}
			})
		})
		e.Field("generatedAt", func(e *jx.Encoder) { e.Str(f.GeneratedAt.UTC().Format(time.RFC3339Nano)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(f.Status)) })
		e.Field("transmitted", func(e *jx.Encoder) { e.Bool(f.Transmitted) })
		e.Field("failureReason", func(e *jx.Encoder) { e.Str(f.FailureReason) })
		e.Field("updatedAt", func(e *jx.Encoder) { e.Str(r.UpdatedAt.UTC().Format(time.RFC3339Nano)) })
		e.Field("sealed", func(e *jx.Encoder) { e.Bool(r.Sealed) })
		e.Field("content", func(e *jx.Encoder) { e.Str(content) })
	})
	return e.Bytes()
}

// decode is the inverse of encode; the returned content is as stored.
func decode(raw []byte) (*Record, string, error) {
	var (
		r       Record
		content string
	)
	f := &r.File

	str := func(d *jx.Decoder, dst *string) error {
		v, err := d.Str()
		*dst = v
		return err
	}
	amount := func(d *jx.Decoder, dst *decimal.Decimal) error {
		v, err := d.Str()
		if err != nil {
			return err
		}
		*dst, err = decimal.NewFromString(v)
		return err
	}
	timestamp := func(d *jx.Decoder, dst *time.Time) error {
		v, err := d.Str()
		if err != nil {
			return err
		}
		*dst, err = time.Parse(time.RFC3339Nano, v)
		return err
	}

	err := jx.DecodeBytes(raw).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			r.ID, err = uuid.Parse(v)
			return err
		case "filename":
			return str(d, &f.Filename)
		case "fileType":
			v, err := d.Str()
			f.FileType = model.FileType(v)
			return err
		case "effectiveDate":
			v, err := d.Str()
			if err != nil {
				return err
			}
			if v == "" {
				return nil
			}
			f.EffectiveDate, err = civil.ParseDate(v)
			return err
		case "transactionCount":
			v, err := d.Int()
			f.TransactionCount = v
			return err
		case "totalAmount":
			return amount(d, &f.TotalAmount)
		case "totalDebits":
			return amount(d, &f.TotalDebits)
		case "totalCredits":
			return amount(d, &f.TotalCredits)
		case "transactionIds":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				f.TransactionIDs = append(f.TransactionIDs, v)
				return err
			})
		case "generatedAt":
			return timestamp(d, &f.GeneratedAt)
		case "status":
			v, err := d.Str()
			f.Status = model.FileStatus(v)
			return err
		case "transmitted":
			v, err := d.Bool()
			f.Transmitted = v
			return err
		case "failureReason":
			return str(d, &f.FailureReason)
		case "updatedAt":
			return timestamp(d, &r.UpdatedAt)
		case "sealed":
			v, err := d.Bool()
			r.Sealed = v
			return err
		case "content":
			return str(d, &content)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "decode record")
	}
	return &r, content, nil
}
