package envelope

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// MetadataKind tags the metadata stored next to an enveloped payload.
type MetadataKind string

const (
	KindNone   MetadataKind = ""
	KindNACHA  MetadataKind = "NACHA"
	KindConfig MetadataKind = "CONFIG"
)

// NACHAMetadata describes an enveloped NACHA file.
type NACHAMetadata struct {
	TransactionIDs []string
	EffectiveDate  civil.Date
	RecordCount    int
	// Checksum is the lowercase hex SHA-256 of the file content.
	Checksum string
}

// Metadata holds exactly one known kind; the field matching Kind is set.
type Metadata struct {
	Kind       MetadataKind
	NACHA      *NACHAMetadata
	Attributes map[string]string
}

func NACHA(m NACHAMetadata) Metadata {
	return Metadata{Kind: KindNACHA, NACHA: &m}
}

// Config wraps free-form configuration attributes.
func Config(attrs map[string]string) Metadata {
	return Metadata{Kind: KindConfig, Attributes: attrs}
}

func (m Metadata) encode(e *jx.Encoder) {
	switch m.Kind {
	case KindNACHA:
		n := m.NACHA
		if n == nil {
			n = &NACHAMetadata{}
		}
		e.Obj(func(e *jx.Encoder) {
			e.Field("type", func(e *jx.Encoder) { e.Str(string(KindNACHA)) })
			e.Field("transactionIds", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, id := range n.TransactionIDs {
						e.Str(id)
					}
				})
			})
			e.Field("effectiveDate", func(e *jx.Encoder) { e.Str(formatDate(n.EffectiveDate)) })
			e.Field("recordCount", func(e *jx.Encoder) { e.Int(n.RecordCount) })
			e.Field("checksum", func(e *jx.Encoder) { e.Str(n.Checksum) })
		})
	case KindConfig:
		keys := make([]string, 0, len(m.Attributes))
		for k := range m.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.Obj(func(e *jx.Encoder) {
			e.Field("type", func(e *jx.Encoder) { e.Str(string(KindConfig)) })
			e.Field("attributes", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					for _, k := range keys {
						e.Field(k, func(e *jx.Encoder) { e.Str(m.Attributes[k]) })
					}
				})
			})
		})
	default:
		e.Null()
	}
}

func decodeMetadata(d *jx.Decoder) (Metadata, error) {
	if d.Next() == jx.Null {
		return Metadata{}, d.Null()
	}

	var (
		m     Metadata
		nacha NACHAMetadata
		attrs map[string]string
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "type":
			v, err := d.Str()
			m.Kind = MetadataKind(v)
			return err
		case "transactionIds":
			return d.Arr(func(d *jx.Decoder) error {
				id, err := d.Str()
				nacha.TransactionIDs = append(nacha.TransactionIDs, id)
				return err
			})
		case "effectiveDate":
			v, err := d.Str()
			if err != nil {
				return err
			}
			if nacha.EffectiveDate, err = parseDate(v); err != nil {
				return errors.Wrap(err, "effectiveDate")
			}
			return nil
		case "recordCount":
			v, err := d.Int()
			nacha.RecordCount = v
			return err
		case "checksum":
			v, err := d.Str()
			nacha.Checksum = v
			return err
		case "attributes":
			attrs = map[string]string{}
			return d.Obj(func(d *jx.Decoder, key string) error {
				v, err := d.Str()
				attrs[key] = v
				return err
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return Metadata{}, err
	}

	switch m.Kind {
	case KindNACHA:
		m.NACHA = &nacha
	case KindConfig:
		m.Attributes = attrs
	default:
		return Metadata{}, errors.Errorf("unknown metadata type %q", m.Kind)
	}
	return m, nil
}

// formatDate leaves the zero date empty so it survives a round trip.
func formatDate(d civil.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(s)
}
