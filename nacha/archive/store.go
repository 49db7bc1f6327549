// Package archive keeps generated files and their transmission status in a directory.
package archive

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/alapierre/go-nacha/nacha/envelope"
	"github.com/alapierre/go-nacha/nacha/model"
	"github.com/alapierre/go-nacha/nacha/mutex"
)

var logger = logrus.WithField("component", "nacha.archive")

const recordExt = ".json"

var (
	ErrNotFound          = errors.New("file not found in archive")
	ErrExists            = errors.New("file already archived")
	ErrInvalidFilename   = errors.New("invalid filename")
	ErrInvalidTransition = errors.New("invalid status transition")
)

var transitions = map[model.FileStatus][]model.FileStatus{
	model.StatusGenerated: {model.StatusTransmitted, model.StatusFailed},
	model.StatusFailed:    {model.StatusTransmitted, model.StatusFailed},
}

func canTransition(from, to model.FileStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Sealer encrypts archived content; *envelope.Envelope satisfies it.
type Sealer interface {
	EncryptNACHAFile(content string, transactionIDs []string, effective civil.Date) (string, error)
	DecryptNACHAFile(opaque string) (*envelope.NACHAFile, error)
}

type Store struct {
	dir    string
	sealer Sealer
	clock  clockwork.Clock
	locks  mutex.KeyedRWMutex[string]
}

type Option func(*Store)

// WithSealer stores content encrypted. Records written without a sealer stay readable.
func WithSealer(s Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

func WithClock(c clockwork.Clock) Option {
	return func(st *Store) { st.clock = c }
}

// Open uses dir as the archive root, creating it when missing.
func Open(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create archive dir %s", dir)
	}
	s := &Store{dir: dir, clock: clockwork.NewRealClock()}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Store) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", errors.Wrapf(ErrInvalidFilename, "%q", filename)
	}
	return filepath.Join(s.dir, filename+recordExt), nil
}

// Save archives a newly generated file. A blank status is stored as generated.
func (s *Store) Save(ctx context.Context, f model.File) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(f.Filename)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(f.Filename)
	defer s.locks.Unlock(f.Filename)

	if _, err := os.Stat(p); err == nil {
		return nil, errors.Wrap(ErrExists, f.Filename)
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "stat record")
	}

	if f.Status == "" {
		f.Status = model.StatusGenerated
	}
	r := &Record{ID: uuid.New(), File: f, UpdatedAt: s.clock.Now()}
	if err := s.write(p, r); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"id":       r.ID,
		"filename": f.Filename,
		"sealed":   r.Sealed,
	}).Info("File archived")
	return r, nil
}

// Load returns an archived file with its content in plain form. Sealed content that
// fails the checksum is reported with envelope.ErrIntegrity.
func (s *Store) Load(ctx context.Context, filename string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(filename)
	if err != nil {
		return nil, err
	}

	s.locks.RLock(filename)
	defer s.locks.RUnlock(filename)

	return s.read(p)
}

// List returns every archived file ordered by generation time, then filename.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "read archive dir")
	}

	var out []*Record
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		r, err := s.Load(ctx, strings.TrimSuffix(name, recordExt))
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", name)
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].File, out[j].File
		if !a.GeneratedAt.Equal(b.GeneratedAt) {
			return a.GeneratedAt.Before(b.GeneratedAt)
		}
		return a.Filename < b.Filename
	})
	return out, nil
}

func (s *Store) MarkTransmitted(ctx context.Context, filename string) (*Record, error) {
	return s.transition(ctx, filename, model.StatusTransmitted, "")
}

// MarkFailed records a failed transmission attempt; failed files may be retried.
func (s *Store) MarkFailed(ctx context.Context, filename, reason string) (*Record, error) {
	return s.transition(ctx, filename, model.StatusFailed, reason)
}

func (s *Store) transition(ctx context.Context, filename string, to model.FileStatus, reason string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(filename)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(filename)
	defer s.locks.Unlock(filename)

	r, err := s.read(p)
	if err != nil {
		return nil, err
	}
	from := r.File.Status
	if !canTransition(from, to) {
		return nil, errors.Wrapf(ErrInvalidTransition, "%s: %s -> %s", filename, from, to)
	}

	r.File.Status = to
	r.File.FailureReason = reason
	r.File.Transmitted = to == model.StatusTransmitted
	r.UpdatedAt = s.clock.Now()
	if err := s.write(p, r); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"filename": filename,
		"from":     from,
		"to":       to,
	}).Info("File status changed")
	return r, nil
}

// write persists r, sealing the content when a sealer is configured. r.Sealed is updated.
func (s *Store) write(p string, r *Record) error {
	content := r.File.Content
	r.Sealed = false
	if s.sealer != nil {
		sealed, err := s.sealer.EncryptNACHAFile(content, r.File.TransactionIDs, r.File.EffectiveDate)
		if err != nil {
			return errors.Wrap(err, "seal content")
		}
		content, r.Sealed = sealed, true
	}

	tmp, err := os.CreateTemp(s.dir, ".record-*")
	if err != nil {
		return errors.Wrap(err, "create temp record")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(r.encode(content)); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write record")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close record")
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return errors.Wrap(err, "rename record")
	}
	return nil
}

func (s *Store) read(p string) (*Record, error) {
	raw, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNotFound, filepath.Base(strings.TrimSuffix(p, recordExt)))
	}
	if err != nil {
		return nil, errors.Wrap(err, "read record")
	}

	r, content, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if !r.Sealed {
		r.File.Content = content
		return r, nil
	}

	if s.sealer == nil {
		return nil, errors.Errorf("%s is sealed and no sealer is configured", r.File.Filename)
	}
	f, err := s.sealer.DecryptNACHAFile(content)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", r.File.Filename)
	}
	if err := f.Verify(); err != nil {
		return nil, errors.Wrap(err, r.File.Filename)
	}
	r.File.Content = f.Content
	return r, nil
}
