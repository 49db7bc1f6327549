// Package sqlstore keeps bank holidays in SQLite and serves them as a calendar.Provider.
package sqlstore

import (
	"context"
	"database/sql"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/alapierre/go-nacha/nacha/calendar"
)

var logger = logrus.WithField("component", "nacha.calendar.sqlstore")

const schema = `
CREATE TABLE IF NOT EXISTS holidays (
	date      TEXT PRIMARY KEY,
	name      TEXT NOT NULL DEFAULT '',
	recurring INTEGER NOT NULL DEFAULT 0
);`

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open holidays db")
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create holidays schema")
	}
	logger.WithField("path", path).Debug("Holiday store opened")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a holiday or updates the one already stored for that date.
func (s *Store) Save(ctx context.Context, h calendar.Holiday) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (date, name, recurring) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name, recurring = excluded.recurring`,
		h.Date.String(), h.Name, h.Recurring)
	if err != nil {
		return errors.Wrapf(err, "save holiday %s", h.Date)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, d civil.Date) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE date = ?", d.String()); err != nil {
		return errors.Wrapf(err, "delete holiday %s", d)
	}
	return nil
}

// Holidays implements calendar.Provider.
func (s *Store) Holidays(ctx context.Context) ([]calendar.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date, name, recurring FROM holidays ORDER BY date")
	if err != nil {
		return nil, errors.Wrap(err, "query holidays")
	}
	defer rows.Close()

	var out []calendar.Holiday
	for rows.Next() {
		var (
			raw string
			h   calendar.Holiday
		)
		if err := rows.Scan(&raw, &h.Name, &h.Recurring); err != nil {
			return nil, errors.Wrap(err, "scan holiday")
		}
		d, err := civil.ParseDate(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse holiday date %q", raw)
		}
		h.Date = d
		out = append(out, h)
	}
	return out, rows.Err()
}
