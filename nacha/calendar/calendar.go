// Package calendar holds the bank holiday set used by business-day arithmetic.
//
// A Calendar never changes after construction. Updates are published by building a
// new Calendar and swapping it into a Holder, so readers always see a whole snapshot.
package calendar

import (
	"context"
	"sort"
	"sync/atomic"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("component", "nacha.calendar")

// Holiday is a non-settlement date. A recurring holiday repeats on the same month and day every year.
type Holiday struct {
	Date      civil.Date
	Name      string
	Recurring bool
}

type monthDay struct {
	month int
	day   int
}

// Calendar is an immutable holiday set.
type Calendar struct {
	fixed     map[civil.Date]struct{}
	recurring map[monthDay]struct{}
	holidays  []Holiday
}

// New builds a calendar from the given holidays. Duplicates are collapsed.
func New(holidays ...Holiday) *Calendar {
	c := &Calendar{
		fixed:     make(map[civil.Date]struct{}, len(holidays)),
		recurring: make(map[monthDay]struct{}),
		holidays:  make([]Holiday, 0, len(holidays)),
	}
	for _, h := range holidays {
		if h.Recurring {
			md := monthDay{month: int(h.Date.Month), day: h.Date.Day}
			if _, ok := c.recurring[md]; ok {
				continue
			}
			c.recurring[md] = struct{}{}
		} else {
			if _, ok := c.fixed[h.Date]; ok {
				continue
			}
			c.fixed[h.Date] = struct{}{}
		}
		c.holidays = append(c.holidays, h)
	}
	sort.Slice(c.holidays, func(i, j int) bool {
		return c.holidays[i].Date.Before(c.holidays[j].Date)
	})
	return c
}

// Empty returns a calendar without holidays.
func Empty() *Calendar {
	return New()
}

// IsHoliday reports whether d falls on a holiday of this calendar.
func (c *Calendar) IsHoliday(d civil.Date) bool {
	if c == nil {
		return false
	}
	if _, ok := c.fixed[d]; ok {
		return true
	}
	_, ok := c.recurring[monthDay{month: int(d.Month), day: d.Day}]
	return ok
}

// Holidays returns a copy of the holiday list, ordered by date.
func (c *Calendar) Holidays() []Holiday {
	if c == nil {
		return nil
	}
	out := make([]Holiday, len(c.holidays))
	copy(out, c.holidays)
	return out
}

func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.holidays)
}

// Provider supplies holiday lists, typically from persistent storage.
type Provider interface {
	Holidays(ctx context.Context) ([]Holiday, error)
}

// StaticProvider serves a fixed list.
type StaticProvider []Holiday

func (p StaticProvider) Holidays(context.Context) ([]Holiday, error) {
	out := make([]Holiday, len(p))
	copy(out, p)
	return out, nil
}

// Holder publishes the current calendar to concurrent readers.
type Holder struct {
	current atomic.Pointer[Calendar]
}

// NewHolder returns a holder serving c, or an empty calendar when c is nil.
func NewHolder(c *Calendar) *Holder {
	h := &Holder{}
	if c == nil {
		c = Empty()
	}
	h.current.Store(c)
	return h
}

// Current returns the calendar snapshot in effect.
func (h *Holder) Current() *Calendar {
	if c := h.current.Load(); c != nil {
		return c
	}
	return Empty()
}

// Replace swaps in a new calendar as a whole.
func (h *Holder) Replace(c *Calendar) {
	if c == nil {
		c = Empty()
	}
	h.current.Store(c)
}

// Refresh loads holidays from p and replaces the current calendar. On error the
// previous calendar stays in effect.
func (h *Holder) Refresh(ctx context.Context, p Provider) error {
	holidays, err := p.Holidays(ctx)
	if err != nil {
		return errors.Wrap(err, "load holidays")
	}
	next := New(holidays...)
	h.Replace(next)
	logger.WithField("holidays", next.Len()).Debug("Holiday calendar replaced")
	return nil
}
