// Package bizday answers banking-day questions over a holiday calendar and derives
// ACH effective dates from them.
//
// NextBusinessDay and PreviousBusinessDay are strict: they always move at least one
// calendar day. ACHEffectiveDate and NextValidEffectiveDate keep a date that is
// already a business day.
package bizday

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/alapierre/go-nacha/nacha/calendar"
)

// Convention selects how BusinessDaysBetween reports a count.
type Convention int

const (
	// Signed counts business days d with a < d <= b and negates the count when b is before a.
	Signed Convention = iota
	// Magnitude reports the same count without a sign.
	Magnitude
)

// CalendarSource yields the holiday calendar in effect. *calendar.Holder satisfies it.
type CalendarSource interface {
	Current() *calendar.Calendar
}

type Policy struct {
	source     CalendarSource
	convention Convention
}

type Option func(*Policy)

func WithConvention(c Convention) Option {
	return func(p *Policy) { p.convention = c }
}

// New returns a policy reading holidays from source on every query.
func New(source CalendarSource, opts ...Option) *Policy {
	p := &Policy{source: source}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewStatic is a shortcut for a fixed calendar.
func NewStatic(c *calendar.Calendar, opts ...Option) *Policy {
	return New(calendar.NewHolder(c), opts...)
}

func (p *Policy) calendar() *calendar.Calendar {
	if p.source == nil {
		return calendar.Empty()
	}
	return p.source.Current()
}

// IsBusinessDay is false on Saturdays, Sundays and holidays.
func (p *Policy) IsBusinessDay(d civil.Date) bool {
	return p.isBusinessDay(p.calendar(), d)
}

// IsBusinessTime is IsBusinessDay for a timestamp, ignoring the time of day.
func (p *Policy) IsBusinessTime(t time.Time) bool {
	return p.IsBusinessDay(civil.DateOf(t))
}

func (p *Policy) isBusinessDay(c *calendar.Calendar, d civil.Date) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(d)
}

// NextBusinessDay returns the first business day strictly after d.
func (p *Policy) NextBusinessDay(d civil.Date) civil.Date {
	return p.step(p.calendar(), d, 1)
}

// PreviousBusinessDay returns the last business day strictly before d.
func (p *Policy) PreviousBusinessDay(d civil.Date) civil.Date {
	return p.step(p.calendar(), d, -1)
}

// step uses one calendar snapshot for the whole walk.
func (p *Policy) step(c *calendar.Calendar, d civil.Date, dir int) civil.Date {
	d = d.AddDays(dir)
	for !p.isBusinessDay(c, d) {
		d = d.AddDays(dir)
	}
	return d
}

// AddBusinessDays moves n business days forward (n > 0) or back (n < 0). Zero returns d.
func (p *Policy) AddBusinessDays(d civil.Date, n int) civil.Date {
	c := p.calendar()
	dir := 1
	if n < 0 {
		dir, n = -1, -n
	}
	for i := 0; i < n; i++ {
		d = p.step(c, d, dir)
	}
	return d
}

// BusinessDaysBetween counts business days in (min(a,b), max(a,b)], signed by the
// policy's convention.
func (p *Policy) BusinessDaysBetween(a, b civil.Date) int {
	c := p.calendar()
	sign := 1
	from, to := a, b
	if b.Before(a) {
		sign = -1
		from, to = b, a
	}
	count := 0
	for d := from.AddDays(1); !d.After(to); d = d.AddDays(1) {
		if p.isBusinessDay(c, d) {
			count++
		}
	}
	if p.convention == Magnitude {
		return count
	}
	return sign * count
}
