package calendar

import (
	"context"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func TestCalendar_IsHoliday(t *testing.T) {
	c := New(
		Holiday{Date: date(2024, 9, 2), Name: "Labor Day"},
		Holiday{Date: date(2020, 12, 25), Name: "Christmas", Recurring: true},
	)

	assert.True(t, c.IsHoliday(date(2024, 9, 2)))
	assert.False(t, c.IsHoliday(date(2025, 9, 2)), "fixed holiday must not repeat")
	assert.True(t, c.IsHoliday(date(2031, 12, 25)), "recurring holiday repeats every year")
	assert.False(t, c.IsHoliday(date(2024, 12, 24)))
}

func TestCalendar_DuplicatesAndOrder(t *testing.T) {
	c := New(
		Holiday{Date: date(2024, 12, 25)},
		Holiday{Date: date(2024, 1, 1)},
		Holiday{Date: date(2024, 12, 25)},
	)
	require.Equal(t, 2, c.Len())
	hs := c.Holidays()
	assert.Equal(t, date(2024, 1, 1), hs[0].Date)

	hs[0].Date = date(1999, 1, 1)
	assert.Equal(t, date(2024, 1, 1), c.Holidays()[0].Date, "Holidays must return a copy")
}

func TestCalendar_NilIsEmpty(t *testing.T) {
	var c *Calendar
	assert.False(t, c.IsHoliday(date(2024, 1, 1)))
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Holidays())
}

type failingProvider struct{}

func (failingProvider) Holidays(context.Context) ([]Holiday, error) {
	return nil, errors.New("db down")
}

func TestHolder_RefreshSwapsWholeCalendar(t *testing.T) {
	h := NewHolder(New(Holiday{Date: date(2024, 1, 1)}))
	before := h.Current()

	err := h.Refresh(context.Background(), StaticProvider{{Date: date(2024, 7, 4)}})
	require.NoError(t, err)

	assert.True(t, before.IsHoliday(date(2024, 1, 1)), "old snapshot stays intact")
	assert.False(t, h.Current().IsHoliday(date(2024, 1, 1)))
	assert.True(t, h.Current().IsHoliday(date(2024, 7, 4)))
}

func TestHolder_RefreshKeepsCalendarOnError(t *testing.T) {
	h := NewHolder(New(Holiday{Date: date(2024, 1, 1)}))

	err := h.Refresh(context.Background(), failingProvider{})
	require.Error(t, err)
	assert.True(t, h.Current().IsHoliday(date(2024, 1, 1)))
}

func TestHolder_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	a := New(Holiday{Date: date(2024, 1, 1)}, Holiday{Date: date(2024, 1, 2)})
	b := New(Holiday{Date: date(2024, 2, 1)}, Holiday{Date: date(2024, 2, 2)})
	h := NewHolder(a)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c := h.Current()
				// both dates of a snapshot are always present together
				assert.Equal(t, c.IsHoliday(date(2024, 1, 1)), c.IsHoliday(date(2024, 1, 2)))
			}
		}()
	}
	for j := 0; j < 1000; j++ {
		if j%2 == 0 {
			h.Replace(b)
		} else {
			h.Replace(a)
		}
	}
	wg.Wait()
}

func TestHolder_NilValues(t *testing.T) {
	h := NewHolder(nil)
	assert.Equal(t, 0, h.Current().Len())
	h.Replace(nil)
	assert.Equal(t, 0, h.Current().Len())

	var zero Holder
	assert.Equal(t, 0, zero.Current().Len())
}
