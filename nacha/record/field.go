package record

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Column addresses a field by its 1-based starting column and width.
type Column struct {
	Start int
	Width int
}

// Of cuts the column out of a record line. Short lines yield what is there.
func (c Column) Of(line string) string {
	from := c.Start - 1
	if from >= len(line) {
		return ""
	}
	to := from + c.Width
	if to > len(line) {
		to = len(line)
	}
	return line[from:to]
}

// Int parses the column as a base-10 number after trimming spaces.
func (c Column) Int(line string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(c.Of(line)), 10, 64)
}

// builder writes fields left to right into a fixed-width line.
type builder struct {
	sb strings.Builder
}

func newBuilder() *builder {
	b := &builder{}
	b.sb.Grow(Length)
	return b
}

// alpha writes s left-justified and space-filled, truncated to width.
func (b *builder) alpha(s string, width int) *builder {
	s = ascii(s)
	if len(s) > width {
		s = s[:width]
	}
	b.sb.WriteString(s)
	b.sb.WriteString(strings.Repeat(" ", width-len(s)))
	return b
}

// right writes s right-justified and space-filled, keeping the rightmost characters.
func (b *builder) right(s string, width int) *builder {
	s = ascii(strings.TrimSpace(s))
	if len(s) > width {
		s = s[len(s)-width:]
	}
	b.sb.WriteString(strings.Repeat(" ", width-len(s)))
	b.sb.WriteString(s)
	return b
}

// digits writes s right-justified and zero-filled, keeping the low-order digits.
func (b *builder) digits(s string, width int) *builder {
	s = ascii(strings.TrimSpace(s))
	if len(s) > width {
		s = s[len(s)-width:]
	}
	b.sb.WriteString(strings.Repeat("0", width-len(s)))
	b.sb.WriteString(s)
	return b
}

func (b *builder) number(n int64, width int) *builder {
	return b.digits(strconv.FormatInt(n, 10), width)
}

func (b *builder) blank(width int) *builder {
	b.sb.WriteString(strings.Repeat(" ", width))
	return b
}

func (b *builder) String() string {
	return b.sb.String()
}

var fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ascii folds accents away and replaces whatever is left outside printable ASCII
// with a space, so that one character always takes one column.
func ascii(s string) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return ' '
		}
		return r
	}, folded)
}
