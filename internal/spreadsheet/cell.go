package spreadsheet

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	DateLayout = "02.01.2006" // dd.MM.yyyy
	TimeLayout = "15:04"      // HH:mm
)

var errNotText = errors.New("cell does not hold text")

// Kind is the declared type of a cell.
type Kind int

const (
	Blank Kind = iota
	Numeric
	Text
	Other
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return "other"
	}
}

// Cell is a raw workbook cell. A nil *Cell is a cell that does not exist.
type Cell struct {
	Kind  Kind
	Value string
}

func TextCell(s string) *Cell {
	return &Cell{Kind: Text, Value: s}
}

func NumberCell(v float64) *Cell {
	return &Cell{Kind: Numeric, Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

// ParseError reports a date or time cell whose text does not match its layout.
type ParseError struct {
	Column string
	Value  string
	Layout string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("column %s: cannot parse %q as %s: %v", e.Column, e.Value, e.Layout, e.Err)
	}
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Value, e.Layout, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (c *Cell) empty() bool {
	return c == nil || c.Kind == Blank || (c.Kind == Text && c.Value == "")
}

// DateValue parses a dd.MM.yyyy text cell as midnight in loc and returns the
// instant in UTC. Empty cells yield nil.
func DateValue(c *Cell, loc *time.Location) (*time.Time, error) {
	if c.empty() {
		return nil, nil
	}
	if c.Kind != Text {
		return nil, &ParseError{Value: c.Value, Layout: DateLayout, Err: errNotText}
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, c.Value, loc)
	if err != nil {
		return nil, &ParseError{Value: c.Value, Layout: DateLayout, Err: err}
	}
	t = t.UTC()
	return &t, nil
}

// TimeValue parses an HH:mm text cell as an offset from midnight. Empty cells yield nil.
func TimeValue(c *Cell) (*time.Duration, error) {
	if c.empty() {
		return nil, nil
	}
	if c.Kind != Text {
		return nil, &ParseError{Value: c.Value, Layout: TimeLayout, Err: errNotText}
	}
	d, err := parseClock(c.Value)
	if err != nil {
		return nil, &ParseError{Value: c.Value, Layout: TimeLayout, Err: err}
	}
	return &d, nil
}

// parseClock is strict about two-digit fields, which time.Parse is not for hours.
func parseClock(s string) (time.Duration, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, errors.New("expected HH:mm")
	}
	h, err := twoDigits(s[0:2])
	if err != nil {
		return 0, err
	}
	m, err := twoDigits(s[3:5])
	if err != nil {
		return 0, err
	}
	if h > 23 {
		return 0, fmt.Errorf("hour %d out of range", h)
	}
	if m > 59 {
		return 0, fmt.Errorf("minute %d out of range", m)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

func twoDigits(s string) (int, error) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, fmt.Errorf("%q is not a two-digit number", s)
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), nil
}

// NumericValue returns the value of a numeric cell and nil for every other kind.
func NumericValue(c *Cell) *float64 {
	if c == nil || c.Kind != Numeric {
		return nil
	}
	v, err := strconv.ParseFloat(c.Value, 64)
	if err != nil {
		return nil
	}
	return &v
}

// StringValue returns the text of a non-empty text cell.
func StringValue(c *Cell) *string {
	if c == nil || c.Kind != Text || c.Value == "" {
		return nil
	}
	s := c.Value
	return &s
}
