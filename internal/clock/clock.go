// Package clock provides the current calendar day to the learning core.
package clock

import (
	"time"

	"github.com/example/petwords/pkg/models"
)

// Clock returns the current date. An operation reads it once and uses that
// value throughout.
type Clock interface {
	Today() models.Date
	Now() time.Time
}

// System reads the wall clock in a fixed location
type System struct {
	Location *time.Location
}

// NewSystem returns a wall clock for the named IANA location ("" means UTC)
func NewSystem(name string) (*System, error) {
	loc := time.UTC
	if name != "" {
		var err error
		loc, err = time.LoadLocation(name)
		if err != nil {
			return nil, err
		}
	}
	return &System{Location: loc}, nil
}

func (c *System) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

func (c *System) Today() models.Date {
	return models.DateOf(c.Now())
}

// Fixed always reports the same instant. Tests advance it by assigning At.
type Fixed struct {
	At time.Time
}

// FixedDate returns a Fixed clock at noon UTC of the given day
func FixedDate(d models.Date) *Fixed {
	t, err := d.Time()
	if err != nil {
		panic("clock: invalid date " + string(d))
	}
	return &Fixed{At: t.Add(12 * time.Hour)}
}

func (c *Fixed) Now() time.Time {
	return c.At
}

func (c *Fixed) Today() models.Date {
	return models.DateOf(c.At)
}

// Advance moves the clock forward by days
func (c *Fixed) Advance(days int) {
	c.At = c.At.AddDate(0, 0, days)
}
