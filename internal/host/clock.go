package host

import (
	"time"

	"github.com/ncruces/go-strftime"
)

// FormatClock renders GlobalClock (milliseconds since the movie started) as
// a wall-clock string for diagnostics, using a Flash-familiar C-style
// strftime layout instead of hand-rolling one.
func (c *Context) FormatClock(layout string) string {
	t := time.UnixMilli(int64(c.GlobalClock)).UTC()
	out, err := strftime.Format(layout, t)
	if err != nil {
		return t.Format(time.RFC3339)
	}
	return out
}
