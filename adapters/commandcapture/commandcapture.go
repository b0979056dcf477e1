package commandcapture

import (
	"slices"
	"sync"

	"github.com/sa6mwa/procrun/port"
)

// capture implements port.CommandCapture for a command's stdout.
type capture struct {
	buf   port.Buffer
	reset func()
	once  sync.Once
}

// New constructs a new port.CommandCapture implementation.
func New() port.CommandCapture {
	return &capture{}
}

// Enable starts recording into buf. reset is invoked exactly once, by the
// first of Finish or Restore, and should put the command's original stdout
// back in place.
func (c *capture) Enable(buf port.Buffer, reset func()) {
	c.buf = buf
	c.reset = reset
}

// Finish restores the command and returns a copy of everything captured.
// It returns nil if Enable was never called.
func (c *capture) Finish() []byte {
	c.Restore()
	if c.buf == nil {
		return nil
	}
	return slices.Clone(c.buf.Bytes())
}

func (c *capture) Restore() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		if c.reset != nil {
			c.reset()
			c.reset = nil
		}
	})
}
