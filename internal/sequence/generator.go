// Package sequence allocates human-readable invoice numbers such as INV-10001.
package sequence

import (
	"fmt"
)

// Defaults match the numbering used by existing invoices.
const (
	DefaultPrefix = "INV-"
	DefaultStart  = 10001
	DefaultWidth  = 5
)

// Generator formats prefix + zero-padded counter. It is not safe for concurrent
// use; share it only through an Allocator.
type Generator struct {
	prefix  string
	current int64
	width   int
}

// NewGenerator creates a generator whose first Next returns prefix + pad(start).
func NewGenerator(prefix string, start int64, width int) *Generator {
	if width < 0 {
		width = 0
	}
	return &Generator{prefix: prefix, current: start, width: width}
}

// Next returns the current number and advances the counter.
func (g *Generator) Next() string {
	n := g.format(g.current)
	g.current++
	return n
}

// Peek returns the number Next would return, without advancing.
func (g *Generator) Peek() string {
	return g.format(g.current)
}

// Reset sets the counter directly. Issued numbers are not checked; avoiding
// collisions is the caller's job.
func (g *Generator) Reset(value int64) {
	g.current = value
}

// Current returns the raw counter value.
func (g *Generator) Current() int64 {
	return g.current
}

// Prefix returns the configured prefix.
func (g *Generator) Prefix() string {
	return g.prefix
}

func (g *Generator) format(n int64) string {
	return fmt.Sprintf("%s%0*d", g.prefix, g.width, n)
}
