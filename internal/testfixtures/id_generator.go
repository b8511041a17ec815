// Package testfixtures provides deterministic generators, persistence record
// builders and an emulator harness for tests.
package testfixtures

import (
	"strconv"
	"sync"
)

// IDGenerator produces deterministic identifiers for tests. Services add
// their own entity prefix, so a generator without a prefix yields "1", "2",
// and so on.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator. A non-empty prefix is joined to the
// counter with a dash.
func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	n := strconv.FormatUint(g.counter, 10)
	if g.prefix == "" {
		return n
	}
	return g.prefix + "-" + n
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued reports how many identifiers were handed out.
func (g *IDGenerator) Issued() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}
