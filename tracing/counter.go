package tracing

import (
	"sync"
)

// KindCounter counts the records of each kind.
type KindCounter struct {
	lock   sync.Mutex
	kinds  []string
	counts map[string]uint64
}

// NewKindCounter creates a new KindCounter.
func NewKindCounter() *KindCounter {
	return &KindCounter{counts: make(map[string]uint64)}
}

// Init does nothing.
func (c *KindCounter) Init() {}

// Write counts the record.
func (c *KindCounter) Write(r Record) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if _, ok := c.counts[r.Kind]; !ok {
		c.kinds = append(c.kinds, r.Kind)
	}

	c.counts[r.Kind]++
}

// Flush does nothing.
func (c *KindCounter) Flush() {}

// Kinds returns the kinds seen, in the order they were first seen.
func (c *KindCounter) Kinds() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]string(nil), c.kinds...)
}

// Count returns the number of records of a kind.
func (c *KindCounter) Count(kind string) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.counts[kind]
}

// MultiWriter passes every record to all its writers.
type MultiWriter []Writer

// Init initializes all the writers.
func (m MultiWriter) Init() {
	for _, w := range m {
		w.Init()
	}
}

// Write passes the record to all the writers.
func (m MultiWriter) Write(r Record) {
	for _, w := range m {
		w.Write(r)
	}
}

// Flush flushes all the writers.
func (m MultiWriter) Flush() {
	for _, w := range m {
		w.Flush()
	}
}
