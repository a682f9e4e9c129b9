package utils

import (
    "fmt"
    "sync"

    "github.com/google/uuid"
)

// IDGenerator produces opaque reservation ids.  Every call must return a
// new value.
type IDGenerator interface {
    NewID() string
}

// UUIDGenerator renders random (version 4) UUIDs in the canonical
// 36-character dashed form.
type UUIDGenerator struct{}

// NewUUIDGenerator returns the default reservation id generator.
func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

// NewID returns a fresh random UUID string.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator returns Prefix followed by an increasing counter
// (e.g. "rsv-0001").  It is deterministic and safe for concurrent use.
type SequenceGenerator struct {
    Prefix string

    mu   sync.Mutex
    next int
}

// NewID returns the next id in the sequence.
func (g *SequenceGenerator) NewID() string {
    g.mu.Lock()
    defer g.mu.Unlock()
    g.next++
    return fmt.Sprintf("%s%04d", g.Prefix, g.next)
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

// NewID calls f.
func (f IDGeneratorFunc) NewID() string { return f() }
