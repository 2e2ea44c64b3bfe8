package shield

import (
	"sync"

	"github.com/goccy/go-json"
)

// Container wraps a single protected value. Reads and writes recompute a
// rolling checksum of the serialized value; a mismatch between the stored
// checksum and the recomputed one signals that the value was mutated by
// some path other than Set (a debugger, a memory editor). The checksum is
// cheap tamper signaling, not cryptographic proof: authority stays with
// the server.
type Container[T any] struct {
	mu       sync.Mutex
	key      string
	original T
	current  T
	checksum uint32
	valid    bool
}

// NewContainer creates a container protecting the given value. The
// initial value is cloned so later caller mutations cannot alias it.
func NewContainer[T any](key string, initial T) *Container[T] {
	c := &Container[T]{
		key:      key,
		original: cloneValue(initial),
		valid:    true,
	}
	c.current = cloneValue(initial)
	c.checksum = checksumOf(c.current)
	return c
}

// Key returns the container's identifying key
func (c *Container[T]) Key() string {
	return c.key
}

// Get returns the current value and whether it passed the integrity
// check. On mismatch the value is still returned so callers can inspect
// it; the container is marked invalid until the next Set or Reset.
func (c *Container[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := checksumOf(c.current) == c.checksum
	if !ok {
		c.valid = false
	}
	return c.current, ok
}

// Set stores a new value. The value is cloned before storing, and value
// and checksum are updated under one lock so no partially-updated state
// is ever observable.
func (c *Container[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = cloneValue(v)
	c.checksum = checksumOf(c.current)
	c.valid = true
}

// Reset restores the original value and recomputes the checksum
func (c *Container[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = cloneValue(c.original)
	c.checksum = checksumOf(c.current)
	c.valid = true
}

// Valid reports whether the container is still trusted. Unlike Verify it
// is latched: a mismatch seen by Get keeps the container invalid until
// the next Set or Reset, even if the raw bytes are put back afterwards.
func (c *Container[T]) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.valid
}

// Verify checks the current value against the stored checksum without
// mutating anything
func (c *Container[T]) Verify() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return checksumOf(c.current) == c.checksum
}

// Checksum returns the stored checksum of the current value
func (c *Container[T]) Checksum() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.checksum
}

// tamper overwrites the current value without touching the checksum,
// simulating an external memory write. Test use only.
func (c *Container[T]) tamper(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = v
}

// checksumOf computes a djb2-style rolling hash over the serialized value
func checksumOf(v any) uint32 {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	var sum uint32
	for _, c := range b {
		sum = (sum << 5) + sum + uint32(c)
	}
	return sum
}

// cloneValue deep-copies a value through serialization. Plain scalars
// round-trip as themselves; maps and slices lose aliasing, which is the
// point.
func cloneValue[T any](v T) T {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}
