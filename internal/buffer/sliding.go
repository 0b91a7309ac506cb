// Package buffer implements the fixed-capacity sliding byte window used by
// connection inbound/outbound queues.
package buffer

// Sliding is a fixed-capacity byte window with a readable region
// [Start, End) and a writable residual [End, cap(data)). Start and End
// only move forward between compactions; Slide compacts the readable
// region back to offset zero once the residual capacity runs low.
type Sliding struct {
	data  []byte
	start int
	end   int
}

// New allocates a Sliding buffer with the given fixed capacity.
func New(capacity int) *Sliding {
	return &Sliding{data: make([]byte, capacity)}
}

// Cap returns the fixed capacity of the buffer.
func (s *Sliding) Cap() int { return len(s.data) }

// Start returns the current read cursor.
func (s *Sliding) Start() int { return s.start }

// End returns the current write cursor.
func (s *Sliding) End() int { return s.end }

// Data returns the readable region [Start, End).
func (s *Sliding) Data() []byte { return s.data[s.start:s.end] }

// DataSize returns the number of unread bytes.
func (s *Sliding) DataSize() int { return s.end - s.start }

// Residual returns the writable region [End, cap).
func (s *Sliding) Residual() []byte { return s.data[s.end:] }

// ResidualSize returns the number of bytes available to append.
func (s *Sliding) ResidualSize() int { return len(s.data) - s.end }

// Consume advances the read cursor by n bytes, marking them as read.
func (s *Sliding) Consume(n int) { s.start += n }

// Produce advances the write cursor by n bytes, marking them as written.
func (s *Sliding) Produce(n int) { s.end += n }

// Reset empties the buffer, making the full capacity residual again.
func (s *Sliding) Reset() {
	s.start = 0
	s.end = 0
}

// Slide compacts the readable region to offset zero whenever the residual
// capacity is not strictly greater than reserve. It returns whether the
// residual after compaction exceeds reserve — callers use this to decide
// whether there's room to attempt another operation that needs at least
// reserve bytes of space.
func (s *Sliding) Slide(reserve int) bool {
	if s.ResidualSize() <= reserve {
		n := s.DataSize()
		copy(s.data[0:n], s.data[s.start:s.end])
		s.start = 0
		s.end = n
	}
	return s.ResidualSize() > reserve
}
