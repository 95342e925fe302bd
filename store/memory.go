package store

// Memory serves a caller-supplied byte slice. The slice itself is the
// storage, so mutations through Bytes are in place by definition and there
// is nothing to flush or close.
type Memory struct {
	buf []byte
}

var _ Backend = (*Memory)(nil)

// NewMemory wraps buf as a backend. The backend aliases buf; it does not
// copy.
func NewMemory(buf []byte) *Memory {
	return &Memory{buf: buf}
}

// Bytes returns the wrapped slice.
func (m *Memory) Bytes() []byte { return m.buf }

// InPlaceMutable always reports true.
func (m *Memory) InPlaceMutable() bool { return true }

// WriteBack replaces the wrapped slice. Only same-length replacements can
// be seen by the original slice's other holders; longer contents reseat the
// backend onto the new slice.
func (m *Memory) WriteBack(contents []byte) error {
	if len(contents) == len(m.buf) {
		copy(m.buf, contents)
		return nil
	}
	m.buf = contents

	return nil
}

// Flush is a no-op.
func (m *Memory) Flush() error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }
