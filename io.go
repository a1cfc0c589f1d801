package wirestruct

import "fmt"

// Whence selects the reference point for Stream.Seek, mirroring the
// three io.Seeker constants without importing io for just the names.
type Whence int

const (
	SeekSet Whence = iota
	SeekCur
	SeekEnd
)

// Stream is the seekable byte stream every codec reads from and writes
// to. All codecs read/write contiguously from the cursor unless a
// positional modifier explicitly repositions it (§4.1).
type Stream interface {
	Read(n int) ([]byte, error)
	Write(b []byte) error
	Seek(offset int64, whence Whence) (int64, error)
	Tell() int64
}

// ByteStream is an in-memory, growable Stream backed by a byte slice.
// It is the concrete Stream produced from a []byte or created empty
// for Emit.
type ByteStream struct {
	buf    []byte
	cursor int64
}

// NewByteStream wraps b for parsing. The returned stream does not copy
// b; writes beyond the original length grow a fresh backing array the
// way append would.
func NewByteStream(b []byte) *ByteStream {
	return &ByteStream{buf: b}
}

// NewEmptyByteStream returns a Stream suitable as an Emit target.
func NewEmptyByteStream() *ByteStream {
	return &ByteStream{}
}

func (s *ByteStream) Read(n int) ([]byte, error) {
	if n < 0 {
		n = len(s.buf) - int(s.cursor)
	}
	avail := int64(len(s.buf)) - s.cursor
	if avail < 0 {
		avail = 0
	}
	got := n
	if int64(got) > avail {
		got = int(avail)
	}
	if got < 0 {
		got = 0
	}
	out := make([]byte, got)
	copy(out, s.buf[s.cursor:s.cursor+int64(got)])
	s.cursor += int64(got)
	if got != n {
		return out, newError(KindIOUnderflow, "read: wanted %d bytes, got %d", n, got)
	}
	return out, nil
}

func (s *ByteStream) Write(b []byte) error {
	end := s.cursor + int64(len(b))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.cursor:end], b)
	s.cursor = end
	return nil
}

func (s *ByteStream) Seek(offset int64, whence Whence) (int64, error) {
	var pos int64
	switch whence {
	case SeekSet:
		pos = offset
	case SeekCur:
		pos = s.cursor + offset
	case SeekEnd:
		pos = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("seek to negative position %d", pos)
	}
	s.cursor = pos
	return pos, nil
}

func (s *ByteStream) Tell() int64 { return s.cursor }

// Bytes returns the bytes written so far.
func (s *ByteStream) Bytes() []byte { return s.buf }

// Bounded is a view over a parent Stream that clamps reads/writes to a
// region of `limit` bytes starting at the view's construction
// position (§4.1). It does not own the parent's cursor but repositions
// it on every operation; aliasing the parent stream while a Bounded
// view is active is undefined, per §5.
type Bounded struct {
	parent Stream
	start  int64
	limit  int64
	cursor int64
}

// NewBounded constructs a bounded view starting at parent.Tell() with
// width limit.
func NewBounded(parent Stream, limit int64) *Bounded {
	return &Bounded{parent: parent, start: parent.Tell(), limit: limit}
}

func (b *Bounded) Read(n int) ([]byte, error) {
	remaining := b.limit - b.cursor
	if int64(n) > remaining || n < 0 {
		n = int(remaining)
	}
	if _, err := b.parent.Seek(b.start+b.cursor, SeekSet); err != nil {
		return nil, err
	}
	out, err := b.parent.Read(n)
	b.cursor += int64(len(out))
	return out, err
}

func (b *Bounded) Write(data []byte) error {
	remaining := b.limit - b.cursor
	if int64(len(data)) > remaining {
		return newError(KindSizeViolation, "write past limit by %d bytes", int64(len(data))-remaining)
	}
	if _, err := b.parent.Seek(b.start+b.cursor, SeekSet); err != nil {
		return err
	}
	if err := b.parent.Write(data); err != nil {
		return err
	}
	b.cursor += int64(len(data))
	return nil
}

// Seek repositions the view's cursor. SeekSet is absolute to the
// parent; SeekCur is relative to the view's own cursor; SeekEnd is
// relative to start+limit.
func (b *Bounded) Seek(offset int64, whence Whence) (int64, error) {
	var pos int64
	switch whence {
	case SeekSet:
		pos = offset - b.start
	case SeekCur:
		pos = b.cursor + offset
	case SeekEnd:
		pos = b.limit + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("seek before start of bounded view")
	}
	b.cursor = pos
	if _, err := b.parent.Seek(b.start+b.cursor, SeekSet); err != nil {
		return 0, err
	}
	return b.start + b.cursor, nil
}

func (b *Bounded) Tell() int64 { return b.start + b.cursor }
