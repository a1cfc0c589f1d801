package wirestruct

import "bytes"

// Nothing consumes and writes zero bytes and always produces nil.
// Useful as a field codec that exists only to run a hook, or as the
// fallback arm of a Switch (§4.3).
type Nothing struct{}

func (Nothing) Parse(Stream, *Context) (any, error) { return nil, nil }
func (Nothing) Emit(any, Stream, *Context) error     { return nil }
func (Nothing) Sizeof(any, *Context) (int64, bool, error) {
	return 0, true, nil
}

// Implied always parses to a fixed value without touching IO, and
// discards whatever value it's asked to emit. It's the codec for
// derived fields whose value a hook computes rather than one read
// from the stream.
type Implied struct {
	Value any
}

func NewImplied(value any) *Implied { return &Implied{Value: value} }

func (i *Implied) Parse(Stream, *Context) (any, error)      { return i.Value, nil }
func (i *Implied) Emit(any, Stream, *Context) error          { return nil }
func (i *Implied) Sizeof(any, *Context) (int64, bool, error) { return 0, true, nil }

// Fixed reads len(Pattern) bytes and fails unless they match Pattern
// exactly; emit always writes Pattern regardless of the value handed
// to it (§4.3).
type Fixed struct {
	Pattern []byte
}

func NewFixed(pattern []byte) *Fixed { return &Fixed{Pattern: pattern} }

func (f *Fixed) Parse(s Stream, ctx *Context) (any, error) {
	data, err := s.Read(len(f.Pattern))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(data, f.Pattern) {
		return nil, newError(KindConstantMismatch, "fixed mismatch: wanted % x, found % x", f.Pattern, data)
	}
	return data, nil
}

func (f *Fixed) Emit(value any, s Stream, ctx *Context) error {
	return s.Write(f.Pattern)
}

func (f *Fixed) Sizeof(any, *Context) (int64, bool, error) {
	return int64(len(f.Pattern)), true, nil
}

// Pad seeks over N bytes on parse, discarding them, and writes Fill
// repeated (and truncated) to exactly N bytes on emit (§4.3).
type Pad struct {
	N    int64
	Fill []byte
}

// NewPad defaults Fill to a single zero byte, matching restruct.py's
// Pad(size) default of b'\x00'.
func NewPad(n int64) *Pad { return &Pad{N: n, Fill: []byte{0}} }

func (p *Pad) WithFill(fill []byte) *Pad { p.Fill = fill; return p }

func (p *Pad) Parse(s Stream, ctx *Context) (any, error) {
	if _, err := s.Read(int(p.N)); err != nil {
		return nil, err
	}
	return nil, nil
}

func (p *Pad) Emit(value any, s Stream, ctx *Context) error {
	return writePadded(s, p.Fill, p.N)
}

func (p *Pad) Sizeof(any, *Context) (int64, bool, error) {
	return p.N, true, nil
}

// writePadded is shared between Pad.Emit and Str's exact-length
// padding: it writes n bytes built by repeating fill (truncated on the
// last repetition) to the stream s, or just computes it if s is nil
// (used nowhere yet, kept for symmetry with Pad's Go port of
// restruct.py's `value *= n // len(value); value += value[:left]`).
func writePadded(s Stream, fill []byte, n int64) error {
	if len(fill) == 0 || n == 0 {
		return nil
	}
	buf := make([]byte, 0, n)
	for int64(len(buf)) < n {
		remain := n - int64(len(buf))
		if remain >= int64(len(fill)) {
			buf = append(buf, fill...)
		} else {
			buf = append(buf, fill[:remain]...)
		}
	}
	if s == nil {
		return nil
	}
	return s.Write(buf)
}

// Data reads exactly N bytes, or to EOF when N is negative (§4.3). On
// emit it writes the value's bytes as-is.
type Data struct {
	// N is the byte count, or -1 to read to EOF.
	N int64
}

// NewData with n < 0 reads to EOF.
func NewData(n int64) *Data { return &Data{N: n} }

func (d *Data) Parse(s Stream, ctx *Context) (any, error) {
	n := -1
	if d.N >= 0 {
		n = int(d.N)
	}
	data, err := s.Read(n)
	if err != nil {
		return nil, err
	}
	if d.N >= 0 && int64(len(data)) != d.N {
		return nil, newError(KindIOUnderflow, "size mismatch: wanted %d bytes, found %d bytes", d.N, len(data))
	}
	return data, nil
}

func (d *Data) Emit(value any, s Stream, ctx *Context) error {
	b, ok := value.([]byte)
	if !ok {
		return newError(KindCodecMismatch, "Data.Emit: expected []byte, got %T", value)
	}
	return s.Write(b)
}

func (d *Data) Sizeof(value any, ctx *Context) (int64, bool, error) {
	if b, ok := value.([]byte); ok {
		return int64(len(b)), true, nil
	}
	if d.N >= 0 {
		return d.N, true, nil
	}
	return 0, false, nil
}
