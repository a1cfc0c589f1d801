package wirestruct

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// StrKind selects how a Str codec frames its payload (§4.3).
type StrKind int

const (
	// StrRaw reads exactly Length*Unit bytes; Length is required.
	StrRaw StrKind = iota
	// StrC reads one Unit at a time until Terminator or EOF, or
	// Length units are reached. The terminator is not part of the
	// decoded value.
	StrC
	// StrPascal parses LengthCodec for a count, then reads
	// count*Unit bytes, optionally capped by Length.
	StrPascal
)

// Str is the length-prefixed / null-terminated / raw string codec
// described in §4.3. Unit is the byte width of one character unit
// (1 for single-byte encodings, 2 for UTF-16, ...); Enc names an
// encoding resolvable by golang.org/x/text/encoding/htmlindex (e.g.
// "utf-8", "utf-16le", "iso-8859-1").
type Str struct {
	Kind       StrKind
	Length     *int64 // nil means unbounded (raw requires this to be set)
	Enc        string
	Terminator []byte
	Exact      bool
	Unit       int
	LengthCodec Codec
}

// NewStr builds a Str with the common defaults: unit 1, utf-8,
// terminator a single zero byte (or Unit zero bytes, matching
// restruct.py's `terminator or b'\x00' * length_unit`), and LengthCodec
// UInt(8) for pascal strings.
func NewStr(kind StrKind) *Str {
	return &Str{
		Kind:        kind,
		Enc:         "utf-8",
		Unit:        1,
		LengthCodec: NewUInt(8, LittleEndian),
	}
}

func (s *Str) WithLength(n int64) *Str      { s.Length = &n; return s }
func (s *Str) WithEncoding(name string) *Str { s.Enc = name; return s }
func (s *Str) WithExact(exact bool) *Str    { s.Exact = exact; return s }
func (s *Str) WithUnit(unit int) *Str       { s.Unit = unit; return s }
func (s *Str) WithTerminator(t []byte) *Str { s.Terminator = t; return s }
func (s *Str) WithLengthCodec(c Codec) *Str { s.LengthCodec = c; return s }

func (s *Str) terminator() []byte {
	if s.Terminator != nil {
		return s.Terminator
	}
	return make([]byte, s.Unit)
}

func (s *Str) encoding() (encoding.Encoding, error) {
	enc, err := htmlindex.Get(s.Enc)
	if err != nil {
		return nil, newError(KindCodecMismatch, "unknown string encoding %q: %v", s.Enc, err)
	}
	return enc, nil
}

func (s *Str) Parse(stream Stream, ctx *Context) (any, error) {
	term := s.terminator()
	var raw []byte
	var readLength int64

	switch s.Kind {
	case StrPascal:
		n, err := s.LengthCodec.Parse(stream, ctx)
		if err != nil {
			return nil, err
		}
		count, err := asInt64(n)
		if err != nil {
			return nil, err
		}
		if s.Length != nil {
			count = minOf(count, *s.Length)
		}
		raw, err = stream.Read(int(count) * s.Unit)
		if err != nil {
			return nil, err
		}
		readLength = count

	case StrRaw, StrC:
		buf := make([]byte, 0, 16)
		for i := int64(1); ; i++ {
			if s.Length != nil && i > *s.Length {
				break
			}
			c, err := stream.Read(s.Unit)
			readLength = i
			if err == nil && len(c) < s.Unit {
				// a Bounded view returns short reads without an error
				err = newError(KindIOUnderflow, "read: wanted %d bytes, got %d", s.Unit, len(c))
			}
			if err != nil {
				if s.Kind == StrRaw {
					return nil, err
				}
				// short read on a C string: treat as EOF, same as
				// restruct.py's `if not c or ...: break`.
				break
			}
			if s.Kind == StrC && bytesEqual(c, term) {
				break
			}
			buf = append(buf, c...)
		}
		raw = buf
	}

	if s.Exact && s.Length != nil {
		if readLength > *s.Length {
			return nil, newError(KindSizeViolation, "exact length specified but read length (%d) > given length (%d)", readLength, *s.Length)
		}
		left := *s.Length - readLength
		if left > 0 {
			if _, err := stream.Read(int(left) * s.Unit); err != nil {
				return nil, err
			}
		}
	}

	enc, err := s.encoding()
	if err != nil {
		return nil, err
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, newError(KindCodecMismatch, "decoding string: %v", err)
	}
	return string(decoded), nil
}

func (s *Str) Emit(value any, stream Stream, ctx *Context) error {
	str, ok := value.(string)
	if !ok {
		return newError(KindCodecMismatch, "Str.Emit: expected string, got %T", value)
	}
	enc, err := s.encoding()
	if err != nil {
		return err
	}
	raw, err := enc.NewEncoder().Bytes([]byte(str))
	if err != nil {
		return newError(KindCodecMismatch, "encoding string: %v", err)
	}
	term := s.terminator()

	// writeLength must match what Parse's readLength would count for
	// the same bytes: content units plus a terminator for StrC, but
	// no terminator for Raw or Pascal (Pascal's length codec encodes
	// the content length only).
	contentUnits := int64(len(raw)) / int64(s.Unit)
	writeLength := contentUnits
	if s.Kind == StrC {
		writeLength += int64(len(term)) / int64(s.Unit)
	}

	switch s.Kind {
	case StrPascal:
		if err := s.LengthCodec.Emit(contentUnits, stream, ctx); err != nil {
			return err
		}
		if err := stream.Write(raw); err != nil {
			return err
		}
	case StrC:
		if err := stream.Write(raw); err != nil {
			return err
		}
		if err := stream.Write(term); err != nil {
			return err
		}
	case StrRaw:
		if err := stream.Write(raw); err != nil {
			return err
		}
	}

	if s.Exact && s.Length != nil {
		if writeLength > *s.Length {
			return newError(KindSizeViolation, "exact length specified but write length (%d) > given length (%d)", writeLength, *s.Length)
		}
		left := *s.Length - writeLength
		if left > 0 {
			return writePadded(stream, []byte{0}, left*int64(s.Unit))
		}
	}
	return nil
}

func (s *Str) Sizeof(value any, ctx *Context) (int64, bool, error) {
	term := s.terminator()

	var l int64
	if s.Exact && s.Length != nil {
		l = *s.Length * int64(s.Unit)
	} else if value != nil {
		str, ok := value.(string)
		if !ok {
			return 0, false, newError(KindCodecMismatch, "Str.Sizeof: expected string, got %T", value)
		}
		enc, err := s.encoding()
		if err != nil {
			return 0, false, err
		}
		raw, err := enc.NewEncoder().Bytes([]byte(str))
		if err != nil {
			return 0, false, err
		}
		l = int64(len(raw))
		if s.Kind == StrC {
			l += int64(len(term))
		}
	} else {
		return 0, false, nil
	}

	if s.Kind == StrPascal {
		lenSize, known, err := s.LengthCodec.Sizeof(l, ctx)
		if err != nil {
			return 0, false, err
		}
		if !known {
			return 0, false, nil
		}
		l += lenSize
	}

	return l, true, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
