package wirestruct

import "fmt"

// Parse runs spec against input, which may be a Stream, a []byte, or
// nil (an empty stream). ctx may be nil, in which case a fresh Context
// is built from the resolved codec. Mirrors restruct.py's module-level
// parse(): the first error that escapes an outermost call is wrapped
// with the structural path accumulated at the point of failure; an
// error already wrapped, or one escaping a call nested inside another
// Parse/Emit/Sizeof, passes through unchanged (§4.6, §7).
func Parse(spec Spec, input any, ctx *Context) (any, error) {
	codec, err := ToCodec(spec)
	if err != nil {
		return nil, err
	}
	stream, err := toStream(input)
	if err != nil {
		return nil, err
	}
	atStart := ctx == nil
	if ctx == nil {
		ctx = NewContext(codec, nil, nil)
	} else {
		atStart = len(ctx.path) == 0
	}
	v, err := codec.Parse(stream, ctx)
	if err == nil {
		return v, nil
	}
	if _, ok := err.(*Error); ok {
		return nil, err
	}
	if atStart {
		return nil, wrapError(ctx, err)
	}
	return nil, err
}

// Emit runs spec against value and returns the Stream it was written
// to. ctx may be nil. Analogous to Parse; see its doc comment for the
// wrapping rule.
func Emit(spec Spec, value any, ctx *Context) (Stream, error) {
	codec, err := ToCodec(spec)
	if err != nil {
		return nil, err
	}
	atStart := ctx == nil
	if ctx == nil {
		ctx = NewContext(codec, value, nil)
	} else {
		atStart = len(ctx.path) == 0
	}
	stream := NewEmptyByteStream()
	if err := codec.Emit(value, stream, ctx); err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		if atStart {
			return nil, wrapError(ctx, err)
		}
		return nil, err
	}
	return stream, nil
}

// Sizeof runs spec's Sizeof against value, which may be nil. ctx may
// be nil. Analogous to Parse; see its doc comment for the wrapping
// rule.
func Sizeof(spec Spec, value any, ctx *Context) (int64, bool, error) {
	codec, err := ToCodec(spec)
	if err != nil {
		return 0, false, err
	}
	atStart := ctx == nil
	if ctx == nil {
		ctx = NewContext(codec, value, nil)
	} else {
		atStart = len(ctx.path) == 0
	}
	n, known, err := codec.Sizeof(value, ctx)
	if err == nil {
		return n, known, nil
	}
	if _, ok := err.(*Error); ok {
		return 0, false, err
	}
	if atStart {
		return 0, false, wrapError(ctx, err)
	}
	return 0, false, err
}

// toStream coerces a Parse/Emit input argument into a Stream, the way
// restruct.py's to_io() turns None or bytes into a BytesIO.
func toStream(input any) (Stream, error) {
	switch v := input.(type) {
	case nil:
		return NewEmptyByteStream(), nil
	case Stream:
		return v, nil
	case []byte:
		return NewByteStream(v), nil
	default:
		return nil, fmt.Errorf("wirestruct: cannot use %T as a parse input", input)
	}
}

// atEOF peeks one byte from s without consuming it, reporting whether
// the stream is exhausted. Used by Array and the structured record
// codec to distinguish a genuine EOF (terminate/swallow cleanly) from
// a real parse failure (rethrow), per §4.5 and §7's "Partial EOF"
// kind.
func atEOF(s Stream) bool {
	before := s.Tell()
	b, err := s.Read(1)
	s.Seek(before, SeekSet)
	return err != nil || len(b) == 0
}
