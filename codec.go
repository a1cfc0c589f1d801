package wirestruct

import "fmt"

// Codec is the uniform contract every combinator implements: it can
// parse a value out of a Stream, emit a value back to a Stream, and
// report how many bytes a value occupies without touching IO (§3
// Codec, invariant (iii)).
//
// Codecs are pure data — they hold configuration, not per-stream
// mutable state — with the single exception of Generic, whose
// resolution stack is mutated for the duration of one record
// operation and restored on exit (§3 Generic).
type Codec interface {
	Parse(s Stream, ctx *Context) (any, error)
	Emit(value any, s Stream, ctx *Context) error
	// Sizeof returns the byte size for value (which may be nil during
	// parse/sizeof-without-a-value), and whether that size is known.
	Sizeof(value any, ctx *Context) (size int64, known bool, err error)
}

// Adapter lets a user-defined type resolve to a Codec the way
// restruct.py's __get_restruct_type__ hook does, e.g. when a Generic
// slot's bound value needs a context-dependent codec. ident is
// whatever identifying value the call site passes (an index, a name);
// most adapters ignore it.
type Adapter interface {
	CodecFor(ident any) (Codec, error)
}

// Spec is anything ToCodec knows how to resolve: a Codec, a
// *RecordType, an Adapter, or a []Spec (a positional list, resolved to
// a Tuple codec). It exists purely for documentation — Go has no sum
// types, so ToCodec type-switches on `any`.
type Spec = any

// ToCodec coerces spec into a Codec, implementing the small dispatch
// sum type described in the design notes ("Dynamic dispatch over
// specs"): CodecDirect, RecordClass, AdapterSpec, PositionalList.
func ToCodec(spec Spec) (Codec, error) {
	return toCodecIdent(spec, nil)
}

func toCodecIdent(spec Spec, ident any) (Codec, error) {
	switch v := spec.(type) {
	case Codec:
		return v, nil
	case []Spec:
		return newTuple(v), nil
	case Adapter:
		return v.CodecFor(ident)
	default:
		return nil, fmt.Errorf("could not resolve a codec from spec of type %T", spec)
	}
}

// Tuple is the codec a []Spec resolves to: a fixed, heterogeneous,
// positional sequence, parsed/emitted as a []any in declaration order.
type Tuple struct {
	elems []Codec
}

func newTuple(specs []Spec) *Tuple {
	t := &Tuple{elems: make([]Codec, len(specs))}
	for i, s := range specs {
		c, err := toCodecIdent(s, i)
		if err != nil {
			// Defer the error to Parse/Emit/Sizeof time so construction
			// never fails; a bad spec entry surfaces with a path.
			c = &brokenCodec{err: err}
		}
		t.elems[i] = c
	}
	return t
}

type brokenCodec struct{ err error }

func (b *brokenCodec) Parse(Stream, *Context) (any, error)        { return nil, b.err }
func (b *brokenCodec) Emit(any, Stream, *Context) error           { return b.err }
func (b *brokenCodec) Sizeof(any, *Context) (int64, bool, error) { return 0, false, b.err }

func (t *Tuple) Parse(s Stream, ctx *Context) (any, error) {
	out := make([]any, len(t.elems))
	for i, elem := range t.elems {
		err := ctx.EnterIndex(i, elem, func() error {
			v, err := elem.Parse(s, ctx)
			out[i] = v
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *Tuple) Emit(value any, s Stream, ctx *Context) error {
	vs, ok := value.([]any)
	if !ok {
		return fmt.Errorf("Tuple.Emit: expected []any, got %T", value)
	}
	for i, elem := range t.elems {
		v := any(nil)
		if i < len(vs) {
			v = vs[i]
		}
		if err := ctx.EnterIndex(i, elem, func() error {
			return elem.Emit(v, s, ctx)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tuple) Sizeof(value any, ctx *Context) (int64, bool, error) {
	vs, _ := value.([]any)
	var total int64
	for i, elem := range t.elems {
		var v any
		if i < len(vs) {
			v = vs[i]
		}
		n, known, err := elem.Sizeof(v, ctx)
		if err != nil {
			return 0, false, err
		}
		if !known {
			return 0, false, nil
		}
		total += n
	}
	return total, true, nil
}
