package wirestruct

// Array is the count-, byte-size-, and sentinel-terminated sequence
// codec of §4.5. Elem is either a single Codec shared by every
// element or a []Codec giving a distinct codec per index
// (restruct.py's `isinstance(self.type, list)` branch). Count and
// ByteSize are independent stop conditions — both may be set, in
// which case whichever is reached first wins, matching the source's
// `while count is None or i < count` loop guarded by a `size` check
// inside.
type Array struct {
	Elem     any // Codec or []Codec
	Count    *int64
	ByteSize *int64
	// Sentinel, when HasSentinel is true, is an element value that
	// terminates the array without being appended to the result
	// (§4.5, Testable Properties scenario 4).
	Sentinel    any
	HasSentinel bool
}

func NewArray(elem any) *Array { return &Array{Elem: elem} }

func (a *Array) WithCount(n int64) *Array    { a.Count = &n; return a }
func (a *Array) WithByteSize(n int64) *Array { a.ByteSize = &n; return a }
func (a *Array) WithSentinel(v any) *Array   { a.Sentinel = v; a.HasSentinel = true; return a }

func (a *Array) elemCodec(i int) (Codec, error) {
	switch e := a.Elem.(type) {
	case []Codec:
		if i >= len(e) {
			return nil, newError(KindUnknown, "array: no codec for index %d (list has %d entries)", i, len(e))
		}
		return e[i], nil
	case Codec:
		return e, nil
	default:
		return ToCodec(e)
	}
}

func (a *Array) Parse(s Stream, ctx *Context) (any, error) {
	out := make([]any, 0)
	start := s.Tell()
	for i := 0; ; i++ {
		if a.Count != nil && int64(len(out)) >= *a.Count {
			break
		}
		if a.ByteSize != nil && s.Tell()-start >= *a.ByteSize {
			break
		}
		ec, err := a.elemCodec(i)
		if err != nil {
			return nil, err
		}

		var elem any
		var elemErr error
		enterErr := ctx.EnterIndex(i, ec, func() error {
			elem, elemErr = ec.Parse(s, ctx)
			return elemErr
		})
		if elemErr != nil {
			if atEOF(s) {
				break
			}
			return nil, enterErr
		}

		if a.HasSentinel && valuesEqual(elem, a.Sentinel) {
			break
		}
		out = append(out, elem)
	}
	return out, nil
}

func (a *Array) Emit(value any, s Stream, ctx *Context) error {
	vs, ok := value.([]any)
	if !ok {
		return newError(KindCodecMismatch, "Array.Emit: expected []any, got %T", value)
	}
	if a.HasSentinel {
		vs = append(append([]any{}, vs...), a.Sentinel)
	}
	start := s.Tell()
	for i, elem := range vs {
		if a.ByteSize != nil && s.Tell()-start >= *a.ByteSize {
			return newError(KindSizeViolation, "oversized array, maximum size %d", *a.ByteSize)
		}
		ec, err := a.elemCodec(i)
		if err != nil {
			return err
		}
		if err := ctx.EnterIndex(i, ec, func() error {
			return ec.Emit(elem, s, ctx)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (a *Array) Sizeof(value any, ctx *Context) (int64, bool, error) {
	if a.ByteSize != nil {
		return *a.ByteSize, true, nil
	}
	if a.Count == nil {
		return 0, false, nil
	}
	vs, _ := value.([]any)
	var total int64
	count := int(*a.Count)
	for i := 0; i < count; i++ {
		ec, err := a.elemCodec(i)
		if err != nil {
			return 0, false, err
		}
		var v any
		if i < len(vs) {
			v = vs[i]
		}
		n, known, err := ec.Sizeof(v, ctx)
		if err != nil {
			return 0, false, err
		}
		if !known {
			return 0, false, nil
		}
		total += n
	}
	if a.HasSentinel {
		ec, err := a.elemCodec(count)
		if err != nil {
			return 0, false, err
		}
		n, known, err := ec.Sizeof(a.Sentinel, ctx)
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

// valuesEqual compares two parsed values for the purposes of sentinel
// matching and Record equality: byte slices compare by content, plain
// values by ==.
func valuesEqual(a, b any) (eq bool) {
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		if !ok {
			return false
		}
		return bytesEqual(ab, bb)
	}
	if as, ok := a.([]any); ok {
		bs, ok := b.([]any)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valuesEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
