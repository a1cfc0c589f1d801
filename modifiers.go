package wirestruct

// AtOffset runs Inner at an absolute detour: save the cursor, seek to
// Point (resolved via PointFn when set, else the static Point field),
// run Inner, restore the cursor (§4.4). Sizeof reports 0: by the
// layout convention this kernel adopts (SPEC_FULL.md §5), AtOffset is
// a pure side channel into a region some enclosing codec already
// accounted for — it never contributes to the surrounding linear
// layout.
type AtOffset struct {
	Inner   Codec
	Point   int64
	PointFn func(*Context) (int64, error)
	Whence  Whence
}

func NewAtOffset(inner Codec, point int64, whence Whence) *AtOffset {
	return &AtOffset{Inner: inner, Point: point, Whence: whence}
}

func (a *AtOffset) resolvePoint(ctx *Context) (int64, error) {
	if a.PointFn != nil {
		return a.PointFn(ctx)
	}
	return a.Point, nil
}

func (a *AtOffset) Parse(s Stream, ctx *Context) (any, error) {
	point, err := a.resolvePoint(ctx)
	if err != nil {
		return nil, err
	}
	cur := s.Tell()
	if _, err := s.Seek(point, a.Whence); err != nil {
		return nil, err
	}
	v, err := a.Inner.Parse(s, ctx)
	if _, serr := s.Seek(cur, SeekSet); err == nil && serr != nil {
		err = serr
	}
	return v, err
}

func (a *AtOffset) Emit(value any, s Stream, ctx *Context) error {
	point, err := a.resolvePoint(ctx)
	if err != nil {
		return err
	}
	cur := s.Tell()
	if _, err := s.Seek(point, a.Whence); err != nil {
		return err
	}
	err = a.Inner.Emit(value, s, ctx)
	if _, serr := s.Seek(cur, SeekSet); err == nil && serr != nil {
		err = serr
	}
	return err
}

func (a *AtOffset) Sizeof(any, *Context) (int64, bool, error) {
	return 0, true, nil
}

// RefMode selects how Ref.Emit lays out its offset field and body,
// resolving the Open Question spec.md §9 leaves unanswered (Ref.Emit
// is unimplemented in restruct.py): RefCallerAllocated writes Offset
// as-is, assuming some other field or hook already reserved the body
// region at that position; RefRefAllocated asks Context.AddRef for a
// fresh region sized from the value itself and writes the resulting
// offset.
type RefMode int

const (
	RefCallerAllocated RefMode = iota
	RefRefAllocated
)

// Ref parses an offset with OffsetCodec, then follows it to read
// ValueCodec via an AtOffset detour (§4.4). Sizeof conservatively
// returns the body's size and excludes the offset field itself — the
// record or array that owns the Ref is expected to size that
// separately (SPEC_FULL.md §5), consistent with restruct.py's
// Ref.sizeof.
type Ref struct {
	ValueCodec  Codec
	OffsetCodec Codec
	Whence      Whence
	Mode        RefMode
	// Offset is the absolute position written/read in
	// RefCallerAllocated mode. The caller (or a sibling field's hook)
	// is responsible for setting it before Emit runs.
	Offset int64
}

func NewRef(valueCodec, offsetCodec Codec, whence Whence) *Ref {
	return &Ref{ValueCodec: valueCodec, OffsetCodec: offsetCodec, Whence: whence}
}

func (r *Ref) Parse(s Stream, ctx *Context) (any, error) {
	offset, err := r.OffsetCodec.Parse(s, ctx)
	if err != nil {
		return nil, err
	}
	point, err := asInt64(offset)
	if err != nil {
		return nil, err
	}
	at := &AtOffset{Inner: r.ValueCodec, Point: point, Whence: r.Whence}
	return at.Parse(s, ctx)
}

func (r *Ref) Emit(value any, s Stream, ctx *Context) error {
	switch r.Mode {
	case RefRefAllocated:
		size, known, err := r.ValueCodec.Sizeof(value, ctx)
		if err != nil {
			return err
		}
		if !known {
			return newError(KindUnknownSize, "ref-allocated Ref requires a known value size")
		}
		offset, err := ctx.AddRef(size, func() (int64, bool) {
			n, known, err := ctx.Root.Sizeof(ctx.Value, ctx)
			if err != nil || !known {
				return 0, false
			}
			return n, true
		})
		if err != nil {
			return err
		}
		if err := r.OffsetCodec.Emit(offset, s, ctx); err != nil {
			return err
		}
		return r.emitAt(offset, value, s, ctx)
	default: // RefCallerAllocated
		if err := r.OffsetCodec.Emit(r.Offset, s, ctx); err != nil {
			return err
		}
		return r.emitAt(r.Offset, value, s, ctx)
	}
}

func (r *Ref) emitAt(offset int64, value any, s Stream, ctx *Context) error {
	at := &AtOffset{Inner: r.ValueCodec, Point: offset, Whence: r.Whence}
	return at.Emit(value, s, ctx)
}

func (r *Ref) Sizeof(value any, ctx *Context) (int64, bool, error) {
	return r.ValueCodec.Sizeof(value, ctx)
}

// WithSize constructs a Bounded view of width Limit (resolved via
// LimitFn when set, else the static field) and runs Inner inside it.
// Exact controls whether the cursor is forced to start+limit after
// Inner completes, absorbing any slack (§4.4).
type WithSize struct {
	Inner   Codec
	Limit   int64
	LimitFn func(*Context) (int64, error)
	Exact   bool
}

func NewWithSize(inner Codec, limit int64, exact bool) *WithSize {
	return &WithSize{Inner: inner, Limit: limit, Exact: exact}
}

func (w *WithSize) resolveLimit(ctx *Context) (int64, error) {
	if w.LimitFn != nil {
		limit, err := w.LimitFn(ctx)
		if err != nil {
			return 0, err
		}
		if limit < 0 {
			limit = 0
		}
		return limit, nil
	}
	return w.Limit, nil
}

func (w *WithSize) Parse(s Stream, ctx *Context) (any, error) {
	start := s.Tell()
	limit, err := w.resolveLimit(ctx)
	if err != nil {
		return nil, err
	}
	bounded := NewBounded(s, limit)
	v, err := w.Inner.Parse(bounded, ctx)
	if err != nil {
		return nil, err
	}
	if w.Exact {
		if _, err := s.Seek(start+limit, SeekSet); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (w *WithSize) Emit(value any, s Stream, ctx *Context) error {
	start := s.Tell()
	limit, err := w.resolveLimit(ctx)
	if err != nil {
		return err
	}
	bounded := NewBounded(s, limit)
	if err := w.Inner.Emit(value, bounded, ctx); err != nil {
		return err
	}
	if w.Exact {
		if _, err := s.Seek(start+limit, SeekSet); err != nil {
			return err
		}
	}
	return nil
}

func (w *WithSize) Sizeof(value any, ctx *Context) (int64, bool, error) {
	limit, err := w.resolveLimit(ctx)
	if err != nil {
		return 0, false, err
	}
	if w.Exact {
		return limit, true, nil
	}
	size, known, err := w.Inner.Sizeof(value, ctx)
	if err != nil {
		return 0, false, err
	}
	if !known {
		return limit, true, nil
	}
	return minOf(size, limit), true, nil
}

// AlignTo runs Inner, then pads/seeks forward to the next multiple of
// N, writing Fill on emit (post-alignment, §4.4). Sizeof is unknown:
// restruct.py returns None/TODO for both AlignTo and AlignedTo because
// the final position depends on where the surrounding layout placed
// the cursor, which Sizeof alone can't know (SPEC_FULL.md §3, point 4) — kept as the honest answer rather than guessed.
type AlignTo struct {
	Inner Codec
	N     int64
	Fill  []byte
}

func NewAlignTo(inner Codec, n int64) *AlignTo {
	return &AlignTo{Inner: inner, N: n, Fill: []byte{0}}
}

func (a *AlignTo) adjustment(pos int64) int64 {
	if a.N == 0 {
		return 0
	}
	return pos % a.N
}

func (a *AlignTo) Parse(s Stream, ctx *Context) (any, error) {
	v, err := a.Inner.Parse(s, ctx)
	if err != nil {
		return nil, err
	}
	if adj := a.adjustment(s.Tell()); adj != 0 {
		if _, err := s.Seek(a.N-adj, SeekCur); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (a *AlignTo) Emit(value any, s Stream, ctx *Context) error {
	if err := a.Inner.Emit(value, s, ctx); err != nil {
		return err
	}
	if adj := a.adjustment(s.Tell()); adj != 0 {
		return writePadded(s, a.Fill, a.N-adj)
	}
	return nil
}

func (a *AlignTo) Sizeof(any, *Context) (int64, bool, error) {
	return 0, false, nil
}

// AlignedTo is the pre-alignment counterpart of AlignTo: it pads/seeks
// forward to the next multiple of N, then runs Inner (§4.4).
type AlignedTo struct {
	Inner Codec
	N     int64
	Fill  []byte
}

func NewAlignedTo(inner Codec, n int64) *AlignedTo {
	return &AlignedTo{Inner: inner, N: n, Fill: []byte{0}}
}

func (a *AlignedTo) adjustment(pos int64) int64 {
	if a.N == 0 {
		return 0
	}
	return pos % a.N
}

func (a *AlignedTo) Parse(s Stream, ctx *Context) (any, error) {
	if adj := a.adjustment(s.Tell()); adj != 0 {
		if _, err := s.Seek(a.N-adj, SeekCur); err != nil {
			return nil, err
		}
	}
	return a.Inner.Parse(s, ctx)
}

func (a *AlignedTo) Emit(value any, s Stream, ctx *Context) error {
	if adj := a.adjustment(s.Tell()); adj != 0 {
		if err := writePadded(s, a.Fill, a.N-adj); err != nil {
			return err
		}
	}
	return a.Inner.Emit(value, s, ctx)
}

func (a *AlignedTo) Sizeof(any, *Context) (int64, bool, error) {
	return 0, false, nil
}
