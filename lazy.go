package wirestruct

// LazyEntry is a deferred parse snapshot: it remembers where in the
// stream a value lives and parses it only when Force is first called,
// caching the result for subsequent calls (§3 Lazy entry). Forcing
// seeks the stream to the saved position and restores the prior
// cursor afterward, the same discipline AtOffset uses for its detour.
type LazyEntry struct {
	codec  Codec
	stream Stream
	pos    int64
	ctx    *Context

	forced any
	has    bool
}

// Force parses the entry's value on first call and returns the cached
// result on every call after.
func (e *LazyEntry) Force() (any, error) {
	if e.has {
		return e.forced, nil
	}
	cur := e.stream.Tell()
	if _, err := e.stream.Seek(e.pos, SeekSet); err != nil {
		return nil, err
	}
	v, err := e.codec.Parse(e.stream, e.ctx)
	if _, serr := e.stream.Seek(cur, SeekSet); err == nil && serr != nil {
		err = serr
	}
	if err != nil {
		return nil, err
	}
	e.forced = v
	e.has = true
	return v, nil
}

// Lazy defers parsing Inner: it requires a known size at parse time
// (Size if explicit, else Inner.Sizeof(nil, ctx)), produces a
// LazyEntry without reading, and advances the cursor past the region.
// Emit forces the entry and delegates to Inner (§4.4).
//
// restruct.py's Lazy.sizeof references an undefined `length` attribute
// where only `size` exists (§9 Open Questions); this port resolves
// that in favor of the field that actually exists.
type Lazy struct {
	Inner Codec
	Size  *int64
}

func NewLazy(inner Codec) *Lazy { return &Lazy{Inner: inner} }

func (l *Lazy) WithSize(n int64) *Lazy { l.Size = &n; return l }

func (l *Lazy) resolveSize(ctx *Context) (int64, bool, error) {
	if l.Size != nil {
		return *l.Size, true, nil
	}
	return l.Inner.Sizeof(nil, ctx)
}

func (l *Lazy) Parse(s Stream, ctx *Context) (any, error) {
	size, known, err := l.resolveSize(ctx)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, newError(KindUnknownSize, "lazy type size must be known at parse time")
	}
	entry := &LazyEntry{codec: l.Inner, stream: s, pos: s.Tell(), ctx: ctx}
	if _, err := s.Seek(size, SeekCur); err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *Lazy) Emit(value any, s Stream, ctx *Context) error {
	entry, ok := value.(*LazyEntry)
	if !ok {
		return newError(KindCodecMismatch, "Lazy.Emit: expected *LazyEntry, got %T", value)
	}
	v, err := entry.Force()
	if err != nil {
		return err
	}
	return l.Inner.Emit(v, s, ctx)
}

func (l *Lazy) Sizeof(value any, ctx *Context) (int64, bool, error) {
	if l.Size != nil {
		return *l.Size, true, nil
	}
	if entry, ok := value.(*LazyEntry); ok {
		v, err := entry.Force()
		if err != nil {
			return 0, false, err
		}
		return l.Inner.Sizeof(v, ctx)
	}
	return l.Inner.Sizeof(nil, ctx)
}
