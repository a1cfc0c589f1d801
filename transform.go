package wirestruct

// Processed wraps Inner with a bijective value transform: parse runs
// Inner then ToValue; emit runs ToBytes then Inner. Both functions must
// be mutual inverses for round-tripping to hold (§4.4).
type Processed struct {
	Inner   Codec
	ToValue func(any) (any, error)
	ToBytes func(any) (any, error)
}

func NewProcessed(inner Codec, toValue, toBytes func(any) (any, error)) *Processed {
	return &Processed{Inner: inner, ToValue: toValue, ToBytes: toBytes}
}

func (p *Processed) Parse(s Stream, ctx *Context) (any, error) {
	v, err := p.Inner.Parse(s, ctx)
	if err != nil {
		return nil, err
	}
	return p.ToValue(v)
}

func (p *Processed) Emit(value any, s Stream, ctx *Context) error {
	raw, err := p.ToBytes(value)
	if err != nil {
		return err
	}
	return p.Inner.Emit(raw, s, ctx)
}

func (p *Processed) Sizeof(value any, ctx *Context) (int64, bool, error) {
	if value != nil {
		raw, err := p.ToBytes(value)
		if err != nil {
			return 0, false, err
		}
		value = raw
	}
	return p.Inner.Sizeof(value, ctx)
}

// Mapped is a convenience Processed built from a finite bijection
// (§4.4). When HasDefault is set (see WithDefault), Default is used
// for keys missing from either direction instead of failing — restruct.py's Mapped wraps
// both maps in a collections.defaultdict when a default is given
// (lines 588-594 of the source); this is the supplemented behavior
// named in SPEC_FULL.md §3.2.
type Mapped struct {
	Inner   Codec
	Forward map[any]any // raw (as parsed by Inner) -> mapped value
	Reverse map[any]any // mapped value -> raw
	Default any
	HasDefault bool
}

func (m *Mapped) Parse(s Stream, ctx *Context) (any, error) {
	raw, err := m.Inner.Parse(s, ctx)
	if err != nil {
		return nil, err
	}
	if v, ok := m.Forward[raw]; ok {
		return v, nil
	}
	if m.HasDefault {
		return m.Default, nil
	}
	return nil, newError(KindCodecMismatch, "mapped value %v has no forward mapping", raw)
}

func (m *Mapped) Emit(value any, s Stream, ctx *Context) error {
	raw, ok := m.Reverse[value]
	if !ok {
		if m.HasDefault {
			raw = m.Default
		} else {
			return newError(KindCodecMismatch, "mapped value %v has no reverse mapping", value)
		}
	}
	return m.Inner.Emit(raw, s, ctx)
}

func (m *Mapped) Sizeof(value any, ctx *Context) (int64, bool, error) {
	if value == nil {
		return m.Inner.Sizeof(nil, ctx)
	}
	raw, ok := m.Reverse[value]
	if !ok {
		if m.HasDefault {
			raw = m.Default
		} else {
			return 0, false, newError(KindCodecMismatch, "mapped value %v has no reverse mapping", value)
		}
	}
	return m.Inner.Sizeof(raw, ctx)
}

// WithDefault sets a default for unknown keys in either direction and
// returns m for chaining.
func (m *Mapped) WithDefault(def any) *Mapped {
	m.Default = def
	m.HasDefault = true
	return m
}
