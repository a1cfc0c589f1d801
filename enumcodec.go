package wirestruct

// Enum layers a closed (or open) set of named members over an inner
// integer codec (§4.3). Members maps the raw value the inner codec
// produces to the member value callers see; reverse is its inverse,
// built once by NewEnum so Emit/Sizeof don't re-scan Members on every
// call.
//
// When Exhaustive is false and a parsed raw value has no entry in
// Members, restruct.py's Enum.parse returns the raw value itself
// rather than failing (SPEC_FULL.md §3, point 5) — kept here.
type Enum struct {
	Inner      Codec
	Members    map[any]any
	reverse    map[any]any
	Exhaustive bool
}

// NewEnum builds an Enum codec. members maps the inner codec's raw
// value to the member value exposed to callers.
func NewEnum(inner Codec, members map[any]any, exhaustive bool) *Enum {
	reverse := make(map[any]any, len(members))
	for raw, member := range members {
		reverse[member] = raw
	}
	return &Enum{Inner: inner, Members: members, reverse: reverse, Exhaustive: exhaustive}
}

func (e *Enum) Parse(s Stream, ctx *Context) (any, error) {
	raw, err := e.Inner.Parse(s, ctx)
	if err != nil {
		return nil, err
	}
	if member, ok := e.Members[raw]; ok {
		return member, nil
	}
	if e.Exhaustive {
		return nil, newError(KindInvalidSelector, "enum: no member for value %v", raw)
	}
	return raw, nil
}

func (e *Enum) Emit(value any, s Stream, ctx *Context) error {
	raw, ok := e.reverse[value]
	if !ok {
		// Not a known member: assume the caller passed the raw
		// underlying value directly (the non-exhaustive passthrough
		// case at parse time has a symmetric counterpart at emit
		// time).
		raw = value
	}
	return e.Inner.Emit(raw, s, ctx)
}

func (e *Enum) Sizeof(value any, ctx *Context) (int64, bool, error) {
	if value == nil {
		return e.Inner.Sizeof(nil, ctx)
	}
	raw, ok := e.reverse[value]
	if !ok {
		raw = value
	}
	return e.Inner.Sizeof(raw, ctx)
}
