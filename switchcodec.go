package wirestruct

// Switch delegates parse/emit/sizeof to whichever codec in Options
// matches Selector, or to Fallback when the key is absent; it is an
// error for neither to apply (§4.5). Selector is normally set by a
// surrounding record's field hook just before the switch field runs
// (Testable Properties scenario 5) — SetSelector exists for exactly
// that call site.
type Switch struct {
	Options  map[any]Codec
	Fallback Codec
	Selector any
	hasSel   bool
}

func NewSwitch(options map[any]Codec) *Switch {
	return &Switch{Options: options}
}

func (s *Switch) WithFallback(c Codec) *Switch { s.Fallback = c; return s }

// SetSelector records the key used to pick an option codec. Intended
// to be called from a field hook on the preceding tag field.
func (s *Switch) SetSelector(v any) { s.Selector = v; s.hasSel = true }

func (s *Switch) current() (Codec, error) {
	if s.hasSel {
		if c, ok := s.Options[s.Selector]; ok {
			return c, nil
		}
	}
	if s.Fallback != nil {
		return s.Fallback, nil
	}
	if !s.hasSel {
		return nil, newError(KindInvalidSelector, "switch selector not set")
	}
	return nil, newError(KindInvalidSelector, "switch selector %v is invalid, no matching option or fallback", s.Selector)
}

func (s *Switch) Parse(stream Stream, ctx *Context) (any, error) {
	c, err := s.current()
	if err != nil {
		return nil, err
	}
	return c.Parse(stream, ctx)
}

func (s *Switch) Emit(value any, stream Stream, ctx *Context) error {
	c, err := s.current()
	if err != nil {
		return err
	}
	return c.Emit(value, stream, ctx)
}

func (s *Switch) Sizeof(value any, ctx *Context) (int64, bool, error) {
	c, err := s.current()
	if err != nil {
		return 0, false, err
	}
	return c.Sizeof(value, ctx)
}
