package wirestruct

// PathFrame is one entry of the structural path stack: either a named
// field (struct/record) or an indexed element (array), alongside the
// codec that owns it. Mirrors the (name-or-index, codec) pairs
// described in §3 Context.
type PathFrame struct {
	Name    string
	Index   int
	IsIndex bool
	Codec   Codec
}

// backRefRegion tracks the running size and base offset used by
// reference-allocating combinators (§4.2 Context.add_ref). It is
// lazily initialized on first use with the root codec's total size,
// mirroring restruct.py's Context.add_ref.
type backRefRegion struct {
	initialized bool
	runningSize int64
}

// Context is the per-operation state threaded through every codec
// call: the root codec, the value being emitted (if any), a
// structural path stack, a user scratch namespace, and the optional
// back-reference region allocator (§3 Context).
type Context struct {
	Root  Codec
	Value any

	path []PathFrame

	// User is an open bag for codec-specific scratch state shared
	// across codecs within one operation (e.g. values a record hook
	// stashes for a later field).
	User map[string]any

	Options *Options

	backRef *backRefRegion
}

// NewContext builds a fresh Context for one Parse/Emit/Sizeof
// invocation. value is the root value being emitted, or nil during
// parse/sizeof.
func NewContext(root Codec, value any, opts *Options) *Context {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Context{
		Root:    root,
		Value:   value,
		User:    map[string]any{},
		Options: opts,
	}
}

// Path returns a snapshot of the current structural path stack,
// outermost frame first.
func (c *Context) Path() []PathFrame {
	out := make([]PathFrame, len(c.path))
	copy(out, c.path)
	return out
}

// Enter pushes a named frame for the duration of fn's execution and
// pops it on every exit, success or failure — the unwinding guarantee
// of invariant (i) in §3. A non-nil error from fn is decorated with
// the path stack while this frame (and every frame nested inside it)
// is still pushed, since the pop below would otherwise erase it
// before any caller gets a chance to see it; wrapError is a no-op on
// an error an inner Enter already wrapped, so the path recorded is
// always the deepest frame's. Use EnterIndex for array elements.
func (c *Context) Enter(name string, codec Codec, fn func() error) error {
	c.path = append(c.path, PathFrame{Name: name, Codec: codec})
	defer func() { c.path = c.path[:len(c.path)-1] }()
	if err := fn(); err != nil {
		return wrapError(c, err)
	}
	return nil
}

// EnterIndex is Enter for array elements, pushing an indexed frame
// instead of a named one.
func (c *Context) EnterIndex(index int, codec Codec, fn func() error) error {
	c.path = append(c.path, PathFrame{Index: index, IsIndex: true, Codec: codec})
	defer func() { c.path = c.path[:len(c.path)-1] }()
	if err := fn(); err != nil {
		return wrapError(c, err)
	}
	return nil
}

// AddRef reserves size bytes in the back-reference region, returning
// the starting offset and advancing the running total. The region is
// lazily initialized on first use from rootSize, the sizeof of the
// root codec against c.Value.
func (c *Context) AddRef(size int64, rootSize func() (int64, bool)) (int64, error) {
	if c.backRef == nil {
		c.backRef = &backRefRegion{}
	}
	if !c.backRef.initialized {
		n, ok := rootSize()
		if !ok {
			return 0, newError(KindUnknownSize, "back-reference region requires a known root size")
		}
		c.backRef.runningSize = n
		c.backRef.initialized = true
	}
	offset := c.backRef.runningSize
	c.backRef.runningSize += size
	return offset, nil
}
