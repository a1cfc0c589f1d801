package wirestruct

import "fmt"

// Hook is a post-field callback fired after a field's value has been
// stored (parse) or read (emit): it may mutate a later field's codec
// (e.g. set a Switch selector) or stash values in ctx.User, but must
// not mutate already-processed fields (§4.5, §9 "Hooks").
type Hook func(rec *Record, fields []FieldDef, ctx *Context) error

// FieldDef is one entry of a RecordType's ordered field list: a name,
// its codec (nil fields are skipped entirely, matching restruct.py's
// `if type is None: continue`), and an optional hook.
type FieldDef struct {
	Name  string
	Codec Codec
	Hook  Hook
}

// RecordType is the structured-record/union combinator of §4.5: an
// ordered field list, a set of Generic slots with their current
// bindings, and union/partial flags. It implements Codec directly, so
// a *RecordType is itself a valid Spec wherever a field or array
// element names one.
type RecordType struct {
	fields   []FieldDef
	generics []*Generic
	bound    []any
	union    bool
	partial  bool
}

// RecordBuilder assembles a RecordType field by field, playing the
// role restruct.py's MetaStruct/annotation-collecting metaclass plays
// in the source — an explicit builder instead of reflection sugar
// (§9 "Record declaration sugar").
type RecordBuilder struct {
	rt *RecordType
}

// NewRecordType starts a new, empty record builder.
func NewRecordType() *RecordBuilder {
	return &RecordBuilder{rt: &RecordType{}}
}

// Field appends a plain field with no hook.
func (b *RecordBuilder) Field(name string, codec Codec) *RecordBuilder {
	return b.FieldHook(name, codec, nil)
}

// FieldHook appends a field with a post-field hook.
func (b *RecordBuilder) FieldHook(name string, codec Codec, hook Hook) *RecordBuilder {
	b.rt.fields = append(b.rt.fields, FieldDef{Name: name, Codec: codec, Hook: hook})
	return b
}

// Generic allocates a new generic slot on this record and returns it
// so the caller can capture the same pointer inside a field's codec
// definition (§3 Generic, "identity-shared").
func (b *RecordBuilder) Generic() *Generic {
	g := NewGeneric()
	b.rt.generics = append(b.rt.generics, g)
	return g
}

// Union marks the record as a union: every field starts at the same
// base offset and the overall size is the max across fields (§4.5).
func (b *RecordBuilder) Union() *RecordBuilder { b.rt.union = true; return b }

// Partial marks the record as tolerating EOF as an early stop after
// any completed field (§4.5 "Partial-record exception").
func (b *RecordBuilder) Partial() *RecordBuilder { b.rt.partial = true; return b }

// ExtendFrom prepends base's fields, generics, and bindings ahead of
// whatever this builder has accumulated so far, and forces union
// semantics if base is a union (§4.5 "Inheritance"). Call it before
// adding this record's own fields so declaration order comes out
// base-then-local, matching the spec's ordered concatenation.
func (b *RecordBuilder) ExtendFrom(base *RecordType) *RecordBuilder {
	b.rt.fields = append(append([]FieldDef{}, base.fields...), b.rt.fields...)
	b.rt.generics = append(append([]*Generic{}, base.generics...), b.rt.generics...)
	b.rt.bound = append(append([]any{}, base.bound...), b.rt.bound...)
	if base.union {
		b.rt.union = true
	}
	return b
}

// Build finalizes the record type.
func (b *RecordBuilder) Build() *RecordType { return b.rt }

// Instantiate produces a new RecordType sharing the same field codecs
// (including the same *Generic pointers) but with bindings extended,
// mirroring restruct.py's `RecordType[binding, ...]` (§4.5 "Generic
// instantiation"). It panics if more bindings are supplied than the
// record has generic slots, matching the source's TypeError.
func (rt *RecordType) Instantiate(bindings ...any) *RecordType {
	bound := append(append([]any{}, rt.bound...), bindings...)
	if len(bound) > len(rt.generics) {
		panic(fmt.Sprintf("wirestruct: too many generic arguments for record: %d", len(bound)))
	}
	nt := *rt
	nt.bound = bound
	return &nt
}

// Fields returns the record type's field names in declaration order.
func (rt *RecordType) Fields() []string {
	names := make([]string, len(rt.fields))
	for i, f := range rt.fields {
		names[i] = f.Name
	}
	return names
}

// IsUnion reports whether the record type was built with Union().
func (rt *RecordType) IsUnion() bool { return rt.union }

func (rt *RecordType) bindGenerics() {
	for i, g := range rt.generics {
		if i < len(rt.bound) {
			g.Resolve(rt.bound[i])
		}
	}
}

func (rt *RecordType) popGenerics() {
	for _, g := range rt.generics {
		g.Pop()
	}
}

func (rt *RecordType) Parse(s Stream, ctx *Context) (any, error) {
	rt.bindGenerics()
	defer rt.popGenerics()

	pos := s.Tell()
	var n int64
	rec := newRecord(rt)

	for _, fd := range rt.fields {
		if fd.Codec == nil {
			continue
		}
		if rt.union {
			if _, err := s.Seek(pos, SeekSet); err != nil {
				return nil, err
			}
		}

		var decodeFailed bool
		fieldErr := ctx.Enter(fd.Name, fd.Codec, func() error {
			v, err := fd.Codec.Parse(s, ctx)
			if err != nil {
				decodeFailed = true
				return err
			}
			nbytes := s.Tell() - pos
			if rt.union {
				if nbytes > n {
					n = nbytes
				}
			} else {
				n = nbytes
			}
			rec.set(fd.Name, v)
			if fd.Hook != nil {
				return fd.Hook(rec, rt.fields, ctx)
			}
			return nil
		})

		if fieldErr != nil {
			// Partial records only swallow EOF from the field's own
			// decode step (§4.5 "Partial-record exception"); a hook that
			// fails after a successful decode is a real bug, not an
			// early stop, even if the stream happens to sit at EOF.
			if rt.partial && decodeFailed && atEOF(s) {
				break
			}
			return nil, fieldErr
		}
	}

	if _, err := s.Seek(pos+n, SeekSet); err != nil {
		return nil, err
	}
	return rec, nil
}

func (rt *RecordType) Emit(value any, s Stream, ctx *Context) error {
	rec, ok := value.(*Record)
	if !ok {
		return newError(KindCodecMismatch, "Record.Emit: expected *Record, got %T", value)
	}

	rt.bindGenerics()
	defer rt.popGenerics()

	pos := s.Tell()
	var n int64

	for _, fd := range rt.fields {
		if fd.Codec == nil {
			continue
		}
		if rt.union {
			if _, err := s.Seek(pos, SeekSet); err != nil {
				return err
			}
		}

		fv := rec.Get(fd.Name)
		if err := ctx.Enter(fd.Name, fd.Codec, func() error {
			if err := fd.Codec.Emit(fv, s, ctx); err != nil {
				return err
			}
			nbytes := s.Tell() - pos
			if rt.union {
				if nbytes > n {
					n = nbytes
				}
			} else {
				n = nbytes
			}
			if fd.Hook != nil {
				return fd.Hook(rec, rt.fields, ctx)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	_, err := s.Seek(pos+n, SeekSet)
	return err
}

func (rt *RecordType) Sizeof(value any, ctx *Context) (int64, bool, error) {
	rec, _ := value.(*Record)

	rt.bindGenerics()
	defer rt.popGenerics()

	var n int64
	for _, fd := range rt.fields {
		if fd.Codec == nil {
			continue
		}
		var fv any
		if rec != nil {
			fv = rec.Get(fd.Name)
		}

		var size int64
		var known bool
		var sizeErr error
		err := ctx.Enter(fd.Name, fd.Codec, func() error {
			size, known, sizeErr = fd.Codec.Sizeof(fv, ctx)
			return sizeErr
		})
		if err != nil {
			return 0, false, err
		}
		if !known {
			return 0, false, nil
		}
		if rt.union {
			if size > n {
				n = size
			}
		} else {
			n += size
		}
	}
	return n, true, nil
}

// Record is the value object every RecordType parse/emit produces and
// consumes: one attribute per field, iteration order matching field
// declaration order (§3 Value objects).
type Record struct {
	Type   *RecordType
	values map[string]any
	isSet  map[string]bool
}

func newRecord(rt *RecordType) *Record {
	return &Record{Type: rt, values: map[string]any{}, isSet: map[string]bool{}}
}

// NewRecord constructs an empty value object for rt, for callers
// building one by hand ahead of Emit.
func NewRecord(rt *RecordType) *Record { return newRecord(rt) }

// Get returns the field's current value, or nil if unset.
func (r *Record) Get(name string) any { return r.values[name] }

// IsSet reports whether name has been assigned — false for fields a
// partial record left unset at EOF.
func (r *Record) IsSet(name string) bool { return r.isSet[name] }

func (r *Record) set(name string, v any) {
	r.values[name] = v
	r.isSet[name] = true
}

// With assigns a field and returns the record, for fluent construction
// ahead of Emit.
func (r *Record) With(name string, v any) *Record {
	r.set(name, v)
	return r
}

// Fields returns the field names in declaration order.
func (r *Record) Fields() []string { return r.Type.Fields() }

// Equal compares two records structurally over every field, matching
// restruct.py's Struct.__eq__ (SPEC_FULL.md §3, point 6): same
// RecordType, same value (or unset-ness) for every field.
func (r *Record) Equal(other *Record) bool {
	if other == nil || r.Type != other.Type {
		return false
	}
	for _, name := range r.Fields() {
		if r.isSet[name] != other.isSet[name] {
			return false
		}
		if !valuesEqual(r.values[name], other.values[name]) {
			return false
		}
	}
	return true
}
